// Package sidecar serves a pickled Python model from a child process and
// talks to it over a local HTTP port.
package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/xh3b4sd/tracer"

	"UKPredict/internal/domain/models"
	"UKPredict/internal/domain/service"
	"UKPredict/pkg/logger"
)

const Backend = "sidecar"

type Sidecar struct {
	// Add is the loopback address the child binds to, default 127.0.0.1.
	Add string
	Cli *http.Client
	Cmd *exec.Cmd
	Fil *os.File
	Log *logger.Logger
	// Pat is the required path of the pickled model artifact.
	Pat string
	// Por is the required free port the child serves predictions on.
	Por int
	// Pyt is the interpreter, default python3.
	Pyt string
	// Pol is the readiness poll interval, default 250ms.
	Pol time.Duration
	// Tem is the Python script template, default deftem.
	Tem string
	Url string

	mu     sync.Mutex
	exited chan struct{}
}

var _ service.Regressor = (*Sidecar)(nil)

// Restore renders the script, starts the child and blocks until it answers
// "OK" or ctx is done.
func (s *Sidecar) Restore(ctx context.Context) error {
	var err error

	if s.Add == "" {
		s.Add = "127.0.0.1"
	}
	if s.Cli == nil {
		s.Cli = &http.Client{Timeout: 10 * time.Second}
	}
	if s.Log == nil {
		s.Log = logger.Nop()
	}
	if s.Pat == "" {
		return tracer.Mask(fmt.Errorf("sidecar: model path must not be empty"))
	}
	if s.Por == 0 {
		return tracer.Mask(fmt.Errorf("sidecar: port must not be empty"))
	}
	if s.Pyt == "" {
		s.Pyt = "python3"
	}
	if s.Pol <= 0 {
		s.Pol = 250 * time.Millisecond
	}
	if s.Tem == "" {
		s.Tem = deftem
	}
	if s.Url == "" {
		s.Url = fmt.Sprintf("http://%s:%d", s.Add, s.Por)
	}

	{
		s.Fil, err = os.CreateTemp("", "ukpredict-sidecar-*.py")
		if err != nil {
			return tracer.Mask(err)
		}
	}

	var buf bytes.Buffer
	{
		t, err := template.New(s.Fil.Name()).Parse(s.Tem)
		if err != nil {
			return tracer.Mask(err)
		}

		err = t.Execute(&buf, s.data())
		if err != nil {
			return tracer.Mask(err)
		}
	}

	{
		_, err := s.Fil.Write(buf.Bytes())
		if err != nil {
			return tracer.Mask(err)
		}
	}

	{
		err := s.Fil.Close()
		if err != nil {
			return tracer.Mask(err)
		}
	}

	{
		s.Cmd = exec.Command(s.Pyt, s.Fil.Name())
		s.Cmd.Stderr = os.Stderr
	}

	{
		err := s.Cmd.Start()
		if err != nil {
			os.Remove(s.Fil.Name())
			return tracer.Mask(err)
		}
	}

	s.exited = make(chan struct{})
	cmd, script := s.Cmd, s.Fil.Name()
	go func() {
		defer close(s.exited)
		err := cmd.Wait()
		if err != nil {
			s.Log.Warn("Sidecar exited", logger.String("script", script), logger.Error(err))
		}
	}()

	ticker := time.NewTicker(s.Pol)
	defer ticker.Stop()

	for {
		if s.checker(ctx) {
			s.Log.Info("Sidecar ready", logger.String("model", s.Pat), logger.String("url", s.Url))
			return nil
		}

		select {
		case <-ctx.Done():
			_ = s.Sigkill()
			return fmt.Errorf("%w: %v", ErrStartupTimeout, ctx.Err())
		case <-s.exited:
			_ = s.Sigkill()
			return fmt.Errorf("%w: process exited", ErrStartupTimeout)
		case <-ticker.C:
		}
	}
}

type request struct {
	Columns     []string      `json:"columns"`
	Values      []interface{} `json:"values"`
	Categorical []string      `json:"categorical"`
}

func (s *Sidecar) Predict(ctx context.Context, row models.FeatureRow) (float64, error) {
	var err error

	var byt []byte
	{
		byt, err = json.Marshal(request{
			Columns:     row.Names(),
			Values:      row.Values(),
			Categorical: row.CategoricalNames(),
		})
		if err != nil {
			return 0, tracer.Mask(err)
		}
	}

	var req *http.Request
	{
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, s.Url, bytes.NewReader(byt))
		if err != nil {
			return 0, tracer.Mask(err)
		}
		req.Header.Set("Content-Type", "application/json")
	}

	var res *http.Response
	{
		res, err = s.Cli.Do(req)
		if err != nil {
			return 0, tracer.Mask(err)
		}
		defer res.Body.Close()
	}

	var bod []byte
	{
		bod, err = io.ReadAll(res.Body)
		if err != nil {
			return 0, tracer.Mask(err)
		}
	}

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s", ErrPrediction, strings.TrimSpace(string(bod)))
	}

	var flo float64
	{
		flo, err = strconv.ParseFloat(strings.TrimSpace(string(bod)), 64)
		if err != nil {
			return 0, tracer.Mask(err)
		}
	}

	return flo, nil
}

func (s *Sidecar) Backend() string { return Backend }

func (s *Sidecar) Close() error { return s.Sigkill() }

// Sigkill stops the child and removes the rendered script. Calling it more
// than once is safe.
func (s *Sidecar) Sigkill() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Cmd != nil && s.Cmd.Process != nil {
		err := s.Cmd.Process.Kill()
		if err != nil && !IsProcessAlreadyFinished(err) {
			return tracer.Mask(err)
		}
		s.Cmd = nil
	}

	if s.Fil != nil {
		os.Remove(s.Fil.Name())
		s.Fil = nil
	}

	return nil
}

func (s *Sidecar) checker(ctx context.Context) bool {
	var err error

	var req *http.Request
	{
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, s.Url, nil)
		if err != nil {
			return false
		}
	}

	var res *http.Response
	{
		res, err = s.Cli.Do(req)
		if err != nil {
			return false
		}
		defer res.Body.Close()
	}

	var bod []byte
	{
		bod, err = io.ReadAll(res.Body)
		if err != nil {
			return false
		}
	}

	return strings.TrimSpace(string(bod)) == "OK"
}

func (s *Sidecar) data() map[string]interface{} {
	return map[string]interface{}{
		"Add": pyString(s.Add),
		"Pat": pyString(s.Pat),
		"Por": s.Por,
	}
}

// pyString renders v as a Python string literal. JSON string escapes are a
// subset of Python's.
func pyString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}
