package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"UKPredict/internal/domain/models"
	xhttp "UKPredict/pkg/http"

	"github.com/spf13/cobra"
)

var services = []string{"housing", "electricity"}

func (c *cli) baseURL(service string) (string, error) {
	switch service {
	case "housing", "electricity":
		return strings.TrimRight(c.v.GetString(service+"_url"), "/"), nil
	default:
		return "", fmt.Errorf("unknown service %q, want one of %s", service, strings.Join(services, ", "))
	}
}

// call sends one request and pretty-prints the JSON body. Non-2xx answers
// are reported with the server's detail message.
func (c *cli) call(ctx context.Context, opts *xhttp.RequestOptions) error {
	var body []byte
	err := c.client.SendAndParse(ctx, opts, &body)
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("%s %s: %d %s", opts.Method, opts.URL, se.StatusCode, se.Detail())
	}
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") != nil {
		pretty.Reset()
		pretty.Write(body)
	}
	pretty.WriteByte('\n')
	_, err = c.out.Write(pretty.Bytes())
	return err
}

func (c *cli) get(cmd *cobra.Command, service, path string, timeout time.Duration) error {
	base, err := c.baseURL(service)
	if err != nil {
		return err
	}
	return c.call(cmd.Context(), &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     base + path,
		Timeout: timeout,
	})
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "health <housing|electricity>",
		Short:     "Show service health",
		Args:      cobra.ExactArgs(1),
		ValidArgs: services,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get(cmd, args[0], "/health", healthTimeout)
		},
	}
}

func (c *cli) modelInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "model-info <housing|electricity>",
		Short:     "Show metadata about the loaded model",
		Args:      cobra.ExactArgs(1),
		ValidArgs: services,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get(cmd, args[0], "/model-info", infoTimeout)
		},
	}
}

func (c *cli) predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Request a prediction",
	}
	cmd.AddCommand(c.predictHousingCmd())
	cmd.AddCommand(c.predictElectricityCmd())
	return cmd
}

func (c *cli) predictHousingCmd() *cobra.Command {
	req := models.HousingRequest{}
	cmd := &cobra.Command{
		Use:   "housing",
		Short: "Estimate a property sale price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := c.baseURL("housing")
			if err != nil {
				return err
			}
			return c.call(cmd.Context(), &xhttp.RequestOptions{
				Method:  xhttp.MethodPost,
				URL:     base + "/predict",
				Body:    &req,
				Timeout: predictTimeout,
			})
		},
	}

	now := time.Now()
	f := cmd.Flags()
	f.StringVar(&req.PropertyTypeLabel, "property-type", "Detached", "Detached, Semi-Detached, Terraced, Flat or Other")
	f.BoolVar(&req.IsNewBuild, "new-build", false, "property is a new build")
	f.StringVar(&req.TenureLabel, "tenure", "Freehold", "Freehold or Leasehold")
	f.StringVar(&req.County, "county", "", "county name")
	f.StringVar(&req.District, "district", "", "district name")
	f.StringVar(&req.TownCity, "town", "", "town or city")
	f.IntVar(&req.Year, "year", now.Year(), "sale year")
	f.IntVar(&req.Month, "month", int(now.Month()), "sale month (1-12)")
	_ = cmd.MarkFlagRequired("county")
	_ = cmd.MarkFlagRequired("district")
	_ = cmd.MarkFlagRequired("town")
	return cmd
}

func (c *cli) predictElectricityCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "electricity <datetime>",
		Short:   "Forecast national demand at an ISO-8601 datetime",
		Example: "  predictctl predict electricity 2025-03-15T14:00:00",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := c.baseURL("electricity")
			if err != nil {
				return err
			}
			return c.call(cmd.Context(), &xhttp.RequestOptions{
				Method:  xhttp.MethodPost,
				URL:     base + "/predict",
				Body:    &models.ElectricityRequest{PredictionDatetime: args[0]},
				Timeout: predictTimeout,
			})
		},
	}
}
