package sidecar

import (
	"errors"
	"os"
)

var (
	ErrStartupTimeout = errors.New("sidecar did not become ready")
	ErrPrediction     = errors.New("sidecar prediction failed")
)

func IsProcessAlreadyFinished(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
