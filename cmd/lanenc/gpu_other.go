//go:build !windows

package main

import (
	"errors"

	"github.com/born-ml/lanenc/internal/config"
)

func openGPUSession(*config.Config, []string) (session, error) {
	return nil, errors.New("the webgpu backend is only available on windows builds")
}
