//go:build windows

package main

import (
	"github.com/born-ml/lanenc/internal/backend/webgpu"
	"github.com/born-ml/lanenc/internal/config"
)

func openGPUSession(cfg *config.Config, corpus []string) (session, error) {
	gpu, err := webgpu.New()
	if err != nil {
		return nil, err
	}
	logf("using GPU adapter %s", gpu.AdapterName())
	s, err := newSession(cfg, corpus, gpu, gpu.Release)
	if err != nil {
		gpu.Release()
		return nil, err
	}
	return s, nil
}
