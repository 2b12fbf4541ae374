package parallel

import (
	"sync/atomic"
	"testing"
)

func TestRangeCoversEveryIndexOnce(t *testing.T) {
	configs := map[string]Config{
		"sequential": {Enabled: false},
		"parallel":   {Enabled: true, NumWorkers: 4, MinChunkSize: 3},
		"default":    DefaultConfig(),
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			const n = 101
			var hits [n]atomic.Int32
			Range(n, cfg, func(lo, hi int) {
				for i := lo; i < hi; i++ {
					hits[i].Add(1)
				}
			})
			for i := range hits {
				if got := hits[i].Load(); got != 1 {
					t.Fatalf("index %d visited %d times", i, got)
				}
			}
		})
	}
}

func TestRangeEmpty(t *testing.T) {
	called := false
	Range(0, DefaultConfig(), func(_, _ int) { called = true })
	if called {
		t.Error("f should not be called for n = 0")
	}
}
