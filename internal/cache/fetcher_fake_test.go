package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dvcrn/weasel/internal/openpaths"
)

var errUpstream = errors.New("upstream down")

// fakeFetcher returns points from a script. Once the script is exhausted the
// last entry repeats.
type fakeFetcher struct {
	mu     sync.Mutex
	script []fakeResult
	calls  atomic.Int32

	// block, when set, is waited on before each fetch returns.
	block   chan struct{}
	entered chan struct{}
}

type fakeResult struct {
	point openpaths.Point
	err   error
}

func (f *fakeFetcher) LastPoint(ctx context.Context) (openpaths.Point, error) {
	n := int(f.calls.Add(1))
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return openpaths.Point{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.script) == 0 {
		return openpaths.Point{Lat: float64(n), Lon: float64(n), T: int64(n)}, nil
	}
	i := n - 1
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	return f.script[i].point, f.script[i].err
}
