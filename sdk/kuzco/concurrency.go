package kuzco

import (
	"context"
)

type callFunc[T any] func(h host) (T, error)

// withHost acquires a model instance, runs the call, and releases the
// instance. Forward passes never overlap on the same instance.
func withHost[T any](ctx context.Context, krn *Kuzco, f callFunc[T]) (T, error) {
	var zero T

	h, err := krn.acquireHost(ctx)
	if err != nil {
		return zero, err
	}
	defer krn.releaseHost(h)

	return f(h)
}

func (krn *Kuzco) acquireHost(ctx context.Context) (host, error) {
	// The ready check and the stream count move together under the shutdown
	// mutex. Unload holds it while draining activeStreams, so a request
	// admitted here is always visible to the drain and no request is
	// admitted while a drain is in progress.
	err := func() error {
		krn.shutdown.Lock()
		defer krn.shutdown.Unlock()

		switch krn.state.Load() {
		case stateReady:
		case stateClosed:
			return ErrUnloaded
		default:
			return ErrNotReady
		}

		krn.activeStreams.Add(1)
		return nil
	}()

	if err != nil {
		return nil, err
	}

	// -------------------------------------------------------------------------

	select {
	case <-ctx.Done():
		krn.activeStreams.Add(-1)
		return nil, ctx.Err()

	case h, ok := <-krn.hosts:
		if !ok {
			krn.activeStreams.Add(-1)
			return nil, ErrUnloaded
		}

		return h, nil
	}
}

func (krn *Kuzco) releaseHost(h host) {
	krn.hosts <- h
	krn.activeStreams.Add(-1)
}
