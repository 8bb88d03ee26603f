package transfer

import (
	"errors"
	"strings"
)

// FallbackTransferer tries backends in order. The next backend is only tried
// when the previous one reported ErrCrossDevice; any other error is final.
type FallbackTransferer struct {
	backends []Transferer
}

func NewFallbackTransferer(backends ...Transferer) *FallbackTransferer {
	return &FallbackTransferer{backends: backends}
}

func (f *FallbackTransferer) Name() string {
	names := make([]string, len(f.backends))
	for i, b := range f.backends {
		names[i] = b.Name()
	}
	return "fallback(" + strings.Join(names, ",") + ")"
}

func (f *FallbackTransferer) Move(src, dst string) (*Result, error) {
	var lastErr error
	for _, backend := range f.backends {
		result, err := backend.Move(src, dst)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !errors.Is(err, ErrCrossDevice) {
			return result, err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no transfer backends configured")
	}
	return nil, lastErr
}
