package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrSDKLoad = errors.New("payment SDK failed to load")

const maxSDKSize = 2 << 20

// SDKLoader fetches the gateway's checkout script once and keeps it in memory.
// Failed loads are not cached, so the next checkout tries again.
type SDKLoader struct {
	url  string
	http *http.Client

	mu     sync.Mutex
	script []byte
}

func NewSDKLoader(url string, timeout time.Duration) *SDKLoader {
	return &SDKLoader{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

func (l *SDKLoader) Load(ctx context.Context) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.script != nil {
		return l.script, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSDKLoad, err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSDKLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrSDKLoad, l.url, resp.StatusCode)
	}

	script, err := io.ReadAll(io.LimitReader(resp.Body, maxSDKSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSDKLoad, err)
	}
	if len(script) == 0 {
		return nil, fmt.Errorf("%w: empty script", ErrSDKLoad)
	}

	l.script = script
	zap.L().Info("payment SDK loaded", zap.String("url", l.url), zap.Int("bytes", len(script)))

	return script, nil
}

// Script returns the cached script, if any.
func (l *SDKLoader) Script() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.script, l.script != nil
}
