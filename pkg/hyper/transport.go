package hyper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/util"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultRateLimitTries = 5
	defaultNetworkTries   = 3
	defaultBackoffBase    = 250 * time.Millisecond
	defaultNetworkDelay   = 500 * time.Millisecond
)

// transport is the HTTP layer shared by every call from one client
// instance: one connection pool, bounded retries, typed failures.
//
// Retry policy: 429 backs off exponentially (base delay doubling per
// attempt) up to rateLimitTries; network-level failures retry up to
// networkTries with a fixed delay; any other >=400 fails immediately
// with the body verbatim, since it signals a rejected request rather
// than transient load.
type transport struct {
	http    *http.Client
	baseURL string
	clock   util.Clock
	log     *zap.Logger

	rateLimitTries int
	networkTries   int
	backoffBase    time.Duration
	networkDelay   time.Duration
}

func newTransport(baseURL string, timeout time.Duration, clock util.Clock, log *zap.Logger) *transport {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if clock == nil {
		clock = util.RealClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &transport{
		http:           &http.Client{Timeout: timeout},
		baseURL:        baseURL,
		clock:          clock,
		log:            log,
		rateLimitTries: defaultRateLimitTries,
		networkTries:   defaultNetworkTries,
		backoffBase:    defaultBackoffBase,
		networkDelay:   defaultNetworkDelay,
	}
}

// post sends a JSON body and decodes the JSON response into out. An
// empty successful body leaves out untouched and returns nil.
func (t *transport) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ConstructionError{Op: "encode request body", Err: err}
	}

	var (
		netAttempts int
		rlAttempts  int
		lastErr     error
	)
	for {
		status, respBody, err := t.doOnce(ctx, path, payload)
		if err != nil {
			netAttempts++
			lastErr = err
			if netAttempts >= t.networkTries {
				return &TransportError{Op: "POST " + path, Attempts: netAttempts, Err: lastErr}
			}
			t.log.Debug("retrying after network failure",
				zap.String("path", path), zap.Int("attempt", netAttempts), zap.Error(err))
			if err := t.sleep(ctx, t.networkDelay); err != nil {
				return &TransportError{Op: "POST " + path, Attempts: netAttempts, Err: err}
			}
			continue
		}

		switch {
		case status == http.StatusTooManyRequests:
			rlAttempts++
			if rlAttempts >= t.rateLimitTries {
				return &RateLimitError{StatusCode: status, Attempts: rlAttempts, Body: string(respBody)}
			}
			delay := t.backoffBase << (rlAttempts - 1)
			t.log.Debug("rate limited, backing off",
				zap.String("path", path), zap.Int("attempt", rlAttempts), zap.Duration("delay", delay))
			if err := t.sleep(ctx, delay); err != nil {
				return &TransportError{Op: "POST " + path, Attempts: netAttempts + 1, Err: err}
			}
			continue

		case status >= 400:
			return &VenueError{StatusCode: status, Body: string(respBody)}

		default:
			if out == nil || len(respBody) == 0 {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("failed to decode response from %s: %w", path, err)
			}
			return nil
		}
	}
}

func (t *transport) doOnce(ctx context.Context, path string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// sleep waits on the injected clock, honoring cancellation.
func (t *transport) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-t.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
