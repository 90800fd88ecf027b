package power

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff between attempts
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	ErrRateLimited   = errors.New("power api rate limited")
	ErrServerError   = errors.New("power api server error")
	ErrUnexpected    = errors.New("power api unexpected status code")
	ErrCircuitOpen   = errors.New("power api circuit breaker open")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// retryable reports whether another attempt may succeed; client errors never do
func retryable(err error) bool {
	return !errors.Is(err, ErrUnexpected)
}

// doWithRetry runs the request through the circuit breaker, retrying
// rate limits, 5xx and transport errors with exponential backoff.
// 4xx responses other than 429 are returned immediately.
func doWithRetry(
	ctx context.Context,
	client *http.Client,
	backoff BackoffConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(context.Context) (*http.Request, error),
) (*http.Response, error) {
	if backoff.MaxRetries < 0 || backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				drain(resp)
				return nil, ErrRateLimited
			case resp.StatusCode >= 500:
				drain(resp)
				return nil, fmt.Errorf("%w: %d", ErrServerError, resp.StatusCode)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d: %s", ErrUnexpected, resp.StatusCode, string(body))
			}
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		if !retryable(err) || attempt >= backoff.MaxRetries {
			return nil, err
		}

		delay := backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if backoff.MaxInterval > 0 && delay > backoff.MaxInterval {
			delay = backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
