// Package gateway provides clients for the external environmental data
// sources: weather, soil sensors, fire risk maps, utility PSPS feeds,
// and satellite vegetation indices. Each source has an HTTP client for
// live deployments and a deterministic in-process provider used when no
// endpoint is configured. Callers receive an error when a live source
// is unreachable; the snapshot collector treats that as a missing input
// rather than a failure.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sagebrush-ag/fireline/internal/config"
	"github.com/sagebrush-ag/fireline/internal/resilience"
)

// httpClient wraps an upstream JSON API with rate limiting, a circuit
// breaker, and retry on transient failures.
type httpClient struct {
	name    string
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	retry   resilience.Policy
}

func newHTTPClient(name, baseURL string, cfg config.GatewayConfig) *httpClient {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 10
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("gateway breaker state change",
				zap.String("source", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &httpClient{
		name:    name,
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSec), int(perSec)+1),
		breaker: breaker,
		retry: resilience.Policy{
			Retries:   cfg.Retries,
			BaseDelay: 300 * time.Millisecond,
			OnRetry:   resilience.LogRetries(name, "get"),
		},
	}
}

// getJSON fetches path with the given query and decodes the response
// body into out.
func (c *httpClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := resilience.Retry(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		raw, err := c.breaker.Execute(func() (any, error) {
			return c.getOnce(ctx, path, query)
		})
		if err != nil {
			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				return nil, eris.Wrapf(err, "gateway: %s circuit open", c.name)
			}
			return nil, err
		}
		return raw.([]byte), nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "gateway: %s decode response", c.name)
	}
	return nil
}

func (c *httpClient) getOnce(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrapf(err, "gateway: %s rate limit wait", c.name)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "gateway: %s build request", c.name)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, resilience.Transient(eris.Wrapf(err, "gateway: %s request", c.name), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resilience.Transient(eris.Wrapf(err, "gateway: %s read body", c.name), 0)
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.New(fmt.Sprintf("gateway: %s returned %d", c.name, resp.StatusCode))
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.Transient(err, resp.StatusCode)
		}
		return nil, err
	}

	return body, nil
}
