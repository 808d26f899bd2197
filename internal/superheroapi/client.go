package superheroapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/Maximillionair/eksamen-superhelter/internal/config"
	"github.com/Maximillionair/eksamen-superhelter/internal/logging"
	"github.com/Maximillionair/eksamen-superhelter/internal/metrics"
)

const (
	opGetHero = "get_hero"
	opSearch  = "search"

	maxBodyBytes = 4 << 20
)

// Client talks to the superheroapi.com catalog.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *Breaker
}

type Option func(*Client)

// WithHTTPClient replaces the default client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBreaker(b *Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

func NewClient(cfg config.CatalogConfig, opts ...Option) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = NewBreaker(cfg)
	}
	return c
}

// GetHero fetches one record by id.
func (c *Client) GetHero(ctx context.Context, id int64) (RawHero, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.token), strconv.FormatInt(id, 10))

	res, err := c.call(ctx, opGetHero, func() (any, error) {
		var raw RawHero
		if err := c.getJSON(ctx, endpoint, &raw); err != nil {
			return nil, err
		}
		if raw.Response == responseError {
			return nil, fmt.Errorf("%w: id %d: %s", ErrUpstreamNotFound, id, raw.Error)
		}
		return raw, nil
	})
	if err != nil {
		return RawHero{}, err
	}
	return res.(RawHero), nil
}

// SearchByName queries the catalog by name. An error response from the
// catalog means no matches and yields an empty list.
func (c *Client) SearchByName(ctx context.Context, name string) ([]RawHero, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []RawHero{}, nil
	}
	endpoint := fmt.Sprintf("%s/%s/search/%s", c.baseURL, url.PathEscape(c.token), url.PathEscape(name))

	res, err := c.call(ctx, opSearch, func() (any, error) {
		var body searchResponse
		if err := c.getJSON(ctx, endpoint, &body); err != nil {
			return nil, err
		}
		if body.Response == responseError || body.Results == nil {
			return []RawHero{}, nil
		}
		return body.Results, nil
	})
	if err != nil {
		if isNotFound(err) {
			return []RawHero{}, nil
		}
		return nil, err
	}
	return res.([]RawHero), nil
}

func (c *Client) call(ctx context.Context, op string, fn func() (any, error)) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.UpstreamRequests.WithLabelValues(op, "rejected").Inc()
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrUpstreamTransport, err)
	}

	start := time.Now()
	res, err := c.breaker.Execute(fn)
	metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.UpstreamRequests.WithLabelValues(op, "success").Inc()
	case isNotFound(err):
		metrics.UpstreamRequests.WithLabelValues(op, "not_found").Inc()
	default:
		metrics.UpstreamRequests.WithLabelValues(op, "transport_error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("operation", op).Msg("catalog request failed")
	}
	return res, err
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrUpstreamTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstreamTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: status %d", ErrUpstreamNotFound, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUpstreamTransport, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrUpstreamTransport, err)
	}
	return nil
}
