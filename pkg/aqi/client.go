// Package aqi looks up live air-quality readings from the World Air Quality
// Index feed API.
package aqi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public WAQI endpoint.
const DefaultBaseURL = "https://api.waqi.info"

// Reading is one station's current index.
type Reading struct {
	Station string
	City    string
	AQI     float64
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL points the client at a different feed host.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithRateLimit sets the requests-per-second limit. Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Client fetches station feeds.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client authenticating with token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type feedResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type feedData struct {
	AQI  json.RawMessage `json:"aqi"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
}

// Feed returns the current reading for a station keyword such as a city or
// state name. A non-"ok" status or a non-numeric index ("-") is an error.
func (c *Client) Feed(ctx context.Context, station string) (*Reading, error) {
	if c.token == "" {
		return nil, eris.New("aqi: token not configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "aqi: rate limit")
		}
	}

	reqURL := c.baseURL + "/feed/" + url.PathEscape(station) + "/?" + url.Values{"token": {c.token}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "aqi: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "aqi: feed %s", station)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("aqi: feed %s returned status %d", station, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "aqi: read body")
	}

	var fr feedResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, eris.Wrap(err, "aqi: parse response")
	}
	if fr.Status != "ok" {
		var msg string
		_ = json.Unmarshal(fr.Data, &msg)
		return nil, eris.Errorf("aqi: feed %s status %q: %s", station, fr.Status, msg)
	}

	var data feedData
	if err := json.Unmarshal(fr.Data, &data); err != nil {
		return nil, eris.Wrap(err, "aqi: parse data")
	}
	v, err := parseIndex(data.AQI)
	if err != nil {
		return nil, eris.Wrapf(err, "aqi: feed %s", station)
	}
	return &Reading{Station: station, City: data.City.Name, AQI: v}, nil
}

// parseIndex accepts the index as a JSON number or numeric string.
func parseIndex(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, eris.Errorf("unexpected aqi value %s", string(raw))
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, eris.Errorf("no reading (aqi %q)", s)
	}
	return f, nil
}
