// Package vyos is the client of the router configuration API.
package vyos

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"gitlab.com/netops-console/vyos_console_api/model"
	"gitlab.com/netops-console/vyos_console_api/monitor"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config of the configuration API client
type Config struct {
	URL               string        `mapstructure:"url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// API is the part of the configuration API used by the console
type API interface {
	FetchRules(ctx context.Context, rs RuleSet) ([]model.Rule, error)
	ReorderRules(ctx context.Context, rs RuleSet, plan []model.ReorderEntry) error
	Batch(ctx context.Context, ops []Operation) error
	RefreshCache(ctx context.Context) error
}

// Client of the configuration API
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient godoc
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
	}
}

type rulesResponse struct {
	Rules []model.Rule `json:"rules"`
}

func rulesRoute(rs RuleSet) string {
	return "/rules/" + url.PathEscape(string(rs.Kind)) + "/" + url.PathEscape(rs.Name)
}

// FetchRules returns the rules of the set ordered by rule number
func (c *Client) FetchRules(ctx context.Context, rs RuleSet) ([]model.Rule, error) {
	var resp rulesResponse
	if err := c.do(ctx, http.MethodGet, rulesRoute(rs), "/rules/:kind/:name", nil, &resp); err != nil {
		return nil, err
	}
	sortRules(resp.Rules)
	return resp.Rules, nil
}

// ReorderRules submits a renumbering plan as a single batch
func (c *Client) ReorderRules(ctx context.Context, rs RuleSet, plan []model.ReorderEntry) error {
	return c.do(ctx, http.MethodPost, rulesRoute(rs)+"/reorder", "/rules/:kind/:name/reorder", plan, nil)
}

// Batch submits an ordered list of configuration operations
func (c *Client) Batch(ctx context.Context, ops []Operation) error {
	return c.do(ctx, http.MethodPost, "/batch", "/batch", ops, nil)
}

// RefreshCache asks the configuration API to drop its cached configuration
func (c *Client) RefreshCache(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/cache/refresh", "/cache/refresh", nil, nil)
}

// do sends a request; label is the route template used for metrics
func (c *Client) do(ctx context.Context, method, route, label string, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "configuration api rate limit")
	}

	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "unable to encode configuration api request")
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, body)
	if err != nil {
		return errors.Wrap(err, "unable to build configuration api request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		monitor.ConfigAPIRequestDuration.WithLabelValues(label, method, "error").Observe(time.Since(start).Seconds())
		return errors.Wrapf(err, "configuration api %s %s", method, route)
	}
	defer resp.Body.Close()
	monitor.ConfigAPIRequestDuration.WithLabelValues(label, method, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "unable to read configuration api response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := newAPIError(resp.StatusCode, respBody)
		log.Debug().Str("section", "vyos").Str("method", method).Str("route", route).
			Int("status", resp.StatusCode).Str("message", apiErr.Message).
			Msg("Configuration API request failed")
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "unable to decode configuration api response")
	}
	return nil
}

func sortRules(rules []model.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Number < rules[j].Number
	})
}
