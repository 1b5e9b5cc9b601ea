package bybit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"signalwatcher/internal/ports"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.bybit.com"
	defaultTimeout = 15 * time.Second

	// All monitored signals are USDT perpetuals.
	tickerCategory = "linear"
)

// Client implements the ports.QuoteProvider interface using the Bybit v5
// market API.
type Client struct {
	http   *resty.Client
	logger ports.Logger
}

// Config holds configuration specific to the Bybit client adapter.
type Config struct {
	Logger  ports.Logger
	BaseURL string        // Defaults to the public production endpoint
	Timeout time.Duration // Per-request timeout
}

// tickersResponse mirrors the subset of the v5 tickers payload we consume.
type tickersResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	} `json:"result"`
}

// New creates a new Bybit quote client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Bybit client")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &Client{http: http, logger: cfg.Logger}, nil
}

// LastPrice fetches the last traded price for a symbol. Every failure mode
// (transport error, non-2xx status, empty ticker list, unparseable price) is
// returned as an error and treated as transient by the caller.
func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	var payload tickersResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"category": tickerCategory,
			"symbol":   symbol,
		}).
		SetResult(&payload).
		Get("/v5/market/tickers")
	if err != nil {
		return 0, fmt.Errorf("%w: fetching ticker for %s: %v", ports.ErrQuoteUnavailable, symbol, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("%w: ticker request for %s returned status %d", ports.ErrQuoteUnavailable, symbol, resp.StatusCode())
	}
	if payload.RetCode != 0 {
		return 0, fmt.Errorf("%w: retCode=%d retMsg=%q for %s", ports.ErrBadQuoteResponse, payload.RetCode, payload.RetMsg, symbol)
	}
	if len(payload.Result.List) == 0 {
		return 0, fmt.Errorf("%w: empty ticker list for %s", ports.ErrBadQuoteResponse, symbol)
	}

	price, err := strconv.ParseFloat(payload.Result.List[0].LastPrice, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable lastPrice %q for %s", ports.ErrBadQuoteResponse, payload.Result.List[0].LastPrice, symbol)
	}
	return price, nil
}
