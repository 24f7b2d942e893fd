// Package yahoo fetches OHLCV candles from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"candlestore/pkg/candle"
	"candlestore/pkg/timeframe"

	"github.com/PaesslerAG/jsonpath"
)

const (
	baseURL   = "https://query1.finance.yahoo.com"
	userAgent = "Mozilla/5.0"
)

// intervals maps the timeframes Yahoo can serve to its interval strings.
var intervals = map[timeframe.Code]string{
	timeframe.M1:  "1m",
	timeframe.M2:  "2m",
	timeframe.M5:  "5m",
	timeframe.M15: "15m",
	timeframe.M30: "30m",
	timeframe.H1:  "1h",
	timeframe.H4:  "4h",
	timeframe.D1:  "1d",
	timeframe.W1:  "1wk",
	timeframe.MN1: "1mo",
}

// IntervalFor returns the Yahoo interval for code, or ErrUnsupportedTimeframe.
func IntervalFor(code timeframe.Code) (string, error) {
	iv, ok := intervals[code]
	if !ok {
		return "", fmt.Errorf("%w: %s", candle.ErrUnsupportedTimeframe, code)
	}
	return iv, nil
}

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the v8 chart endpoint.
type Client struct {
	baseURL    string
	httpClient HTTPClient
}

// ClientOption is a configuration option for the chart client.
type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(options ...ClientOption) *Client {
	c := &Client{baseURL: baseURL, httpClient: http.DefaultClient}
	for _, option := range options {
		option(c)
	}
	return c
}

// Chart fetches candles for ticker between start and end at interval.
func (c *Client) Chart(ctx context.Context, ticker, interval string, start, end time.Time) ([]candle.Candle, error) {
	q := url.Values{}
	q.Set("interval", interval)
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch data: %w", candle.ErrNetwork, err)
	}
	defer res.Body.Close()

	var body any
	decodeErr := json.NewDecoder(res.Body).Decode(&body)

	if res.StatusCode != http.StatusOK {
		if desc := chartError(body); desc != "" && decodeErr == nil {
			return nil, fmt.Errorf("%w: Yahoo API error: %s: %s", candle.ErrNetwork, res.Status, desc)
		}
		return nil, fmt.Errorf("%w: Yahoo API error: %s", candle.ErrNetwork, res.Status)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", candle.ErrNetwork, decodeErr)
	}

	return ParseChart(body)
}

// Candles fetches the candles of one timeframe, mapping code to its interval.
func (c *Client) Candles(ctx context.Context, ticker string, code timeframe.Code, start, end time.Time) ([]candle.Candle, error) {
	interval, err := IntervalFor(code)
	if err != nil {
		return nil, err
	}
	return c.Chart(ctx, ticker, interval, start, end)
}

// ParseChart zips the parallel timestamp and quote arrays of a decoded chart
// response. Indexes where any price or the volume is null are dropped.
func ParseChart(body any) ([]candle.Candle, error) {
	ts, err := array(body, "$.chart.result[0].timestamp")
	if err != nil {
		if desc := chartError(body); desc != "" {
			return nil, fmt.Errorf("%w: %s", candle.ErrNoCandles, desc)
		}
		return nil, fmt.Errorf("%w: no timestamps in response", candle.ErrNoCandles)
	}

	fields := []string{"open", "high", "low", "close", "volume"}
	cols := make([][]any, len(fields))
	n := len(ts)
	for i, f := range fields {
		col, err := array(body, "$.chart.result[0].indicators.quote[0]."+f)
		if err != nil {
			return nil, fmt.Errorf("%w: no %s values in response", candle.ErrNoCandles, f)
		}
		cols[i] = col
		n = min(n, len(col))
	}

	out := make([]candle.Candle, 0, n)
	for i := 0; i < n; i++ {
		t, ok := ts[i].(float64)
		if !ok {
			continue
		}
		var v [5]float64
		complete := true
		for j := range cols {
			f, ok := cols[j][i].(float64)
			if !ok {
				complete = false
				break
			}
			v[j] = f
		}
		if !complete {
			continue
		}
		out = append(out, candle.Candle{Time: int64(t), Open: v[0], High: v[1], Low: v[2], Close: v[3], Volume: v[4]})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no valid data points", candle.ErrNoCandles)
	}
	return out, nil
}

func array(body any, path string) ([]any, error) {
	v, err := jsonpath.Get(path, body)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is %T, not an array", path, v)
	}
	return list, nil
}

func chartError(body any) string {
	if body == nil {
		return ""
	}
	v, err := jsonpath.Get("$.chart.error.description", body)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
