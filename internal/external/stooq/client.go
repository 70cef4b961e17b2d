package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/pkg/httputil"
	"github.com/wonny/factorlab/pkg/logger"
)

const baseURL = "https://stooq.com/q/d/l/"

// Client fetches daily OHLCV history from the stooq CSV endpoint
// SSOT: stooq access goes through this client only
type Client struct {
	http   *httputil.Client
	logger *logger.Logger
}

// New creates a stooq client. The endpoint tolerates about one request per
// second, so that is the rate budget.
func New(log *logger.Logger) *Client {
	return &Client{
		http:   httputil.New(log, 1.0),
		logger: log,
	}
}

// FetchDaily downloads one symbol's daily bars for the date range.
// Response format: Date,Open,High,Low,Close,Volume.
func (c *Client) FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]Bar, error) {
	url := fmt.Sprintf("%s?s=%s&d1=%s&d2=%s&i=d",
		baseURL,
		strings.ToLower(symbol),
		from.Format("20060102"),
		to.Format("20060102"))

	body, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("stooq: fetch %s: %w", symbol, err)
	}

	bars, err := parseCSV(body)
	if err != nil {
		return nil, fmt.Errorf("stooq: parse %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   len(bars),
	}).Debug("stooq daily history fetched")
	return bars, nil
}

// FetchPanel downloads several symbols and assembles them into a price
// panel with close and volume columns
func (c *Client) FetchPanel(ctx context.Context, symbols []string, from, to time.Time) (*dataset.Frame, error) {
	var keys []dataset.Key
	var closes, volumes []float64

	for _, symbol := range symbols {
		bars, err := c.FetchDaily(ctx, symbol, from, to)
		if err != nil {
			return nil, err
		}
		for _, b := range bars {
			keys = append(keys, dataset.Key{Date: b.Date, Code: symbol})
			closes = append(closes, b.Close)
			volumes = append(volumes, b.Volume)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("stooq: no data for %v", symbols)
	}

	return dataset.BuildFrame(keys,
		map[string][]float64{"close": closes, "volume": volumes},
		[]string{"close", "volume"})
}

// Bar is one daily OHLCV record
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

func parseCSV(body []byte) ([]Bar, error) {
	r := csv.NewReader(strings.NewReader(string(body)))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	// Header sanity check; stooq answers errors as plain text
	if len(records[0]) < 5 || !strings.EqualFold(records[0][0], "Date") {
		return nil, fmt.Errorf("unexpected response header %v", records[0])
	}

	bars := make([]Bar, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 5 {
			continue
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			continue
		}
		bar := Bar{
			Date:   date,
			Open:   parseFloat(rec[1]),
			High:   parseFloat(rec[2]),
			Low:    parseFloat(rec[3]),
			Close:  parseFloat(rec[4]),
			Volume: math.NaN(),
		}
		if len(rec) > 5 {
			bar.Volume = parseFloat(rec[5])
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
