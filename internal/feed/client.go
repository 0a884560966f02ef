// Package feed fetches the latest published vulnerabilities from a public JSON feed.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// DefaultURL is the public CVE feed.
	DefaultURL = "https://cve.circl.lu/api/last"
	// DefaultLimit is used when Latest is asked for n <= 0 records.
	DefaultLimit = 10

	maxBodyBytes = 32 << 20
)

// Placeholder ids returned instead of an error.
const (
	ErrorID     = "Error"
	ExceptionID = "Exception"
)

// FetchRecorder observes fetch outcomes.
type FetchRecorder interface {
	RecordFeedFetch(outcome string)
}

// Options configures a Client.
type Options struct {
	URL       string
	Timeout   time.Duration
	Limit     int
	CacheSize int
	CacheTTL  time.Duration
}

// Client is the vulnerability feed adapter.
type Client struct {
	http     *http.Client
	url      string
	limit    int
	cache    *expirable.LRU[int, []Record]
	logger   *zap.Logger
	recorder FetchRecorder
}

// NewClient builds a client. A nil recorder disables metrics.
func NewClient(opts Options, logger *zap.Logger, recorder FetchRecorder) *Client {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		http:     &http.Client{Timeout: opts.Timeout},
		url:      opts.URL,
		limit:    opts.Limit,
		logger:   logger,
		recorder: recorder,
	}
	if opts.CacheTTL > 0 {
		c.cache = expirable.NewLRU[int, []Record](opts.CacheSize, nil, opts.CacheTTL)
	}
	return c
}

// Latest returns up to n valid records, in feed order. Failures never propagate:
// they come back as a single placeholder record.
func (c *Client) Latest(ctx context.Context, n int) []Record {
	if n <= 0 {
		n = c.limit
	}
	if c.cache != nil {
		if cached, ok := c.cache.Get(n); ok {
			c.record("cached")
			return cloneRecords(cached)
		}
	}

	records, err := c.fetch(ctx, n)
	if err != nil {
		c.record("error")
		c.logger.Warn("vulnerability feed unavailable", zap.String("url", c.url), zap.Error(err))
		return []Record{placeholder(err)}
	}
	c.record("ok")
	if c.cache != nil {
		c.cache.Add(n, cloneRecords(records))
	}
	return records
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("failed to fetch CVEs (status %d)", e.code)
}

func placeholder(err error) Record {
	if se, ok := err.(*statusError); ok {
		return Record{CVEID: ErrorID, Summary: se.Error()}
	}
	return Record{CVEID: ExceptionID, Summary: err.Error()}
}

func (c *Client) fetch(ctx context.Context, n int) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode feed body: invalid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return nil, fmt.Errorf("decode feed body: expected a JSON array, got %s", doc.Type)
	}

	records := make([]Record, 0, n)
	doc.ForEach(func(_, raw gjson.Result) bool {
		switch e := ParseEntry(raw).(type) {
		case Valid:
			records = append(records, e.Record)
		case Skipped:
			c.logger.Debug("feed entry skipped",
				zap.String("source", string(e.Source)),
				zap.Strings("missing", e.Missing),
			)
		}
		return len(records) < n
	})
	return records, nil
}

func (c *Client) record(outcome string) {
	if c.recorder != nil {
		c.recorder.RecordFeedFetch(outcome)
	}
}

func cloneRecords(in []Record) []Record {
	out := make([]Record, len(in))
	copy(out, in)
	return out
}
