package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const feedBody = `[
  {"cveMetadata": {"cveId": "CVE-2024-0001", "datePublished": "2024-05-01T10:00:00.000Z"},
   "containers": {"cna": {"descriptions": [{"value": "buffer overflow"}],
                          "metrics": [{"cvssV3_1": {"baseScore": 9.8}}]}}},
  {"id": "GHSA-xxxx-yyyy", "summary": "advisory without cve metadata"},
  {"cveMetadata": {"cveId": "CVE-2024-0002"}},
  {"cveMetadata": {"cveId": "CVE-2024-0003", "datePublished": "2024-05-02"},
   "containers": {"cna": {"descriptions": [{"value": "sql injection"}],
                          "metrics": [{"cvssV4_0": {"baseScore": 6.1}}]}}},
  {"cveMetadata": {"cveId": "CVE-2024-0004", "datePublished": "2024-05-03T00:00:00"},
   "containers": {"cna": {"descriptions": [{"value": "xss"}]}}}
]`

type countingRecorder struct {
	outcomes []string
}

func (r *countingRecorder) RecordFeedFetch(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func newServer(t *testing.T, status int, body string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLatestKeepsValidEntriesInOrder(t *testing.T) {
	srv := newServer(t, http.StatusOK, feedBody, nil)
	c := NewClient(Options{URL: srv.URL}, zap.NewNop(), nil)

	records := c.Latest(context.Background(), 10)
	require.Len(t, records, 3)

	assert.Equal(t, Record{CVEID: "CVE-2024-0001", Summary: "buffer overflow", Published: "2024-05-01", CVSS: "9.8"}, records[0])
	assert.Equal(t, "6.1", records[1].CVSS)
	assert.Equal(t, NotAvailable, records[2].CVSS)
	assert.Equal(t, "2024-05-03", records[2].Published)
}

func TestLatestStopsAtN(t *testing.T) {
	srv := newServer(t, http.StatusOK, feedBody, nil)
	c := NewClient(Options{URL: srv.URL}, zap.NewNop(), nil)

	records := c.Latest(context.Background(), 2)
	require.Len(t, records, 2)
	assert.Equal(t, "CVE-2024-0003", records[1].CVEID)
}

func TestLatestDefaultsLimit(t *testing.T) {
	srv := newServer(t, http.StatusOK, feedBody, nil)
	c := NewClient(Options{URL: srv.URL, Limit: 1}, zap.NewNop(), nil)

	assert.Len(t, c.Latest(context.Background(), 0), 1)
}

func TestLatestReturnsPlaceholderOnStatus(t *testing.T) {
	srv := newServer(t, http.StatusServiceUnavailable, "down", nil)
	rec := &countingRecorder{}
	c := NewClient(Options{URL: srv.URL}, zap.NewNop(), rec)

	records := c.Latest(context.Background(), 5)
	require.Len(t, records, 1)
	assert.Equal(t, ErrorID, records[0].CVEID)
	assert.Contains(t, records[0].Summary, "503")
	assert.Empty(t, records[0].Published)
	assert.Equal(t, []string{"error"}, rec.outcomes)
}

func TestLatestReturnsPlaceholderOnBadBody(t *testing.T) {
	for name, body := range map[string]string{"invalid": "{not json", "object": `{"a": 1}`} {
		t.Run(name, func(t *testing.T) {
			srv := newServer(t, http.StatusOK, body, nil)
			c := NewClient(Options{URL: srv.URL}, zap.NewNop(), nil)

			records := c.Latest(context.Background(), 5)
			require.Len(t, records, 1)
			assert.Equal(t, ExceptionID, records[0].CVEID)
			assert.Contains(t, records[0].Summary, "decode feed body")
		})
	}
}

func TestLatestReturnsPlaceholderOnTransportError(t *testing.T) {
	srv := newServer(t, http.StatusOK, feedBody, nil)
	srv.Close()
	c := NewClient(Options{URL: srv.URL, Timeout: time.Second}, zap.NewNop(), nil)

	records := c.Latest(context.Background(), 5)
	require.Len(t, records, 1)
	assert.Equal(t, ExceptionID, records[0].CVEID)
	assert.NotEmpty(t, records[0].Summary)
}

func TestLatestCachesSuccessfulFetches(t *testing.T) {
	var hits int32
	srv := newServer(t, http.StatusOK, feedBody, &hits)
	rec := &countingRecorder{}
	c := NewClient(Options{URL: srv.URL, CacheTTL: time.Minute}, zap.NewNop(), rec)

	first := c.Latest(context.Background(), 2)
	first[0].CVEID = "mutated"
	second := c.Latest(context.Background(), 2)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, "CVE-2024-0001", second[0].CVEID)
	assert.Equal(t, []string{"ok", "cached"}, rec.outcomes)
}

func TestParseEntryClassifiesSkipped(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		source  Source
		missing []string
	}{
		{"nvd", `{"cveMetadata": {"cveId": "CVE-1"}}`, SourceNVD, []string{FieldDescription, FieldPublished}},
		{"github", `{"id": "GHSA-1"}`, SourceGitHub, []string{FieldID, FieldDescription, FieldPublished}},
		{"structured", `{"schema_version": "1.4", "summary": "x"}`, SourceStructured, []string{FieldID, FieldDescription, FieldPublished}},
		{"unknown", `{"foo": 1}`, SourceUnknown, []string{FieldID, FieldDescription, FieldPublished}},
		{"null description", `{"cveMetadata": {"cveId": "CVE-1", "datePublished": "2024"}, "containers": {"cna": {"descriptions": [{"value": null}]}}}`, SourceNVD, []string{FieldDescription}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := ParseEntry(gjson.Parse(tt.raw))
			skipped, ok := entry.(Skipped)
			require.True(t, ok, "expected Skipped, got %T", entry)
			assert.Equal(t, tt.source, skipped.Source)
			assert.Equal(t, tt.missing, skipped.Missing)
		})
	}
}
