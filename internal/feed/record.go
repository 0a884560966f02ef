package feed

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Record is one published vulnerability.
type Record struct {
	CVEID     string `json:"cve_id"`
	Summary   string `json:"summary"`
	Published string `json:"published"`
	CVSS      string `json:"cvss"`
}

// Source classifies feed entries that could not be used.
type Source string

const (
	SourceNVD        Source = "NVD/MITRE"
	SourceGitHub     Source = "GitHub Advisory"
	SourceStructured Source = "Structured feed"
	SourceUnknown    Source = "Unknown"
)

// Missing field names reported on skipped entries.
const (
	FieldID          = "cveMetadata.cveId"
	FieldDescription = "containers.cna.descriptions.0.value"
	FieldPublished   = "cveMetadata.datePublished"
)

// NotAvailable fills the CVSS column when no score is published.
const NotAvailable = "N/A"

// Entry is the parse result of one feed element: either Valid or Skipped.
type Entry interface {
	entry()
}

// Valid carries a usable record.
type Valid struct {
	Record Record
}

// Skipped explains why an element was dropped.
type Skipped struct {
	Source  Source
	Missing []string
}

func (Valid) entry()   {}
func (Skipped) entry() {}

// ParseEntry turns one feed element into a Valid or Skipped entry.
func ParseEntry(raw gjson.Result) Entry {
	id := raw.Get("cveMetadata.cveId")
	desc := raw.Get("containers.cna.descriptions.0.value")
	published := raw.Get("cveMetadata.datePublished")

	var missing []string
	if !present(id) {
		missing = append(missing, FieldID)
	}
	if !present(desc) {
		missing = append(missing, FieldDescription)
	}
	if !present(published) {
		missing = append(missing, FieldPublished)
	}
	if len(missing) > 0 {
		return Skipped{Source: classify(raw), Missing: missing}
	}

	return Valid{Record: Record{
		CVEID:     id.String(),
		Summary:   desc.String(),
		Published: truncate(published.String(), 10),
		CVSS:      score(raw),
	}}
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func score(raw gjson.Result) string {
	metric := raw.Get("containers.cna.metrics.0")
	for _, path := range []string{"cvssV3_1", "cvssV4_0"} {
		if v := metric.Get(path); v.Exists() {
			if base := v.Get("baseScore"); present(base) {
				return base.String()
			}
			return NotAvailable
		}
	}
	return NotAvailable
}

func classify(raw gjson.Result) Source {
	switch {
	case raw.Get("cveMetadata").Exists():
		return SourceNVD
	case strings.HasPrefix(raw.Get("id").String(), "GHSA"):
		return SourceGitHub
	case raw.Get("schema_version").Exists() && raw.Get("summary").Exists():
		return SourceStructured
	default:
		return SourceUnknown
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
