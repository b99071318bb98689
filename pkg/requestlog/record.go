package requestlog

import (
	"maps"
	"time"
	"unicode/utf8"
)

// ExcerptLength is the number of characters of body kept in a Summary.
const ExcerptLength = 200

// Record captures the details of one inbound request.
// Records are immutable once returned by the Recorder.
type Record struct {
	// ID is a time-sortable unique identifier.
	ID string `json:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`

	Method      string `json:"method"`
	Path        string `json:"path"`
	QueryString string `json:"queryString,omitempty"`

	// Headers holds one value per header name; repeated headers are joined with ", ".
	Headers map[string]string `json:"headers,omitempty"`

	// Body is the request body, truncated to the recorder's maximum body size.
	Body string `json:"body,omitempty"`

	// BodySize is the original body size in bytes.
	BodySize int `json:"bodySize"`

	// Truncated reports whether Body was cut short.
	Truncated bool `json:"truncated,omitempty"`
}

// Summary is the listing form of a Record.
type Summary struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	QueryString string    `json:"queryString,omitempty"`
	BodyExcerpt string    `json:"bodyExcerpt,omitempty"`
}

// Summary returns the listing form of r.
func (r *Record) Summary() Summary {
	return Summary{
		ID:          r.ID,
		Timestamp:   r.Timestamp,
		Method:      r.Method,
		Path:        r.Path,
		QueryString: r.QueryString,
		BodyExcerpt: excerpt(r.Body, ExcerptLength),
	}
}

func (r *Record) clone() *Record {
	c := *r
	c.Headers = maps.Clone(r.Headers)
	return &c
}

// excerpt returns the first n characters of s.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// truncate cuts b to at most max bytes without splitting a UTF-8 sequence.
// max <= 0 disables truncation.
func truncate(b []byte, max int) ([]byte, bool) {
	if max <= 0 || len(b) <= max {
		return b, false
	}
	n := max
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	if n == 0 && !utf8.RuneStart(b[0]) {
		// not valid UTF-8 near the cut; fall back to a byte cut
		n = max
	}
	return b[:n], true
}
