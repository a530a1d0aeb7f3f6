package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

const redacted = "[REDACTED]"

var (
	defaultMaskParams  = []string{"apikey", "api_key", "pass", "password", "token"}
	defaultMaskHeaders = []string{"authorization", "cookie", "set-cookie", "x-api-key"}

	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Six or more digits, ASCII or full-width, optionally separated by
	// single spaces, dots, dashes or parentheses.
	phoneRE = regexp.MustCompile(`\+?[0-9\x{FF10}-\x{FF19}](?:[ .\-()]?[0-9\x{FF10}-\x{FF19}]){5,}`)
)

// RedactOptions adds names to the built-in masking lists. Matching is
// case-insensitive.
type RedactOptions struct {
	MaskParams  []string // query parameters whose values are dropped entirely
	MaskHeaders []string // headers whose values are dropped entirely
}

// Redactor scrubs credentials and personal data from request metadata.
// Masked parameters and headers are replaced wholesale; every other value has
// UUIDs, e-mail addresses and phone-number-like digit runs replaced.
type Redactor struct {
	params  map[string]struct{}
	headers map[string]struct{}
}

func NewRedactor(opts RedactOptions) *Redactor {
	return &Redactor{
		params:  lowerSet(defaultMaskParams, opts.MaskParams),
		headers: lowerSet(defaultMaskHeaders, opts.MaskHeaders),
	}
}

func lowerSet(lists ...[]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, l := range lists {
		for _, s := range l {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out[s] = struct{}{}
			}
		}
	}
	return out
}

// Text redacts identifiers inside free text. UUIDs go first so the phone
// pattern never eats their digit groups.
func (r *Redactor) Text(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// Query returns a decoded, key-sorted rendition of a raw query string with
// masked parameters blanked and the rest passed through Text. An unparsable
// query is redacted as plain text.
func (r *Redactor) Query(raw string) string {
	if raw == "" {
		return ""
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return r.Text(raw)
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		_, masked := r.params[strings.ToLower(k)]
		for _, v := range vals[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(r.Text(k))
			b.WriteByte('=')
			if masked {
				b.WriteString(redacted)
			} else {
				b.WriteString(r.Text(v))
			}
		}
	}
	return b.String()
}

// Headers flattens h into a map suitable for structured logging. Masked
// headers are present with a redacted value, the request id header is omitted.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		lk := strings.ToLower(k)
		if lk == strings.ToLower(requestIDHeader) {
			continue
		}
		if _, ok := r.headers[lk]; ok {
			out[k] = redacted
			continue
		}
		out[k] = r.Text(strings.Join(vv, ", "))
	}
	return out
}
