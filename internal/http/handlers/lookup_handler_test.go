package handlers

import (
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/atharvsharma432199/phone-api/internal/domain"
)

func TestLookup_Success(t *testing.T) {
	f := newFixture(t)
	f.addKey(t, domain.APIKey{Key: "k1", Owner: "o", MaxUsage: 5, IsActive: true})

	w := f.do(t, http.MethodGet, "/?apikey=k1&query=%2B91+98765+43210", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	resp := decode[LookupResponse](t, w)
	if resp.Status != "success" || resp.Data.Name != "Asha" || resp.Data.State != "KA" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Usage != 1 || resp.MaxUsage != 5 {
		t.Fatalf("usage = %d/%d", resp.Usage, resp.MaxUsage)
	}
	if !strings.HasSuffix(resp.ResponseTime, "s") || !strings.Contains(resp.ResponseTime, ".") {
		t.Fatalf("response_time = %q", resp.ResponseTime)
	}

	rows := usageRows(t, f.db)
	if len(rows) != 1 || !rows[0].Success || rows[0].Query != "+91 98765 43210" {
		t.Fatalf("ledger = %+v", rows)
	}
}

func TestLookup_HeaderKey(t *testing.T) {
	f := newFixture(t)
	f.addKey(t, domain.APIKey{Key: "hk", Owner: "o", MaxUsage: -1, IsActive: true})

	req := "/?query=9000000001"
	w := f.do(t, http.MethodGet, req, "", false)
	expectError(t, w, http.StatusUnauthorized, ErrCodeKeyMissing)

	hreq := newGet(req)
	hreq.Header.Set("X-API-Key", "hk")
	w = serve(f.r, hreq)
	if w.Code != http.StatusOK {
		t.Fatalf("header key: %d %s", w.Code, w.Body.String())
	}
	if resp := decode[LookupResponse](t, w); resp.Data.Name != "Ravi" || resp.MaxUsage != -1 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestLookup_ErrorMapping(t *testing.T) {
	f := newFixture(t)
	past := time.Now().Add(-time.Hour)
	f.addKey(t, domain.APIKey{Key: "ok", Owner: "o", MaxUsage: 10, IsActive: true})
	f.addKey(t, domain.APIKey{Key: "off", Owner: "o", MaxUsage: 10, IsActive: false})
	f.addKey(t, domain.APIKey{Key: "old", Owner: "o", MaxUsage: 10, IsActive: true, ExpiresAt: &past})
	f.addKey(t, domain.APIKey{Key: "spent", Owner: "o", MaxUsage: 1, CurrentUsage: 1, IsActive: true})

	cases := []struct {
		name   string
		target string
		status int
		code   string
		msg    string
	}{
		{"no key", "/?query=9876543210", http.StatusUnauthorized, ErrCodeKeyMissing, "API key is required"},
		{"blank key", "/?apikey=++&query=9876543210", http.StatusUnauthorized, ErrCodeKeyMissing, "API key is required"},
		{"unknown key", "/?apikey=ghost&query=9876543210", http.StatusUnauthorized, ErrCodeKeyUnknown, "Invalid API key"},
		{"inactive", "/?apikey=off&query=9876543210", http.StatusForbidden, ErrCodeKeyInvalid, "inactive"},
		{"expired", "/?apikey=old&query=9876543210", http.StatusForbidden, ErrCodeKeyInvalid, "expired"},
		{"quota", "/?apikey=spent&query=9876543210", http.StatusForbidden, ErrCodeKeyInvalid, "limit exceeded"},
		{"no query", "/?apikey=ok", http.StatusBadRequest, ErrCodeQueryMissing, "Query parameter is required"},
		{"blank query", "/?apikey=ok&query=+++", http.StatusBadRequest, ErrCodeQueryMissing, "Query parameter is required"},
		{"no match", "/?apikey=ok&query=1111111111", http.StatusNotFound, ErrCodeNotFound, "not found"},
		{"no digits", "/?apikey=ok&query=abc", http.StatusNotFound, ErrCodeNotFound, "not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, tc.target, "", false)
			er := expectError(t, w, tc.status, tc.code)
			if !strings.Contains(er.Message, tc.msg) {
				t.Fatalf("message = %q; want it to contain %q", er.Message, tc.msg)
			}
			if tc.status == http.StatusNotFound && er.ResponseTime == "" {
				t.Fatalf("not found must carry response_time")
			}
		})
	}

	// Every attempt with a non-blank key reached the ledger; blank queries as NO_QUERY.
	rows := usageRows(t, f.db)
	var noQuery int
	for _, r := range rows {
		if r.Success {
			t.Fatalf("failure logged as success: %+v", r)
		}
		if r.Query == "NO_QUERY" {
			noQuery++
		}
	}
	if noQuery != 2 {
		t.Fatalf("NO_QUERY rows = %d; want 2 (rows %+v)", noQuery, rows)
	}
}

func TestLookup_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.addKey(t, domain.APIKey{Key: "k", Owner: "o", MaxUsage: 10, IsActive: true})

	_ = f.records.Close()
	if err := os.Remove(f.records.Path()); err != nil {
		t.Fatalf("remove store: %v", err)
	}
	f.records.Reset()

	w := f.do(t, http.MethodGet, "/?apikey=k&query=9876543210", "", false)
	expectError(t, w, http.StatusServiceUnavailable, ErrCodeStoreUnavailable)
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}

	// Not billed.
	w = f.do(t, http.MethodGet, "/api/admin/keys/k", "", true)
	if kv := decode[KeyView](t, w); kv.CurrentUsage != 0 {
		t.Fatalf("usage = %d; want 0", kv.CurrentUsage)
	}
}
