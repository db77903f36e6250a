package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ntroshkin/explore-with-me/internal/model"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	return NewHandler(newTestStorage(t)).Router()
}

func postHit(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/hit", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSaveHit(t *testing.T) {
	h := newTestHandler(t)

	rec := postHit(t, h, `{"app":"ewm-service","uri":"/events/1","ip":"10.0.0.1","timestamp":"2026-03-01 12:00:00"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	// The hit is queryable back.
	req := httptest.NewRequest(http.MethodGet,
		"/stats?start="+url.QueryEscape("2026-03-01 00:00:00")+"&end="+url.QueryEscape("2026-03-02 00:00:00"), nil)
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("stats status = %d", out.Code)
	}
	var stats []model.ViewStats
	if err := json.Unmarshal(out.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(stats) != 1 || stats[0].URI != "/events/1" || stats[0].Hits != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSaveHit_BadRequests(t *testing.T) {
	h := newTestHandler(t)

	for name, body := range map[string]string{
		"malformed json": `{"app":`,
		"missing fields": `{"app":"ewm-service"}`,
	} {
		if rec := postHit(t, h, body); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestSaveHit_DefaultTimestamp(t *testing.T) {
	h := newTestHandler(t)

	rec := postHit(t, h, `{"app":"ewm-service","uri":"/events/1","ip":"10.0.0.1"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201 with server-side timestamp", rec.Code)
	}
}

func TestGetStats_BadRequests(t *testing.T) {
	h := newTestHandler(t)
	start := url.QueryEscape("2026-03-01 00:00:00")
	end := url.QueryEscape("2026-03-02 00:00:00")

	for name, target := range map[string]string{
		"missing start":    "/stats?end=" + end,
		"missing end":      "/stats?start=" + start,
		"bad start format": "/stats?start=2026-03-01T00:00:00&end=" + end,
		"start after end":  "/stats?start=" + end + "&end=" + start,
		"bad unique":       "/stats?start=" + start + "&end=" + end + "&unique=maybe",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestGetStats_EmptyResult(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet,
		"/stats?start="+url.QueryEscape("2026-03-01 00:00:00")+"&end="+url.QueryEscape("2026-03-02 00:00:00"), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %s, want empty array", body)
	}
}

func TestGetStats_URIListForms(t *testing.T) {
	h := newTestHandler(t)
	postHit(t, h, `{"app":"ewm-service","uri":"/events/1","ip":"10.0.0.1","timestamp":"2026-03-01 12:00:00"}`)
	postHit(t, h, `{"app":"ewm-service","uri":"/events/2","ip":"10.0.0.1","timestamp":"2026-03-01 12:00:00"}`)
	postHit(t, h, `{"app":"ewm-service","uri":"/events/3","ip":"10.0.0.1","timestamp":"2026-03-01 12:00:00"}`)

	base := "/stats?start=" + url.QueryEscape("2026-03-01 00:00:00") +
		"&end=" + url.QueryEscape("2026-03-02 00:00:00")

	// Comma-joined and repeated parameters both select URIs.
	for name, target := range map[string]string{
		"comma joined": base + "&uris=" + url.QueryEscape("/events/1,/events/2"),
		"repeated":     base + "&uris=" + url.QueryEscape("/events/1") + "&uris=" + url.QueryEscape("/events/2"),
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		var stats []model.ViewStats
		if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if len(stats) != 2 {
			t.Errorf("%s: got %d rows, want 2", name, len(stats))
		}
	}
}
