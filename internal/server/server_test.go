package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"arena-god/internal/api"
	"arena-god/internal/constants"
	"arena-god/internal/domain"
	"arena-god/internal/lookup"
	"arena-god/internal/middleware"
	"arena-god/internal/region"
	"arena-god/internal/service"
	"arena-god/internal/store"

	"github.com/rs/zerolog"
)

type stubUpstream struct {
	resp  *api.Response
	err   error
	calls []api.Query
}

func (u *stubUpstream) Fetch(_ context.Context, q api.Query) (*api.Response, error) {
	u.calls = append(u.calls, q)
	return u.resp, u.err
}

type stubRateLimit struct{}

func (stubRateLimit) GetRateLimitInfo() api.RateLimitInfo {
	return api.RateLimitInfo{AppLimit: "20:1"}
}

func newMux(upstream lookup.Fetcher) http.Handler {
	return newMuxWith(upstream, store.NewMemoryKV())
}

func newMuxWith(upstream lookup.Fetcher, kv store.KV) http.Handler {
	logger := zerolog.Nop()
	storage := store.NewStorage(kv, logger)
	tracker := service.NewTrackerService(lookup.NewResolver(upstream, logger), storage, logger)

	mux := http.NewServeMux()
	NewTrackerServerWith(tracker, stubRateLimit{}, logger).Register(mux, NewProxyServerWith(upstream, logger))
	return middleware.RequestID(logger)(mux)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestProxyBadRequests(t *testing.T) {
	up := &stubUpstream{}
	h := newMux(up)

	cases := map[string]string{
		"/api/riot":                                "Endpoint is required",
		"/api/riot?endpoint=account&gameName=x":    "Game name and tag line are required",
		"/api/riot?endpoint=matches":               "PUUID is required",
		"/api/riot?endpoint=match&region=europe":   "Match ID is required",
		"/api/riot?endpoint=champion-mastery&id=1": "Invalid endpoint",
	}
	for target, want := range cases {
		rec := do(t, h, http.MethodGet, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		if got := errorMessage(t, rec); got != want {
			t.Fatalf("%s: error = %q, want %q", target, got, want)
		}
	}
	if len(up.calls) != 0 {
		t.Fatalf("bad requests must not reach upstream")
	}
}

func TestProxySuccess(t *testing.T) {
	up := &stubUpstream{resp: &api.Response{Status: 200, Body: []byte(`["NA1_1"]`)}}
	h := newMux(up)

	rec := do(t, h, http.MethodGet, "/api/riot?endpoint=matches&puuid=P1&queue=1700")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != `["NA1_1"]` {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
	if len(up.calls) != 1 || up.calls[0].Region != region.Americas || up.calls[0].Queue != "1700" {
		t.Fatalf("calls = %+v", up.calls)
	}
}

func TestProxyPassesUpstreamFailure(t *testing.T) {
	body := `{"status":{"status_code":404,"message":"Data not found"}}`
	up := &stubUpstream{resp: &api.Response{Status: 404, Body: []byte(body)}}
	h := newMux(up)

	rec := do(t, h, http.MethodGet, "/api/riot?endpoint=account&gameName=a&tagLine=b&region=sea")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != body {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if up.calls[0].Region != region.SEA {
		t.Fatalf("region = %s", up.calls[0].Region)
	}
}

func TestProxyInternalErrors(t *testing.T) {
	for _, up := range []*stubUpstream{
		{err: errors.New("dial tcp: timeout")},
		{resp: &api.Response{Status: 502, Body: []byte("<html>bad gateway</html>")}},
	} {
		rec := do(t, newMux(up), http.MethodGet, "/api/riot?endpoint=match&matchId=NA1_1")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := errorMessage(t, rec); got != "Internal server error" {
			t.Fatalf("error = %q", got)
		}
	}
}

// routed answers one known player in asia; everything else 404s.
type routed struct{}

func (routed) Fetch(_ context.Context, q api.Query) (*api.Response, error) {
	switch {
	case q.Endpoint == api.EndpointAccount && q.Region == region.Asia && q.GameName == "Faker" && q.TagLine == "KR1":
		return &api.Response{Status: 200, Body: []byte(`{"puuid":"P1","gameName":"Faker","tagLine":"KR1"}`)}, nil
	case q.Endpoint == api.EndpointMatches && q.Region == region.Asia:
		return &api.Response{Status: 200, Body: []byte(`["KR_1"]`)}, nil
	case q.Endpoint == api.EndpointMatch && q.MatchID == "KR_1":
		return &api.Response{Status: 200, Body: []byte(`{"info":{"participants":[{"puuid":"P1","championName":"Ahri","placement":1}]}}`)}, nil
	}
	return &api.Response{Status: 404, Body: []byte(`{}`)}, nil
}

func TestTrackerFlow(t *testing.T) {
	h := newMux(routed{})

	if rec := do(t, h, http.MethodGet, "/api/account"); rec.Code != http.StatusNotFound {
		t.Fatalf("account before sync: status = %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/api/player?gameName=Faker&tagLine=KR1")
	if rec.Code != http.StatusOK {
		t.Fatalf("player: status = %d body = %s", rec.Code, rec.Body.String())
	}
	var report service.SyncReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Account.Puuid != "P1" || len(report.NewResults) != 1 {
		t.Fatalf("report = %+v", report)
	}

	rec = do(t, h, http.MethodGet, "/api/progress")
	var progress domain.ArenaProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &progress); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if len(progress.FirstPlaceChampions) != 1 || progress.FirstPlaceChampions[0] != "Ahri" {
		t.Fatalf("progress = %+v", progress)
	}

	rec = do(t, h, http.MethodGet, "/api/history")
	if !strings.Contains(rec.Body.String(), `"matchId":"KR_1"`) {
		t.Fatalf("history = %s", rec.Body.String())
	}

	if rec := do(t, h, http.MethodPost, "/api/reset"); rec.Code != http.StatusNoContent {
		t.Fatalf("reset: status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/history")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("history after reset = %s", rec.Body.String())
	}
}

func TestTrackerErrors(t *testing.T) {
	h := newMux(routed{})

	if rec := do(t, h, http.MethodGet, "/api/player?gameName=Faker"); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing tag: status = %d", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/api/player?gameName=Nobody&tagLine=000")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown player: status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/ratelimit"); !strings.Contains(rec.Body.String(), "20:1") {
		t.Fatalf("ratelimit = %s", rec.Body.String())
	}
	if rec := do(t, h, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz: status = %d", rec.Code)
	}
}

// deadlineKV records the deadline of the context each read arrives with.
type deadlineKV struct {
	*store.MemoryKV
	deadline time.Time
	bounded  bool
}

func (kv *deadlineKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	kv.deadline, kv.bounded = ctx.Deadline()
	return kv.MemoryKV.Get(ctx, key)
}

func TestTrackerRoutesBoundedByRequestTimeout(t *testing.T) {
	kv := &deadlineKV{MemoryKV: store.NewMemoryKV()}
	h := newMuxWith(routed{}, kv)

	if rec := do(t, h, http.MethodGet, "/api/progress"); rec.Code != http.StatusOK {
		t.Fatalf("progress: status = %d", rec.Code)
	}
	if !kv.bounded {
		t.Fatalf("expected storage reads to carry a deadline")
	}
	if left := time.Until(kv.deadline); left > constants.RequestTimeout || left < constants.RequestTimeout-5*time.Second {
		t.Fatalf("deadline %s away, want about %s", left, constants.RequestTimeout)
	}
}
