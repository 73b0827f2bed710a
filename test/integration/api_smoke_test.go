package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/sensgen/internal/app/apiapp"
	"github.com/ivankudzin/sensgen/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.HTTP.Addr = ":0"
	cfg.Store.Driver = config.StoreDriverMemory
	cfg.Flow.LoadingDelay = 10 * time.Millisecond
	cfg.Flow.GeneratingDelay = 10 * time.Millisecond
	cfg.Flow.PollInterval = 10 * time.Millisecond

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}

	ts := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = app.Shutdown(context.Background())
	})
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestIssuanceFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	var created struct {
		AccessToken string `json:"access_token"`
	}
	status := do(t, ts, http.MethodPost, "/v1/sessions", "", nil, &created)
	if status != http.StatusCreated || created.AccessToken == "" {
		t.Fatalf("create session: status=%d token=%q", status, created.AccessToken)
	}
	token := created.AccessToken

	if status := do(t, ts, http.MethodGet, "/v1/session", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized without token, got %d", status)
	}

	status = do(t, ts, http.MethodPost, "/v1/session/login", token, map[string]any{
		"access_code":  "171",
		"platform":     "ios",
		"device_model": "iPhone 14 Pro",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("login: status=%d", status)
	}

	waitForState(t, ts, token, "tier_select")

	if status := do(t, ts, http.MethodPost, "/v1/session/tier", token, map[string]any{"tier": "high"}, nil); status != http.StatusOK {
		t.Fatalf("select tier: status=%d", status)
	}
	if status := do(t, ts, http.MethodPost, "/v1/session/generate", token, nil, nil); status != http.StatusOK {
		t.Fatalf("generate: status=%d", status)
	}

	snap := waitForState(t, ts, token, "results")
	if snap.Profile == nil || snap.Profile.IOS == nil || snap.Profile.IOS.LongPress != "1.00" {
		t.Fatalf("unexpected profile: %+v", snap.Profile)
	}
	if snap.Profile.IOS.Cycles < 1 || snap.Profile.IOS.Cycles > 10 {
		t.Fatalf("cycles out of range: %d", snap.Profile.IOS.Cycles)
	}
	if !snap.Cooldown.Active || snap.Cooldown.RemainingSec <= 0 {
		t.Fatalf("expected active cooldown: %+v", snap.Cooldown)
	}

	var refusal struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	status = do(t, ts, http.MethodPost, "/v1/session/generate", token, nil, &refusal)
	if status != http.StatusTooManyRequests || refusal.Code != "COOLDOWN_ACTIVE" || refusal.RetryAfterSec <= 0 {
		t.Fatalf("expected cooldown refusal, got status=%d body=%+v", status, refusal)
	}

	if status := do(t, ts, http.MethodDelete, "/v1/session", token, nil, nil); status != http.StatusOK {
		t.Fatalf("delete session: status=%d", status)
	}
	if status := do(t, ts, http.MethodGet, "/v1/session", token, nil, nil); status != http.StatusNotFound {
		t.Fatalf("expected not found after delete, got %d", status)
	}
}

type snapshot struct {
	State   string `json:"state"`
	Profile *struct {
		IOS *struct {
			LongPress string `json:"long_press"`
			Cycles    int    `json:"cycles"`
		} `json:"ios"`
	} `json:"profile"`
	Cooldown struct {
		Active       bool  `json:"active"`
		RemainingSec int64 `json:"remaining_sec"`
	} `json:"cooldown"`
}

func waitForState(t *testing.T, ts *httptest.Server, token, state string) snapshot {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		var snap snapshot
		if status := do(t, ts, http.MethodGet, "/v1/session", token, nil, &snap); status != http.StatusOK {
			t.Fatalf("snapshot: status=%d", status)
		}
		if snap.State == state {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("state %q not reached, last %q", state, snap.State)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func do(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Client-Id", "smoke-browser")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}
