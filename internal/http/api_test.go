package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mikrosense/mikrosense/internal/session"
)

func fakeRouterHost(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/system/resource", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"board-name":"hAP ac2","version":"7.14","uptime":"1d2h3m"}`))
	})
	mux.HandleFunc("/rest/interface", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"name": "ether1", "type": "ether", "running": "true"},
		})
	})
	mux.HandleFunc("/rest/ip/hotspot/active", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/rest/ip/dhcp-server/lease", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/rest/interface/wireless/registration-table", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/rest/log", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse router url: %v", err)
	}
	return u.Host
}

type testAPI struct {
	base     string
	client   *http.Client
	registry *session.Registry
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	registry := session.NewRegistry(session.Options{Secret: "test-secret"}, nil, nil)
	t.Cleanup(registry.CloseAll)

	api := New(registry, nil)
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	return &testAPI{base: server.URL, client: server.Client(), registry: registry}
}

func (ta *testAPI) request(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, ta.base+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ta.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	decoded := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (ta *testAPI) login(t *testing.T) string {
	t.Helper()
	resp, body := ta.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"host":     fakeRouterHost(t),
		"username": "admin",
		"password": "pw",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with %d: %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("expected token in login response")
	}
	return token
}

func TestHealthzIsOpen(t *testing.T) {
	ta := newTestAPI(t)
	resp, body := ta.request(t, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz returned %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected healthz body: %v", body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ta := newTestAPI(t)
	for _, path := range []string{
		"/api/auth/verify",
		"/api/router/info",
		"/api/monitoring/status",
		"/api/notifications/alerts",
		"/api/sessions/statistics",
	} {
		resp, _ := ta.request(t, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s without token returned %d, want 401", path, resp.StatusCode)
		}
	}
}

func TestLoginVerifyAndLogoutFlow(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.login(t)

	resp, body := ta.request(t, http.MethodGet, "/api/auth/verify", token, nil)
	if resp.StatusCode != http.StatusOK || body["valid"] != true {
		t.Fatalf("verify failed: %d %v", resp.StatusCode, body)
	}

	resp, _ = ta.request(t, http.MethodPost, "/api/auth/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout returned %d", resp.StatusCode)
	}
	resp, _ = ta.request(t, http.MethodGet, "/api/auth/verify", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("token must be dead after logout, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsMissingHost(t *testing.T) {
	ta := newTestAPI(t)
	resp, _ := ta.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "admin"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing host, got %d", resp.StatusCode)
	}
}

func TestRouterInfoProxy(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.login(t)

	resp, body := ta.request(t, http.MethodGet, "/api/router/info", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("router info returned %d", resp.StatusCode)
	}
	if body["board_name"] != "hAP ac2" {
		t.Fatalf("unexpected info payload: %v", body)
	}
}

func TestExecuteEnforcesAllowlist(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.login(t)

	resp, _ := ta.request(t, http.MethodPost, "/api/router/execute", token, map[string]any{
		"command": "/system/reboot",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for disallowed command, got %d", resp.StatusCode)
	}

	resp, body := ta.request(t, http.MethodPost, "/api/router/execute", token, map[string]any{
		"command": "/interface",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("allowed command returned %d: %v", resp.StatusCode, body)
	}
}

func TestMonitoringLifecycleOverHTTP(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.login(t)

	resp, _ := ta.request(t, http.MethodPost, "/api/monitoring/scan", token, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("scan while stopped must 409, got %d", resp.StatusCode)
	}

	resp, body := ta.request(t, http.MethodPost, "/api/monitoring/start", token, nil)
	if resp.StatusCode != http.StatusOK || body["running"] != true {
		t.Fatalf("start failed: %d %v", resp.StatusCode, body)
	}

	resp, _ = ta.request(t, http.MethodPost, "/api/monitoring/scan", token, nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("scan while running returned %d", resp.StatusCode)
	}

	resp, body = ta.request(t, http.MethodPost, "/api/monitoring/stop", token, nil)
	if resp.StatusCode != http.StatusOK || body["running"] != false {
		t.Fatalf("stop failed: %d %v", resp.StatusCode, body)
	}
}

func TestNotificationLifecycleOverHTTP(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.login(t)

	resp, created := ta.request(t, http.MethodPost, "/api/notifications/test", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("test alert returned %d", resp.StatusCode)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("expected created alert id")
	}

	resp, body := ta.request(t, http.MethodGet, "/api/notifications/alerts/unread", token, nil)
	if resp.StatusCode != http.StatusOK || body["count"].(float64) != 1 {
		t.Fatalf("expected one unread alert: %d %v", resp.StatusCode, body)
	}

	resp, _ = ta.request(t, http.MethodPost, fmt.Sprintf("/api/notifications/alerts/%s/read", id), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mark read returned %d", resp.StatusCode)
	}

	resp, _ = ta.request(t, http.MethodPost, "/api/notifications/alerts/unknown/read", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown alert id must 404, got %d", resp.StatusCode)
	}

	resp, body = ta.request(t, http.MethodGet, "/api/notifications/alerts/unread", token, nil)
	if resp.StatusCode != http.StatusOK || body["count"].(float64) != 0 {
		t.Fatalf("expected no unread alerts after read: %v", body)
	}
}

func TestSessionStatisticsEmpty(t *testing.T) {
	ta := newTestAPI(t)
	token := ta.login(t)

	resp, body := ta.request(t, http.MethodGet, "/api/sessions/statistics", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("statistics returned %d", resp.StatusCode)
	}
	if body["active_sessions"].(float64) != 0 {
		t.Fatalf("expected empty tracker, got %v", body)
	}
	completed, ok := body["completed"].(map[string]any)
	if !ok || completed["total_sessions"].(float64) != 0 {
		t.Fatalf("expected zero completed sessions, got %v", body)
	}
}
