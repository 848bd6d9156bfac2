package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoginSetsSessionCookie(t *testing.T) {
	_, r := setupTestAPI(t, testOptions())

	rr := doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "Admin@Example.com",
		"password": testAdminPassword,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	cookies := rr.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != SessionName {
		t.Fatalf("expected %s cookie, got %v", SessionName, cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.AddCookie(cookies[0])
	verify := httptest.NewRecorder()
	r.ServeHTTP(verify, req)
	if verify.Code != http.StatusOK {
		t.Fatalf("expected cookie to authenticate, got %d", verify.Code)
	}
	if !strings.Contains(verify.Body.String(), `"authenticated":true`) {
		t.Fatalf("unexpected verify body %q", verify.Body.String())
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	_, r := setupTestAPI(t, testOptions())

	rr := doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    testAdminEmail,
		"password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Invalid credentials") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatal("expected no session cookie on failed login")
	}
}

func TestLoginRequiresFields(t *testing.T) {
	_, r := setupTestAPI(t, testOptions())

	rr := doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{"email": testAdminEmail})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestLoginIsThrottled(t *testing.T) {
	opts := testOptions()
	opts.LoginRatePerMinute = 2
	_, r := setupTestAPI(t, opts)

	payload := map[string]string{"email": testAdminEmail, "password": "wrong"}
	for i := 0; i < 2; i++ {
		if rr := doJSON(t, r, http.MethodPost, "/api/auth/login", "", payload); rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected status %d, got %d", i+1, http.StatusUnauthorized, rr.Code)
		}
	}

	rr := doJSON(t, r, http.MethodPost, "/api/auth/login", "", payload)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestVerifyWithoutTokenIsUnauthorized(t *testing.T) {
	_, r := setupTestAPI(t, testOptions())

	rr := doJSON(t, r, http.MethodGet, "/api/auth/verify", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"authenticated":false`) {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}

	rr = doJSON(t, r, http.MethodGet, "/api/auth/verify", "not-a-token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected forged token to be rejected, got %d", rr.Code)
	}
}

func TestLogoutExpiresCookie(t *testing.T) {
	_, r := setupTestAPI(t, testOptions())

	rr := doJSON(t, r, http.MethodPost, "/api/auth/logout", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	cookies := rr.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired session cookie, got %v", cookies)
	}
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	_, r := setupTestAPI(t, testOptions())

	rr := doJSON(t, r, http.MethodGet, "/api/admin/stats", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Unauthorized") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestShowStatsCountsRecords(t *testing.T) {
	api, r := setupTestAPI(t, testOptions())
	token := adminToken(t, api)

	for _, title := range []string{"First", "Second"} {
		if rr := doJSON(t, r, http.MethodPost, "/api/blogs", token, map[string]string{"title": title, "content": "Body"}); rr.Code != http.StatusCreated {
			t.Fatalf("failed to create blog: %d %s", rr.Code, rr.Body.String())
		}
	}
	contact := map[string]string{
		"name":    "Jane",
		"email":   "jane@example.com",
		"subject": "Hello",
		"message": "I would like to work with you.",
	}
	if rr := doJSON(t, r, http.MethodPost, "/api/contacts", "", contact); rr.Code != http.StatusCreated {
		t.Fatalf("failed to create contact: %d %s", rr.Code, rr.Body.String())
	}

	rr := doJSON(t, r, http.MethodGet, "/api/admin/stats", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var stats struct {
		BlogCount    int64 `json:"blogCount"`
		ContactCount int64 `json:"contactCount"`
		UnreadCount  int64 `json:"unreadCount"`
	}
	decodeBody(t, rr, &stats)
	if stats.BlogCount != 2 || stats.ContactCount != 1 || stats.UnreadCount != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"Bearer abc":     "abc",
		"bearer  abc ":   "abc",
		"Basic dXNlcjpw": "",
		"Bearer":         "",
	}
	for header, want := range tests {
		if got := bearerToken(header); got != want {
			t.Fatalf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
