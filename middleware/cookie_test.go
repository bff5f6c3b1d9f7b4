package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	goSession "github.com/MrEthical07/goSession"
)

func TestSetRefreshCookieAttributes(t *testing.T) {
	controller := newTestController(t)

	rec := httptest.NewRecorder()
	SetRefreshCookie(rec, controller, "the-refresh-token")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	cookie := cookies[0]
	if cookie.Name != "refresh_token" || cookie.Value != "the-refresh-token" {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
	if !cookie.HttpOnly {
		t.Fatal("refresh cookie must be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("expected SameSite=Strict, got %v", cookie.SameSite)
	}
	if cookie.Path != "/" {
		t.Fatalf("unexpected path: %q", cookie.Path)
	}
	if want := int(controller.RefreshTTL().Seconds()); cookie.MaxAge != want {
		t.Fatalf("MaxAge = %d, want %d", cookie.MaxAge, want)
	}
}

func TestClearRefreshCookie(t *testing.T) {
	controller := newTestController(t)

	rec := httptest.NewRecorder()
	ClearRefreshCookie(rec, controller)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].Value != "" || cookies[0].MaxAge >= 0 {
		t.Fatalf("cookie not expired: %+v", cookies[0])
	}
}

func TestRefreshTokenFromCookie(t *testing.T) {
	controller := newTestController(t)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	if _, ok := RefreshTokenFromCookie(req, controller); ok {
		t.Fatal("expected miss with no cookie")
	}

	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "the-token"})
	token, ok := RefreshTokenFromCookie(req, controller)
	if !ok || token != "the-token" {
		t.Fatalf("got (%q, %v)", token, ok)
	}
}

func TestCookieRoundTripThroughRotation(t *testing.T) {
	controller := newTestController(t)
	session := signUp(t, controller)

	// Write the cookie the way a login handler would.
	rec := httptest.NewRecorder()
	SetRefreshCookie(rec, controller, session.RefreshToken)

	// Present it back the way a refresh handler would read it.
	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}

	token, ok := RefreshTokenFromCookie(req, controller)
	if !ok {
		t.Fatal("cookie did not round-trip")
	}

	rotated, err := controller.Refresh(req.Context(), token, goSession.SourceCookie)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rotated.RefreshToken == session.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
}
