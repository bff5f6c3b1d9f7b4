package middleware

import (
	"net/http"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

// SetRefreshCookie writes the refresh token into the guarded cookie using the
// Controller's cookie configuration. HttpOnly is always forced on; a refresh
// token readable by script would defeat the channel binding.
func SetRefreshCookie(w http.ResponseWriter, controller *goSession.Controller, refreshToken string) {
	cfg := controller.CookieConfig()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    refreshToken,
		Path:     cookiePath(cfg),
		Domain:   cfg.Domain,
		MaxAge:   int(controller.RefreshTTL() / time.Second),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// ClearRefreshCookie expires the refresh cookie. Logout is stateless
// server-side; dropping the cookie is the whole operation.
func ClearRefreshCookie(w http.ResponseWriter, controller *goSession.Controller) {
	cfg := controller.CookieConfig()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     cookiePath(cfg),
		Domain:   cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}

// RefreshTokenFromCookie reads the refresh token from the request's guarded
// cookie. The second return is false when the cookie is absent; callers pass
// the token to the Controller with goSession.SourceCookie.
func RefreshTokenFromCookie(r *http.Request, controller *goSession.Controller) (string, bool) {
	cookie, err := r.Cookie(controller.CookieConfig().Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func cookiePath(cfg goSession.CookieConfig) string {
	if cfg.Path == "" {
		return "/"
	}
	return cfg.Path
}
