package http

import (
	"time"

	"lifeops/internal/auth/config"

	"github.com/gofiber/fiber/v2"
)

// cookieWriter sets and expires the auth cookies with the configured attributes
type cookieWriter struct {
	cfg *config.Config
}

func (w cookieWriter) base(name, value string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     w.cfg.CookiePath,
		Domain:   w.cfg.CookieDomain,
		Secure:   w.cfg.CookieSecure,
		HTTPOnly: w.cfg.CookieHTTPOnly,
		SameSite: w.cfg.CookieSameSite,
	}
}

// setSession writes the session token cookie. A session that should not be
// remembered gets a browser-session cookie.
func (w cookieWriter) setSession(c *fiber.Ctx, token string, expiresAt time.Time, remember bool) {
	cookie := w.base(config.SessionCookieName, token)
	if remember {
		cookie.MaxAge = int(time.Until(expiresAt).Seconds())
		cookie.Expires = expiresAt
	} else {
		cookie.SessionOnly = true
	}
	c.Cookie(cookie)
}

func (w cookieWriter) setCache(c *fiber.Ctx, raw string) {
	if raw == "" {
		return
	}
	cookie := w.base(config.CacheCookieName, raw)
	cookie.MaxAge = int(w.cfg.CacheMaxAge.Seconds())
	cookie.Expires = time.Now().Add(w.cfg.CacheMaxAge)
	c.Cookie(cookie)
}

func (w cookieWriter) setState(c *fiber.Ctx, raw string) {
	cookie := w.base(config.StateCookieName, raw)
	cookie.MaxAge = int(w.cfg.StateMaxAge.Seconds())
	cookie.Expires = time.Now().Add(w.cfg.StateMaxAge)
	c.Cookie(cookie)
}

func (w cookieWriter) clear(c *fiber.Ctx, names ...string) {
	for _, name := range names {
		cookie := w.base(name, "")
		cookie.MaxAge = -1
		cookie.Expires = time.Now().Add(-1 * time.Hour)
		c.Cookie(cookie)
	}
}

func (w cookieWriter) clearSession(c *fiber.Ctx) {
	w.clear(c, config.SessionCookieName, config.CacheCookieName)
}
