package serverutils

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "cg_session"
	sessionLocalKey   = "session_id"
)

// SessionMiddleware gives every browser an anonymous session id. Settings and
// the last persona suggestion are kept per session.
func SessionMiddleware(ttl time.Duration) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// fasthttp reuses the cookie buffer after the request ends.
		id := strings.Clone(ctx.Cookies(SessionCookieName))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		ctx.Cookie(&fiber.Cookie{
			Name:     SessionCookieName,
			Value:    id,
			Path:     "/",
			Expires:  time.Now().Add(ttl),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		ctx.Locals(sessionLocalKey, id)
		return ctx.Next()
	}
}

func SessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(sessionLocalKey).(string)
	return id
}
