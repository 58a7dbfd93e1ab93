package middleware

import (
	"strings"

	"coffeetrucks/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SessionCookie is the cookie the identity service sets for browser sessions.
const SessionCookie = "session_token"

const sessionKey = "session_user"

// Session resolves the caller from a Bearer token or the session cookie and
// stores it in the Fiber context. It never rejects a request; handlers decide
// what an anonymous caller may do.
func Session(verifier *session.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(SessionCookie)
		}
		if token == "" {
			return c.Next()
		}

		user, err := verifier.Verify(token)
		if err != nil {
			logrus.WithError(err).Debug("ignoring invalid session token")
			return c.Next()
		}
		c.Locals(sessionKey, user)
		return c.Next()
	}
}

// FromCtx returns the session user stored by Session, or nil.
func FromCtx(c *fiber.Ctx) *session.User {
	user, _ := c.Locals(sessionKey).(*session.User)
	return user
}

// Expected format: "Bearer <token>"
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
