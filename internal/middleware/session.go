package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/prepwise/prepwise-api/internal/auth"
	"github.com/prepwise/prepwise-api/internal/utils"
)

// Locals keys populated by SessionAuth for downstream handlers.
const (
	LocalUserID      = "user_id"
	LocalUserEmail   = "user_email"
	LocalUserName    = "user_name"
	LocalUserPicture = "user_picture"
)

// SessionAuth resolves the session cookie against the session store and
// exposes the identity via request locals. Requests without a live session
// receive 401.
func SessionAuth(store *auth.SessionStore, cookieName string) fiber.Handler {
	if cookieName == "" {
		cookieName = "sid"
	}

	return func(c *fiber.Ctx) error {
		sid := c.Cookies(cookieName)
		if sid == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		identity, err := store.Get(c.UserContext(), sid)
		if errors.Is(err, auth.ErrSessionNotFound) {
			return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		if err != nil {
			return utils.SendError(c, fiber.StatusInternalServerError, "session lookup failed")
		}

		c.Locals(LocalUserID, identity.UserID)
		c.Locals(LocalUserEmail, identity.Email)
		c.Locals(LocalUserName, identity.Name)
		c.Locals(LocalUserPicture, identity.Picture)

		return c.Next()
	}
}
