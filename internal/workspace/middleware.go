package workspace

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const localsKey = "workspace"

// Middleware gives every browser a workspace id, kept in cookieName.
func Middleware(cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(cookieName)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(localsKey, id)
		return c.Next()
	}
}

// ID is the current request's workspace id.
func ID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsKey).(string)
	return id
}

// Key scopes name to the current workspace.
func Key(c *fiber.Ctx, name string) string {
	return ID(c) + "/" + name
}
