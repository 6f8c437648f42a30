package auth

import (
	"errors"
	"net/url"
	"strings"

	"gondolatrack/internal/models"
	"gondolatrack/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserKey  = "auth_user"
	CtxTokenKey = "auth_token"
)

// Guard lets a request through only with a valid session cookie. With a
// secret the token is verified locally, otherwise the API is asked via
// /auth/me. API routes get 401; pages are sent to /login?next=<path>.
func Guard(secret string, client *upstream.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(client.CookieName())
		if token == "" {
			return deny(c)
		}

		var user models.AuthUser
		if secret != "" {
			claims, err := ParseToken(secret, token)
			if err != nil {
				return deny(c)
			}
			user = claims.User()
		} else {
			me, err := client.WithToken(token).Me()
			if err != nil {
				if errors.Is(err, upstream.ErrUnreachable) && isAPI(c) {
					return err
				}
				return deny(c)
			}
			user = me
		}

		c.Locals(CtxUserKey, user)
		c.Locals(CtxTokenKey, token)
		return c.Next()
	}
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

func deny(c *fiber.Ctx) error {
	if isAPI(c) {
		return fiber.NewError(fiber.StatusUnauthorized, "Sessão expirada, faça login novamente")
	}
	return c.Redirect("/login?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
}

// Token is the session token of the current request.
func Token(c *fiber.Ctx) string {
	t, _ := c.Locals(CtxTokenKey).(string)
	return t
}

func User(c *fiber.Ctx) models.AuthUser {
	u, _ := c.Locals(CtxUserKey).(models.AuthUser)
	return u
}

// Client binds the API client to the caller's token.
func Client(c *fiber.Ctx, base *upstream.Client) *upstream.Client {
	return base.WithToken(Token(c))
}
