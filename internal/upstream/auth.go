package upstream

import (
	"gondolatrack/internal/models"
	"gondolatrack/internal/normalize"

	"github.com/gofiber/fiber/v2"
)

// Login relays the credentials and returns the session token the API set.
func (c *Client) Login(usuario, senha string) (string, models.AuthUser, error) {
	res, err := c.do(fiber.MethodPost, "/auth/login", nil, map[string]string{
		"usuario": usuario,
		"senha":   senha,
	})
	if err != nil {
		return "", models.AuthUser{}, err
	}
	raw := normalize.Decode(res.body)
	user, _ := normalize.Field(raw, "user")
	token := res.cookie
	if token == "" {
		token = normalize.String(raw, "token", "accessToken", "access_token")
	}
	return token, normalize.One[models.AuthUser](user), nil
}

func (c *Client) Logout() error {
	_, err := c.send(fiber.MethodPost, "/auth/logout", nil)
	return err
}

// Me returns the user behind the bound token.
func (c *Client) Me() (models.AuthUser, error) {
	raw, err := c.get("/auth/me", nil)
	if err != nil {
		return models.AuthUser{}, err
	}
	user, _ := normalize.Field(raw, "user")
	return normalize.One[models.AuthUser](user), nil
}
