package auth

import (
	"log"
	"strings"

	"gondolatrack/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

// POST /api/auth/login
func LoginHandler(client *upstream.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		body.Usuario = strings.TrimSpace(body.Usuario)
		if body.Usuario == "" || body.Senha == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Usuário e senha são obrigatórios")
		}

		token, user, err := client.Login(body.Usuario, body.Senha)
		if err != nil {
			return err
		}
		if token == "" {
			return fiber.NewError(fiber.StatusBadGateway, "A API não devolveu o token de sessão")
		}
		if user.Username == "" {
			user.Username = body.Usuario
		}

		c.Cookie(&fiber.Cookie{
			Name:     client.CookieName(),
			Value:    token,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.JSON(fiber.Map{"ok": true, "user": user})
	}
}

// POST /api/auth/logout
func LogoutHandler(client *upstream.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Cookies(client.CookieName()); token != "" {
			if err := client.WithToken(token).Logout(); err != nil {
				log.Printf("[WARN] logout na API falhou: %v", err)
			}
		}
		c.ClearCookie(client.CookieName())
		return c.JSON(fiber.Map{"ok": true})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": User(c)})
	}
}
