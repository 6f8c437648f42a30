package catalog

import (
	"strconv"
	"strings"

	"gondolatrack/internal/audit"
	"gondolatrack/internal/auth"
	"gondolatrack/internal/httpx"
	"gondolatrack/internal/models"
	"gondolatrack/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

// GET /api/lojas
func ListLojasHandler(api *upstream.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lojas, err := auth.Client(c, api).Lojas()
		if err != nil {
			return err
		}
		return c.JSON(lojas)
	}
}

// POST /api/lojas
func CreateLojaHandler(api *upstream.Client, au *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body models.LojaForm
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		body.Nome = strings.TrimSpace(body.Nome)
		body.CodigoErp = strings.TrimSpace(body.CodigoErp)
		if body.Nome == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nome da loja é obrigatório")
		}

		loja, err := auth.Client(c, api).CriarLoja(body)
		au.Track(c, audit.LogOptions{
			EntityType:  "loja",
			EntityID:    strconv.FormatInt(loja.IDLoja, 10),
			Action:      models.AuditActionCreate,
			Description: "Loja criada: " + body.Nome,
			Payload:     body,
			Err:         err,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(loja)
	}
}

// DELETE /api/lojas/:id
func DeleteLojaHandler(api *upstream.Client, au *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		err = auth.Client(c, api).ExcluirLoja(id)
		au.Track(c, audit.LogOptions{
			EntityType:  "loja",
			EntityID:    strconv.FormatInt(id, 10),
			Action:      models.AuditActionDelete,
			Description: "Loja excluída",
			Err:         err,
		})
		if err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/usuarios
func ListUsuariosHandler(api *upstream.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usuarios, err := auth.Client(c, api).Usuarios()
		if err != nil {
			return err
		}
		return c.JSON(usuarios)
	}
}
