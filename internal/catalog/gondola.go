package catalog

import (
	"strconv"
	"strings"

	"gondolatrack/internal/audit"
	"gondolatrack/internal/auth"
	"gondolatrack/internal/httpx"
	"gondolatrack/internal/models"
	"gondolatrack/internal/search"
	"gondolatrack/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

// GET /api/gondolas?idLoja=1&busca=
func ListGondolasHandler(api *upstream.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idLoja, err := httpx.QueryID(c, "idLoja")
		if err != nil {
			return err
		}
		gondolas, err := auth.Client(c, api).Gondolas(idLoja)
		if err != nil {
			return err
		}
		gondolas = search.Filter(gondolas, c.Query("busca"), func(g models.Gondola) []string {
			fields := []string{g.Nome}
			if g.CorredorSecao != nil {
				fields = append(fields, *g.CorredorSecao)
			}
			if g.Marca != nil {
				fields = append(fields, *g.Marca)
			}
			return fields
		})
		return c.JSON(gondolas)
	}
}

// GET /api/gondolas/:id
func GetGondolaHandler(api *upstream.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		g, err := auth.Client(c, api).Gondola(id)
		if err != nil {
			return err
		}
		return c.JSON(g)
	}
}

func parseGondolaForm(c *fiber.Ctx) (models.GondolaForm, error) {
	var body models.GondolaForm
	if err := c.BodyParser(&body); err != nil {
		return body, fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
	}
	body.Nome = strings.TrimSpace(body.Nome)
	if body.IDLoja <= 0 {
		return body, fiber.NewError(fiber.StatusBadRequest, "Loja é obrigatória")
	}
	if body.Nome == "" {
		return body, fiber.NewError(fiber.StatusBadRequest, "Nome da gôndola é obrigatório")
	}
	if body.TotalPosicoes < 0 {
		return body, fiber.NewError(fiber.StatusBadRequest, "Total de posições inválido")
	}
	return body, nil
}

// POST /api/gondolas
func CreateGondolaHandler(api *upstream.Client, au *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := parseGondolaForm(c)
		if err != nil {
			return err
		}
		g, err := auth.Client(c, api).CriarGondola(body)
		au.Track(c, audit.LogOptions{
			EntityType:  "gondola",
			EntityID:    strconv.FormatInt(g.IDGondola, 10),
			Action:      models.AuditActionCreate,
			Description: "Gôndola criada: " + body.Nome,
			Payload:     body,
			Err:         err,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	}
}

// PUT /api/gondolas/:id
func UpdateGondolaHandler(api *upstream.Client, au *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		body, err := parseGondolaForm(c)
		if err != nil {
			return err
		}
		g, err := auth.Client(c, api).AtualizarGondola(id, body)
		au.Track(c, audit.LogOptions{
			EntityType:  "gondola",
			EntityID:    strconv.FormatInt(id, 10),
			Action:      models.AuditActionUpdate,
			Description: "Gôndola atualizada: " + body.Nome,
			Payload:     body,
			Err:         err,
		})
		if err != nil {
			return err
		}
		return c.JSON(g)
	}
}

// DELETE /api/gondolas/:id
func DeleteGondolaHandler(api *upstream.Client, au *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		err = auth.Client(c, api).ExcluirGondola(id)
		au.Track(c, audit.LogOptions{
			EntityType:  "gondola",
			EntityID:    strconv.FormatInt(id, 10),
			Action:      models.AuditActionDelete,
			Description: "Gôndola excluída",
			Err:         err,
		})
		if err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/gondolas/:id/reposicao
func ReposicaoHandler(api *upstream.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		itens, err := auth.Client(c, api).Reposicao(id)
		if err != nil {
			return err
		}
		return c.JSON(itens)
	}
}
