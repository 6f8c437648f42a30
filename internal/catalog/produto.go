package catalog

import (
	"encoding/json"
	"strconv"
	"strings"

	"gondolatrack/internal/audit"
	"gondolatrack/internal/auth"
	"gondolatrack/internal/httpx"
	"gondolatrack/internal/models"
	"gondolatrack/internal/quantity"
	"gondolatrack/internal/search"
	"gondolatrack/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

func filterProdutos(produtos []models.GondolaProduto, busca string) []models.GondolaProduto {
	return search.Filter(produtos, busca, func(p models.GondolaProduto) []string {
		return []string{p.Descricao, p.EAN}
	})
}

// GET /api/gondolas/:id/produtos?busca=
func ListProdutosHandler(api *upstream.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		produtos, err := auth.Client(c, api).ProdutosGondola(id)
		if err != nil {
			return err
		}
		return c.JSON(filterProdutos(produtos, c.Query("busca")))
	}
}

// novoProdutoRequest accepts min/max as numbers or as typed text ("10,5").
type novoProdutoRequest struct {
	EAN    string          `json:"ean"`
	Minimo json.RawMessage `json:"minimo"`
	Maximo json.RawMessage `json:"maximo"`
}

func numeric(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// validateNovoProduto applies the scan form rules: EAN required, min and max
// numeric, max >= min.
func validateNovoProduto(body novoProdutoRequest) (models.NovoGondolaProduto, error) {
	ean := strings.TrimSpace(body.EAN)
	if ean == "" {
		return models.NovoGondolaProduto{}, fiber.NewError(fiber.StatusBadRequest, "EAN é obrigatório")
	}
	minimo, ok := numeric(body.Minimo)
	if !ok || minimo < 0 {
		return models.NovoGondolaProduto{}, fiber.NewError(fiber.StatusBadRequest, "Mínimo inválido")
	}
	maximo, ok := numeric(body.Maximo)
	if !ok || maximo < 0 {
		return models.NovoGondolaProduto{}, fiber.NewError(fiber.StatusBadRequest, "Máximo inválido")
	}
	if maximo < minimo {
		return models.NovoGondolaProduto{}, fiber.NewError(fiber.StatusBadRequest, "Máximo deve ser maior ou igual ao mínimo")
	}
	return models.NovoGondolaProduto{
		EAN:    ean,
		Minimo: quantity.From(minimo).InexactFloat64(),
		Maximo: quantity.From(maximo).InexactFloat64(),
	}, nil
}

// POST /api/gondolas/:id/produtos
func AddProdutoHandler(api *upstream.Client, au *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body novoProdutoRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		novo, err := validateNovoProduto(body)
		if err != nil {
			return err
		}

		p, err := auth.Client(c, api).AdicionarProduto(id, novo)
		au.Track(c, audit.LogOptions{
			EntityType:  "gondola_produto",
			EntityID:    strconv.FormatInt(id, 10),
			Action:      models.AuditActionCreate,
			Description: "Produto adicionado por EAN " + novo.EAN,
			Payload:     novo,
			Err:         err,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// DELETE /api/gondolas/:id/produtos/:idGondolaProduto
func RemoveProdutoHandler(api *upstream.Client, au *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		idGP, err := httpx.ParamID(c, "idGondolaProduto")
		if err != nil {
			return err
		}
		err = auth.Client(c, api).RemoverProduto(id, idGP)
		au.Track(c, audit.LogOptions{
			EntityType:  "gondola_produto",
			EntityID:    strconv.FormatInt(idGP, 10),
			Action:      models.AuditActionDelete,
			Description: "Produto removido da gôndola " + strconv.FormatInt(id, 10),
			Err:         err,
		})
		if err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/gondolas/:id/produtos/refresh-estoque
// Pulls fresh stock and answers with the re-listed products.
func RefreshEstoqueHandler(api *upstream.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		client := auth.Client(c, api)
		if err := client.RefreshEstoque(id); err != nil {
			return err
		}
		produtos, err := client.ProdutosGondola(id)
		if err != nil {
			return err
		}
		return c.JSON(filterProdutos(produtos, c.Query("busca")))
	}
}
