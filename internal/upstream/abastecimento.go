package upstream

import (
	"net/url"
	"strconv"

	"gondolatrack/internal/models"
	"gondolatrack/internal/normalize"

	"github.com/gofiber/fiber/v2"
)

func abastecimentoPath(id string, rest string) string {
	return "/abastecimentos/" + url.PathEscape(id) + rest
}

func (c *Client) Abastecimentos(idLoja int64) ([]models.Abastecimento, error) {
	q := url.Values{"idLoja": {strconv.FormatInt(idLoja, 10)}}
	raw, err := c.get("/abastecimentos", q)
	if err != nil {
		return nil, err
	}
	return normalize.Many[models.Abastecimento](raw), nil
}

func (c *Client) ItensAbastecimento(id string) ([]models.AbastecimentoItem, error) {
	raw, err := c.get(abastecimentoPath(id, "/itens"), nil)
	if err != nil {
		return nil, err
	}
	return normalize.Many[models.AbastecimentoItem](raw), nil
}

func (c *Client) SalvarItensAbastecimento(id string, itens []models.ItemSelecionado) error {
	_, err := c.send(fiber.MethodPatch, abastecimentoPath(id, "/itens"), map[string]any{"itens": itens})
	return err
}

func (c *Client) ConfirmarAbastecimento(id string) error {
	_, err := c.send(fiber.MethodPost, abastecimentoPath(id, "/confirmar"), nil)
	return err
}

// GerarAbastecimento accepts {abastecimento, itens} as well as a bare
// header carrying its own itens.
func (c *Client) GerarAbastecimento(req models.GeracaoAbastecimento) (models.AbastecimentoGerado, error) {
	raw, err := c.send(fiber.MethodPost, "/abastecimentos/gerar", req)
	if err != nil {
		return models.AbastecimentoGerado{}, err
	}
	out := normalize.One[models.AbastecimentoGerado](raw)
	if out.Abastecimento == nil {
		if id := normalize.String(raw, "idAbastecimento", "id_abastecimento", "id"); id != "" {
			ab := normalize.One[models.Abastecimento](raw)
			out.Abastecimento = &ab
		}
	}
	return out, nil
}

// PrintURL is the API page that renders a batch for printing.
func (c *Client) PrintURL(id string) string {
	return c.URL(abastecimentoPath(id, "/print"))
}
