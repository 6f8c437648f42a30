package upstream

import (
	"fmt"
	"net/url"
	"strconv"

	"gondolatrack/internal/models"
	"gondolatrack/internal/normalize"

	"github.com/gofiber/fiber/v2"
)

func (c *Client) Lojas() ([]models.Loja, error) {
	raw, err := c.get("/lojas", nil)
	if err != nil {
		return nil, err
	}
	return normalize.Many[models.Loja](raw), nil
}

func (c *Client) CriarLoja(form models.LojaForm) (models.Loja, error) {
	raw, err := c.send(fiber.MethodPost, "/lojas", form)
	if err != nil {
		return models.Loja{}, err
	}
	return normalize.One[models.Loja](raw), nil
}

func (c *Client) ExcluirLoja(id int64) error {
	_, err := c.send(fiber.MethodDelete, fmt.Sprintf("/lojas/%d", id), nil)
	return err
}

// Gondolas lists the gondolas of a store; idLoja 0 lists all.
func (c *Client) Gondolas(idLoja int64) ([]models.Gondola, error) {
	var q url.Values
	if idLoja > 0 {
		q = url.Values{"idLoja": {strconv.FormatInt(idLoja, 10)}}
	}
	raw, err := c.get("/gondolas", q)
	if err != nil {
		return nil, err
	}
	return normalize.Many[models.Gondola](raw), nil
}

func (c *Client) Gondola(id int64) (models.Gondola, error) {
	raw, err := c.get(fmt.Sprintf("/gondolas/%d", id), nil)
	if err != nil {
		return models.Gondola{}, err
	}
	return normalize.One[models.Gondola](raw), nil
}

func (c *Client) CriarGondola(form models.GondolaForm) (models.Gondola, error) {
	raw, err := c.send(fiber.MethodPost, "/gondolas", form)
	if err != nil {
		return models.Gondola{}, err
	}
	return normalize.One[models.Gondola](raw), nil
}

func (c *Client) AtualizarGondola(id int64, form models.GondolaForm) (models.Gondola, error) {
	raw, err := c.send(fiber.MethodPut, fmt.Sprintf("/gondolas/%d", id), form)
	if err != nil {
		return models.Gondola{}, err
	}
	return normalize.One[models.Gondola](raw), nil
}

func (c *Client) ExcluirGondola(id int64) error {
	_, err := c.send(fiber.MethodDelete, fmt.Sprintf("/gondolas/%d", id), nil)
	return err
}

func (c *Client) ProdutosGondola(idGondola int64) ([]models.GondolaProduto, error) {
	raw, err := c.get(fmt.Sprintf("/gondolas/%d/produtos", idGondola), nil)
	if err != nil {
		return nil, err
	}
	return normalize.Many[models.GondolaProduto](raw), nil
}

func (c *Client) AdicionarProduto(idGondola int64, p models.NovoGondolaProduto) (models.GondolaProduto, error) {
	raw, err := c.send(fiber.MethodPost, fmt.Sprintf("/gondolas/%d/produtos", idGondola), p)
	if err != nil {
		return models.GondolaProduto{}, err
	}
	return normalize.One[models.GondolaProduto](raw), nil
}

func (c *Client) RemoverProduto(idGondola, idGondolaProduto int64) error {
	_, err := c.send(fiber.MethodDelete, fmt.Sprintf("/gondolas/%d/produtos/%d", idGondola, idGondolaProduto), nil)
	return err
}

// RefreshEstoque asks the API to pull current stock from the ERP.
func (c *Client) RefreshEstoque(idGondola int64) error {
	_, err := c.send(fiber.MethodPost, fmt.Sprintf("/gondolas/%d/produtos/refresh-estoque", idGondola), nil)
	return err
}

func (c *Client) Reposicao(idGondola int64) ([]models.ReposicaoItem, error) {
	raw, err := c.get(fmt.Sprintf("/gondolas/%d/reposicao", idGondola), nil)
	if err != nil {
		return nil, err
	}
	return normalize.Many[models.ReposicaoItem](raw), nil
}

func (c *Client) Usuarios() ([]models.Usuario, error) {
	raw, err := c.get("/usuarios", nil)
	if err != nil {
		return nil, err
	}
	return normalize.Many[models.Usuario](raw), nil
}
