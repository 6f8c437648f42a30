package upstream

import (
	"errors"
	"fmt"
	"net/url"

	"gondolatrack/internal/models"
	"gondolatrack/internal/normalize"

	"github.com/gofiber/fiber/v2"
)

// UltimaConferencia returns the latest count of a gondola, or nil when it
// was never counted (404 or an empty body).
func (c *Client) UltimaConferencia(idGondola int64) (*models.Conferencia, error) {
	raw, err := c.get(fmt.Sprintf("/gondolas/%d/conferencia/ultima", idGondola), nil)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, ok := normalize.Unwrap(raw).(map[string]any); !ok {
		return nil, nil
	}
	conf := normalize.One[models.Conferencia](raw)
	return &conf, nil
}

type conferenciaCriada struct {
	IDConferencia int64 `src:"idConferencia,id_conferencia,id"`
}

// SalvarConferencia posts a new count and returns its idConferencia.
func (c *Client) SalvarConferencia(idGondola int64, itens []models.ConferenciaItemEnvio) (int64, error) {
	body := map[string]any{"itens": itens}
	raw, err := c.send(fiber.MethodPost, fmt.Sprintf("/gondolas/%d/conferencia", idGondola), body)
	if err != nil {
		return 0, err
	}
	out := normalize.One[conferenciaCriada](raw)
	if out.IDConferencia == 0 {
		return 0, errors.New("conferência salva sem idConferencia na resposta")
	}
	return out.IDConferencia, nil
}

func (c *Client) Conferencia(idGondola, idConferencia int64) (models.Conferencia, error) {
	raw, err := c.get(fmt.Sprintf("/gondolas/%d/conferencia/%d", idGondola, idConferencia), nil)
	if err != nil {
		return models.Conferencia{}, err
	}
	return normalize.One[models.Conferencia](raw), nil
}

// Conferencias lists the count history. Empty filters are omitted.
func (c *Client) Conferencias(f models.ConferenciaFiltro) ([]models.ConferenciaResumo, error) {
	q := url.Values{}
	for k, v := range map[string]string{
		"idLoja":    f.IDLoja,
		"idGondola": f.IDGondola,
		"usuario":   f.Usuario,
		"dtIni":     f.DtIni,
		"dtFim":     f.DtFim,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	raw, err := c.get("/conferencias", q)
	if err != nil {
		return nil, err
	}
	return normalize.Many[models.ConferenciaResumo](raw), nil
}
