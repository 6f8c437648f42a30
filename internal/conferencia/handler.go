// Package conferencia serves the stock count screens: the editable count of
// a gondola, its history and its printout.
package conferencia

import (
	"fmt"
	"strconv"

	"gondolatrack/internal/audit"
	"gondolatrack/internal/auth"
	"gondolatrack/internal/export"
	"gondolatrack/internal/httpx"
	"gondolatrack/internal/models"
	"gondolatrack/internal/quantity"
	"gondolatrack/internal/search"
	"gondolatrack/internal/session"
	"gondolatrack/internal/upstream"
	"gondolatrack/internal/workflow"
	"gondolatrack/internal/workspace"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

type Deps struct {
	API      *upstream.Client
	Sessions *workspace.Registry[*workflow.StockCount]
	Audit    *audit.Service
}

type Linha struct {
	Key          session.Key       `json:"key"`
	IDProduto    *int64            `json:"idProduto"`
	EAN          *string           `json:"ean"`
	Descricao    *string           `json:"descricao"`
	QtdAnterior  quantity.Quantity `json:"qtdAnterior"`
	QtdEditada   *string           `json:"qtdEditada"`
	QtdConferida quantity.Quantity `json:"qtdConferida"`
	Editado      bool              `json:"editado"`
}

type View struct {
	IDGondola     int64          `json:"idGondola"`
	IDConferencia *string        `json:"idConferencia"`
	Status        session.Status `json:"status"`
	Pendente      bool           `json:"pendente"`
	TotalItens    int            `json:"totalItens"`
	Linhas        []Linha        `json:"linhas"`
}

// render builds the screen state; busca only filters the lines shown.
func render(sc *workflow.StockCount, busca string) View {
	lines := sc.Lines()
	v := View{
		IDGondola:  sc.IDGondola,
		Status:     sc.Status(),
		Pendente:   sc.Dirty(),
		TotalItens: len(lines),
		Linhas:     make([]Linha, 0, len(lines)),
	}
	if id := sc.ID(); id != "" {
		v.IDConferencia = &id
	}
	for _, l := range lines {
		if !search.Match(busca, deref(l.Item.Descricao), deref(l.Item.EAN)) {
			continue
		}
		v.Linhas = append(v.Linhas, Linha{
			Key:          l.Key,
			IDProduto:    l.Item.IDProduto,
			EAN:          l.Item.EAN,
			Descricao:    l.Item.Descricao,
			QtdAnterior:  l.Baseline,
			QtdEditada:   l.Edit,
			QtdConferida: l.Value,
			Editado:      l.Edited,
		})
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sessionKey(c *fiber.Ctx, idGondola int64) string {
	return workspace.Key(c, "conferencia/"+strconv.FormatInt(idGondola, 10))
}

func (d Deps) current(c *fiber.Ctx) (*workflow.StockCount, error) {
	id, err := httpx.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	sc, ok := d.Sessions.Get(sessionKey(c, id))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Conferência não carregada, abra a gôndola novamente")
	}
	return sc, nil
}

// GET /api/gondolas/:id/conferencia?busca=
// Opens the count, or refreshes its baseline keeping the typed values.
func LoadHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		client := auth.Client(c, d.API)
		key := sessionKey(c, id)

		sc, ok := d.Sessions.Get(key)
		if ok {
			if err := sc.Reload(client); err != nil {
				return err
			}
		} else {
			sc, err = workflow.LoadStockCount(client, id)
			if err != nil {
				return err
			}
			d.Sessions.Put(key, sc)
		}
		return c.JSON(render(sc, c.Query("busca")))
	}
}

// PATCH /api/gondolas/:id/conferencia/valores
func EditHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, err := d.current(c)
		if err != nil {
			return err
		}
		edits, err := httpx.Edicoes(c)
		if err != nil {
			return err
		}
		if err := sc.Apply(edits); err != nil {
			return err
		}
		return c.JSON(render(sc, c.Query("busca")))
	}
}

// POST /api/gondolas/:id/conferencia/salvar
func SaveHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, err := d.current(c)
		if err != nil {
			return err
		}
		payload := sc.Payload()
		idConf, err := sc.Save(auth.Client(c, d.API))
		d.Audit.Track(c, audit.LogOptions{
			EntityType:  "conferencia",
			EntityID:    strconv.FormatInt(idConf, 10),
			Action:      models.AuditActionSave,
			Description: fmt.Sprintf("Conferência da gôndola %d (%d itens)", sc.IDGondola, len(payload)),
			Payload:     fiber.Map{"itens": payload},
			Err:         err,
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"ok":            true,
			"idConferencia": idConf,
			"sessao":        render(sc, ""),
		})
	}
}

// DELETE /api/gondolas/:id/conferencia
func DiscardHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		d.Sessions.Delete(sessionKey(c, id))
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/gondolas/:id/conferencia/:idConferencia?formato=xlsx
func PrintHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		idConf, err := httpx.ParamID(c, "idConferencia")
		if err != nil {
			return err
		}
		client := auth.Client(c, d.API)

		var (
			gondola models.Gondola
			conf    models.Conferencia
		)
		g := new(errgroup.Group)
		g.Go(func() error {
			var err error
			gondola, err = client.Gondola(id)
			return err
		})
		g.Go(func() error {
			var err error
			conf, err = client.Conferencia(id, idConf)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		if c.Query("formato") == "xlsx" {
			buf, err := export.Conferencia(gondola, conf)
			if err != nil {
				return fmt.Errorf("gerar planilha da conferência %d: %w", idConf, err)
			}
			c.Set(fiber.HeaderContentType, export.MIMEXlsx)
			c.Attachment(fmt.Sprintf("conferencia-%d.xlsx", idConf))
			return c.Send(buf.Bytes())
		}

		total := make([]quantity.Quantity, 0, len(conf.Itens))
		for _, it := range conf.Itens {
			total = append(total, it.QtdConferida)
		}
		return c.JSON(fiber.Map{
			"gondola":        gondola,
			"conferencia":    conf,
			"totalConferido": quantity.Sum(total...),
		})
	}
}

// GET /api/conferencias?idLoja=&idGondola=&usuario=&dtIni=&dtFim=
func HistoryHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f models.ConferenciaFiltro
		if err := c.QueryParser(&f); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Filtros inválidos")
		}
		rows, err := auth.Client(c, d.API).Conferencias(f)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}
