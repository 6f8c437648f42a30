// Package abastecimento serves the replenishment screens: generating a
// batch, reviewing its selected quantities and the save/confirm commit.
package abastecimento

import (
	"errors"
	"fmt"
	"log"

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
	"github.com/gofiber/fiber/v2/utils"
)

type Deps struct {
	API      *upstream.Client
	Sessions *workspace.Registry[*workflow.Replenishment]
	Audit    *audit.Service
}

type Item struct {
	models.AbastecimentoItem
	Key        session.Key       `json:"key"`
	QtdSalva   quantity.Quantity `json:"qtdSalva"`
	QtdEditada *string           `json:"qtdEditada"`
	Editado    bool              `json:"editado"`
}

type View struct {
	Abastecimento models.Abastecimento `json:"abastecimento"`
	Status        session.Status       `json:"status"`
	Pendente      bool                 `json:"pendente"`
	Itens         []Item               `json:"itens"`
	Resumo        workflow.Resumo      `json:"resumo"`
}

// render shows qtdSelecionada as the value that would be submitted now.
func render(r *workflow.Replenishment, busca string) View {
	lines := r.Lines()
	v := View{
		Abastecimento: r.Header(),
		Status:        r.Status(),
		Pendente:      r.Dirty(),
		Itens:         make([]Item, 0, len(lines)),
		Resumo:        r.Resumo(),
	}
	for _, l := range lines {
		it := l.Item
		if !search.Match(busca, deref(it.Descricao), deref(it.EAN), it.IDSubproduto) {
			continue
		}
		it.QtdSelecionada = l.Value
		v.Itens = append(v.Itens, Item{
			AbastecimentoItem: it,
			Key:               l.Key,
			QtdSalva:          l.Baseline,
			QtdEditada:        l.Edit,
			Editado:           l.Edited,
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

// batchID copies the route id out of the request buffer, which Fiber reuses
// once the handler returns.
func batchID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

func sessionKey(c *fiber.Ctx, id string) string {
	return workspace.Key(c, "abastecimento/"+id)
}

func (d Deps) current(c *fiber.Ctx) (*workflow.Replenishment, error) {
	r, ok := d.Sessions.Get(sessionKey(c, c.Params("id")))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Abastecimento não carregado, selecione-o novamente")
	}
	return r, nil
}

func (d Deps) track(c *fiber.Ctx, r *workflow.Replenishment, action models.AuditAction, desc string, payload any, err error) {
	d.Audit.Track(c, audit.LogOptions{
		EntityType:  "abastecimento",
		EntityID:    r.ID(),
		Action:      action,
		Description: desc,
		Payload:     payload,
		Err:         err,
	})
}

// GET /api/abastecimentos?idLoja=1
func ListHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idLoja, err := httpx.QueryID(c, "idLoja")
		if err != nil {
			return err
		}
		if idLoja == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Informe a loja")
		}
		lista, err := auth.Client(c, d.API).Abastecimentos(idLoja)
		if err != nil {
			return err
		}
		return c.JSON(lista)
	}
}

// POST /api/abastecimentos/gerar
func GenerateHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.GeracaoAbastecimento
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if req.IDLoja <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Informe a loja")
		}
		if req.DiasVenda <= 0 || req.CoberturaDias <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Dias de venda e cobertura devem ser maiores que zero")
		}

		r, err := workflow.Generate(auth.Client(c, d.API), req)
		if err != nil {
			d.Audit.Track(c, audit.LogOptions{
				EntityType: "abastecimento",
				Action:     models.AuditActionGenerate,
				Payload:    req,
				Err:        err,
			})
			return err
		}
		d.Sessions.Put(sessionKey(c, r.ID()), r)
		d.track(c, r, models.AuditActionGenerate,
			fmt.Sprintf("Abastecimento gerado para a loja %d", req.IDLoja), req, nil)
		return c.Status(fiber.StatusCreated).JSON(render(r, ""))
	}
}

// GET /api/abastecimentos/:id/sessao?idLoja=&recarregar=1&busca=
func SessionHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := batchID(c)
		client := auth.Client(c, d.API)
		key := sessionKey(c, id)

		r, ok := d.Sessions.Get(key)
		switch {
		case ok && c.QueryBool("recarregar"):
			if err := r.Reload(client); err != nil {
				return err
			}
		case !ok:
			idLoja, err := httpx.QueryID(c, "idLoja")
			if err != nil {
				return err
			}
			r, err = workflow.LoadReplenishment(client, idLoja, id)
			if err != nil {
				return err
			}
			d.Sessions.Put(key, r)
		}
		return c.JSON(render(r, c.Query("busca")))
	}
}

// PATCH /api/abastecimentos/:id/sessao/itens
func EditHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := d.current(c)
		if err != nil {
			return err
		}
		edits, err := httpx.Edicoes(c)
		if err != nil {
			return err
		}
		if err := r.Apply(edits); err != nil {
			return err
		}
		return c.JSON(render(r, c.Query("busca")))
	}
}

// POST /api/abastecimentos/:id/sessao/salvar
func SaveHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := d.current(c)
		if err != nil {
			return err
		}
		sel := r.Selections()
		err = r.Save(auth.Client(c, d.API))
		d.track(c, r, models.AuditActionSave, "Quantidades selecionadas salvas", fiber.Map{"itens": sel}, err)
		if err != nil {
			return err
		}
		return c.JSON(render(r, ""))
	}
}

// POST /api/abastecimentos/:id/sessao/confirmar
func ConfirmHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := d.current(c)
		if err != nil {
			return err
		}
		client := auth.Client(c, d.API)
		err = r.Confirm(client)
		d.track(c, r, models.AuditActionConfirm, "Abastecimento confirmado", nil, err)
		if err != nil {
			return err
		}
		refresh(r, client)
		return c.JSON(render(r, ""))
	}
}

// POST /api/abastecimentos/:id/sessao/finalizar
// Saves (unless already saved and clean) then confirms.
func CommitHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := d.current(c)
		if err != nil {
			return err
		}
		client := auth.Client(c, d.API)
		sel := r.Selections()
		err = r.Commit(client)
		action, desc := commitAudit(err)
		d.track(c, r, action, desc, fiber.Map{"itens": sel}, err)
		if err != nil {
			return err
		}
		refresh(r, client)
		return c.JSON(render(r, ""))
	}
}

// commitAudit names the step a finalize stopped at.
func commitAudit(err error) (models.AuditAction, string) {
	var se *workflow.SaveError
	if errors.As(err, &se) {
		return models.AuditActionSave, "Falha ao salvar antes de confirmar"
	}
	return models.AuditActionConfirm, "Abastecimento salvo e confirmado"
}

// refresh loads the server's view after a confirm. The confirm already
// succeeded, so a failure here is only logged.
func refresh(r *workflow.Replenishment, client *upstream.Client) {
	if err := r.Refresh(client); err != nil {
		log.Printf("[WARN] abastecimento %s confirmado, mas a recarga falhou: %v", r.ID(), err)
	}
}

// DELETE /api/abastecimentos/:id/sessao
func DiscardHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d.Sessions.Delete(sessionKey(c, c.Params("id")))
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/abastecimentos/:id/exportar?idLoja=
// Exports the open session (typed values included) or, without one, the
// server's view.
func ExportHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := batchID(c)
		r, ok := d.Sessions.Get(sessionKey(c, id))
		if !ok {
			idLoja, err := httpx.QueryID(c, "idLoja")
			if err != nil {
				return err
			}
			r, err = workflow.LoadReplenishment(auth.Client(c, d.API), idLoja, id)
			if err != nil {
				return err
			}
		}

		v := render(r, "")
		itens := make([]models.AbastecimentoItem, 0, len(v.Itens))
		for _, it := range v.Itens {
			itens = append(itens, it.AbastecimentoItem)
		}
		buf, err := export.Abastecimento(v.Abastecimento, itens)
		if err != nil {
			return fmt.Errorf("gerar planilha do abastecimento %s: %w", id, err)
		}
		c.Set(fiber.HeaderContentType, export.MIMEXlsx)
		c.Attachment("abastecimento-" + id + ".xlsx")
		return c.Send(buf.Bytes())
	}
}

// GET /api/abastecimentos/:id/imprimir
func PrintHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Redirect(d.API.PrintURL(c.Params("id")), fiber.StatusFound)
	}
}
