package workflow

import (
	"errors"
	"fmt"
	"sync"

	"gondolatrack/internal/models"
	"gondolatrack/internal/quantity"
	"gondolatrack/internal/session"

	"golang.org/x/sync/errgroup"
)

var (
	ErrMissingSessionID = errors.New("sessão sem identificador")
	ErrNotSaved         = errors.New("salve o abastecimento antes de confirmar")
)

// SaveError is returned by Commit when the save step failed and no confirm
// was attempted.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string { return e.Err.Error() }

func (e *SaveError) Unwrap() error { return e.Err }

// ReplenishmentGateway is the part of the API a replenishment batch talks to.
type ReplenishmentGateway interface {
	Abastecimentos(idLoja int64) ([]models.Abastecimento, error)
	ItensAbastecimento(id string) ([]models.AbastecimentoItem, error)
	SalvarItensAbastecimento(id string, itens []models.ItemSelecionado) error
	ConfirmarAbastecimento(id string) error
}

type Generator interface {
	GerarAbastecimento(req models.GeracaoAbastecimento) (models.AbastecimentoGerado, error)
}

// Replenishment is a batch being reviewed: draft -> saved -> confirmed.
type Replenishment struct {
	*session.Session[models.AbastecimentoItem]

	mu     sync.Mutex
	header models.Abastecimento
}

func NewReplenishment(ab models.Abastecimento, itens []models.AbastecimentoItem) *Replenishment {
	status := session.Draft
	if ab.Confirmed() {
		status = session.Confirmed
	}
	s := session.New(ab.IDAbastecimento, status,
		func(it models.AbastecimentoItem) session.Key { return session.Key(it.IDAbastecimentoItem) },
		func(it models.AbastecimentoItem) quantity.Quantity { return it.QtdSelecionada })
	s.LoadBaseline(itens)
	return &Replenishment{Session: s, header: ab}
}

// Generate asks the API for a new batch and opens a draft session on it.
func Generate(gw Generator, req models.GeracaoAbastecimento) (*Replenishment, error) {
	res, err := gw.GerarAbastecimento(req)
	if err != nil {
		return nil, fmt.Errorf("gerar abastecimento: %w", err)
	}
	if res.Abastecimento == nil || res.Abastecimento.IDAbastecimento == "" {
		return nil, ErrMissingSessionID
	}
	ab := *res.Abastecimento
	if ab.IDLoja == 0 {
		ab.IDLoja = req.IDLoja
	}
	return NewReplenishment(ab, res.Itens), nil
}

// LoadReplenishment fetches the batch items and the store's batch list
// together and opens a session on them.
func LoadReplenishment(gw ReplenishmentGateway, idLoja int64, id string) (*Replenishment, error) {
	if id == "" {
		return nil, ErrMissingSessionID
	}
	var (
		lista []models.Abastecimento
		itens []models.AbastecimentoItem
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		itens, err = gw.ItensAbastecimento(id)
		return err
	})
	if idLoja > 0 {
		g.Go(func() error {
			var err error
			lista, err = gw.Abastecimentos(idLoja)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("carregar abastecimento %s: %w", id, err)
	}

	header := models.Abastecimento{IDAbastecimento: id, IDLoja: idLoja}
	for _, ab := range lista {
		if ab.IDAbastecimento == id {
			header = ab
			break
		}
	}
	return NewReplenishment(header, itens), nil
}

func (r *Replenishment) Header() models.Abastecimento {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header
}

// Selections is the PATCH body for the current state.
func (r *Replenishment) Selections() []models.ItemSelecionado {
	sel, _ := r.selections()
	return sel
}

func (r *Replenishment) selections() ([]models.ItemSelecionado, uint64) {
	entries, rev := r.Snapshot()
	out := make([]models.ItemSelecionado, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.ItemSelecionado{
			IDAbastecimentoItem: e.Item.IDAbastecimentoItem,
			QtdSelecionada:      e.Quantity.String(),
		})
	}
	return out, rev
}

// Save sends the selected quantities.
func (r *Replenishment) Save(gw ReplenishmentGateway) error {
	done, err := r.Begin()
	if err != nil {
		return err
	}
	defer done()
	return r.save(gw)
}

// Confirm finalizes a saved batch.
func (r *Replenishment) Confirm(gw ReplenishmentGateway) error {
	done, err := r.Begin()
	if err != nil {
		return err
	}
	defer done()
	return r.confirm(gw)
}

// Commit saves then confirms. A batch already saved with no later edits
// goes straight to confirm, so a retry after a failed confirm does not
// save again.
func (r *Replenishment) Commit(gw ReplenishmentGateway) error {
	done, err := r.Begin()
	if err != nil {
		return err
	}
	defer done()

	if r.Status() != session.Saved || r.Dirty() {
		if err := r.save(gw); err != nil {
			return &SaveError{Err: err}
		}
	}
	return r.confirm(gw)
}

// Refresh replaces the items with the server's view and drops every edit.
func (r *Replenishment) Refresh(gw ReplenishmentGateway) error {
	id := r.ID()
	if id == "" {
		return ErrMissingSessionID
	}
	itens, err := gw.ItensAbastecimento(id)
	if err != nil {
		return fmt.Errorf("recarregar abastecimento %s: %w", id, err)
	}
	r.Reset(itens)
	return nil
}

// Reload refreshes the items keeping the edits of lines still present.
func (r *Replenishment) Reload(gw ReplenishmentGateway) error {
	id := r.ID()
	if id == "" {
		return ErrMissingSessionID
	}
	itens, err := gw.ItensAbastecimento(id)
	if err != nil {
		return fmt.Errorf("recarregar abastecimento %s: %w", id, err)
	}
	r.LoadBaseline(itens)
	return nil
}

func (r *Replenishment) save(gw ReplenishmentGateway) error {
	id := r.ID()
	if id == "" {
		return ErrMissingSessionID
	}
	if r.Status() == session.Confirmed {
		return session.ErrFinalized
	}
	sel, rev := r.selections()
	if err := gw.SalvarItensAbastecimento(id, sel); err != nil {
		return fmt.Errorf("salvar abastecimento %s: %w", id, err)
	}
	r.MarkSaved(id, rev)
	return nil
}

func (r *Replenishment) confirm(gw ReplenishmentGateway) error {
	id := r.ID()
	if id == "" {
		return ErrMissingSessionID
	}
	switch {
	case r.Status() == session.Confirmed:
		return session.ErrFinalized
	case r.Status() != session.Saved, r.Dirty():
		return ErrNotSaved
	}
	if err := gw.ConfirmarAbastecimento(id); err != nil {
		return fmt.Errorf("confirmar abastecimento %s: %w", id, err)
	}
	r.MarkConfirmed()
	r.mu.Lock()
	r.header.Status = "CONFIRMADO"
	r.mu.Unlock()
	return nil
}

// Resumo totals the batch, edits included.
type Resumo struct {
	Itens            int               `json:"itens"`
	TotalSugerido    quantity.Quantity `json:"totalSugerido"`
	TotalSelecionado quantity.Quantity `json:"totalSelecionado"`
	Editados         int               `json:"editados"`
}

func (r *Replenishment) Resumo() Resumo {
	lines := r.Lines()
	out := Resumo{Itens: len(lines)}
	sugerido := make([]quantity.Quantity, 0, len(lines))
	selecionado := make([]quantity.Quantity, 0, len(lines))
	for _, l := range lines {
		sugerido = append(sugerido, l.Item.QtdSugerida)
		selecionado = append(selecionado, l.Value)
		if l.Edited {
			out.Editados++
		}
	}
	out.TotalSugerido = quantity.Sum(sugerido...)
	out.TotalSelecionado = quantity.Sum(selecionado...)
	return out
}
