package workflow

import (
	"fmt"
	"strconv"

	"gondolatrack/internal/models"
	"gondolatrack/internal/quantity"
	"gondolatrack/internal/session"

	"golang.org/x/sync/errgroup"
)

// StockCountGateway is the part of the API a stock count talks to.
// UltimaConferencia returns nil when the gondola was never counted.
type StockCountGateway interface {
	ProdutosGondola(idGondola int64) ([]models.GondolaProduto, error)
	UltimaConferencia(idGondola int64) (*models.Conferencia, error)
	SalvarConferencia(idGondola int64, itens []models.ConferenciaItemEnvio) (int64, error)
}

// StockCount is the count of one gondola: draft -> saved. Every save posts
// a new conferência.
type StockCount struct {
	*session.Session[models.ConferenciaLinha]
	IDGondola int64
}

func linhaKey(l models.ConferenciaLinha) session.Key {
	return session.KeyFor(l.IDProduto, deref(l.EAN))
}

func NewStockCount(idGondola int64, linhas []models.ConferenciaLinha) *StockCount {
	s := session.New("", session.Draft, linhaKey,
		func(l models.ConferenciaLinha) quantity.Quantity { return l.QtdConferida })
	s.LoadBaseline(linhas)
	return &StockCount{Session: s, IDGondola: idGondola}
}

// LoadStockCount opens a count on the gondola's current products.
func LoadStockCount(gw StockCountGateway, idGondola int64) (*StockCount, error) {
	c := NewStockCount(idGondola, nil)
	if err := c.Reload(gw); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload fetches the products and the latest count together and merges
// them as the new baseline. Edits on products still present are kept.
func (c *StockCount) Reload(gw StockCountGateway) error {
	var (
		produtos []models.GondolaProduto
		ultima   *models.Conferencia
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		produtos, err = gw.ProdutosGondola(c.IDGondola)
		return err
	})
	g.Go(func() error {
		var err error
		ultima, err = gw.UltimaConferencia(c.IDGondola)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("carregar conferência da gôndola %d: %w", c.IDGondola, err)
	}
	c.LoadBaseline(BuildLinhas(produtos, ultima))
	return nil
}

// BuildLinhas lays the gondola products out in order, each with the quantity
// of the latest count, matched by product key and then by EAN.
func BuildLinhas(produtos []models.GondolaProduto, ultima *models.Conferencia) []models.ConferenciaLinha {
	byKey := map[session.Key]quantity.Quantity{}
	byEAN := map[string]quantity.Quantity{}
	if ultima != nil {
		for _, it := range ultima.Itens {
			ean := deref(it.EAN)
			if k := session.KeyFor(it.IDProduto, ean); it.IDProduto != nil || ean != "" {
				byKey[k] = it.QtdConferida
			}
			if ean != "" {
				byEAN[ean] = it.QtdConferida
			}
		}
	}

	out := make([]models.ConferenciaLinha, 0, len(produtos))
	for _, p := range produtos {
		l := models.ConferenciaLinha{IDProduto: p.ProductID()}
		if p.EAN != "" {
			ean := p.EAN
			l.EAN = &ean
		}
		if p.Descricao != "" {
			d := p.Descricao
			l.Descricao = &d
		}
		if q, ok := byKey[linhaKey(l)]; ok {
			l.QtdConferida = q
		} else if q, ok := byEAN[p.EAN]; ok && p.EAN != "" {
			l.QtdConferida = q
		}
		out = append(out, l)
	}
	return out
}

// Payload is the POST body items for the current state.
func (c *StockCount) Payload() []models.ConferenciaItemEnvio {
	entries := c.ToSubmission()
	return payload(entries)
}

func payload(entries []session.Entry[models.ConferenciaLinha]) []models.ConferenciaItemEnvio {
	out := make([]models.ConferenciaItemEnvio, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.ConferenciaItemEnvio{
			IDProduto:    e.Item.IDProduto,
			EAN:          e.Item.EAN,
			Descricao:    e.Item.Descricao,
			QtdConferida: e.Quantity.Number(),
		})
	}
	return out
}

// Save posts the count and returns the new idConferencia.
func (c *StockCount) Save(gw StockCountGateway) (int64, error) {
	done, err := c.Begin()
	if err != nil {
		return 0, err
	}
	defer done()

	entries, rev := c.Snapshot()
	id, err := gw.SalvarConferencia(c.IDGondola, payload(entries))
	if err != nil {
		return 0, fmt.Errorf("salvar conferência da gôndola %d: %w", c.IDGondola, err)
	}
	c.MarkSaved(strconv.FormatInt(id, 10), rev)
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
