package models

import (
	"strings"

	"gondolatrack/internal/quantity"

	"github.com/shopspring/decimal"
)

// Abastecimento: a replenishment batch from the distribution center to a store.
type Abastecimento struct {
	IDAbastecimento string  `json:"idAbastecimento" src:"idAbastecimento,id_abastecimento,id"`
	IDLoja          int64   `json:"idLoja"`
	Status          string  `json:"status"`
	DtBase          string  `json:"dtBase"`
	DiasVenda       int64   `json:"diasVenda"`
	CoberturaDias   int64   `json:"coberturaDias"`
	CriadoEm        string  `json:"criadoEm"`
	AtualizadoEm    *string `json:"atualizadoEm"`
}

// Confirmed reports whether the server already finalized the batch.
func (a Abastecimento) Confirmed() bool {
	switch strings.ToUpper(strings.TrimSpace(a.Status)) {
	case "CONFIRMADO", "CONFIRMED", "FINALIZADO":
		return true
	}
	return false
}

// AbastecimentoItem: a suggested line of a batch. Quantities arrive as
// decimal strings; mediaDia carries 6 fractional digits.
type AbastecimentoItem struct {
	IDAbastecimentoItem string            `json:"idAbastecimentoItem" src:"idAbastecimentoItem,id_abastecimento_item,id"`
	IDAbastecimento     string            `json:"idAbastecimento"`
	IDSubproduto        string            `json:"idsubproduto" src:"idsubproduto,idSubproduto,id_subproduto"`
	EAN                 *string           `json:"ean"`
	Descricao           *string           `json:"descricao"`
	EstoqueLoja         quantity.Quantity `json:"estoqueLoja"`
	EstoqueCd           quantity.Quantity `json:"estoqueCd"`
	TotalVendidoPeriodo quantity.Quantity `json:"totalVendidoPeriodo"`
	MediaDia            decimal.Decimal   `json:"mediaDia"`
	EstoqueAlvo         quantity.Quantity `json:"estoqueAlvo"`
	QtdSugerida         quantity.Quantity `json:"qtdSugerida"`
	QtdSelecionada      quantity.Quantity `json:"qtdSelecionada"`
}

// GeracaoAbastecimento: body of POST /abastecimentos/gerar.
type GeracaoAbastecimento struct {
	IDLoja        int64 `json:"idLoja"`
	DiasVenda     int64 `json:"diasVenda"`
	CoberturaDias int64 `json:"coberturaDias"`
}

// AbastecimentoGerado: response of POST /abastecimentos/gerar.
type AbastecimentoGerado struct {
	Abastecimento *Abastecimento      `json:"abastecimento"`
	Itens         []AbastecimentoItem `json:"itens"`
}

// ItemSelecionado: an item of PATCH /abastecimentos/{id}/itens.
type ItemSelecionado struct {
	IDAbastecimentoItem string `json:"idAbastecimentoItem"`
	QtdSelecionada      string `json:"qtdSelecionada"`
}
