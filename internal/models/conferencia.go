package models

import (
	"encoding/json"

	"gondolatrack/internal/quantity"
)

// Conferencia: a stock count of one gondola.
type Conferencia struct {
	IDConferencia int64             `json:"idConferencia"`
	IDGondola     int64             `json:"idGondola"`
	CriadoEm      string            `json:"criadoEm"`
	Usuario       string            `json:"usuario"`
	Nome          *string           `json:"nome"`
	Itens         []ConferenciaItem `json:"itens"`
}

type ConferenciaItem struct {
	IDProduto    *int64            `json:"idProduto"`
	EAN          *string           `json:"ean"`
	Descricao    *string           `json:"descricao"`
	QtdConferida quantity.Quantity `json:"qtdConferida"`
}

// ConferenciaResumo: a row of the stock count history (GET /conferencias).
type ConferenciaResumo struct {
	IDConferencia  int64             `json:"idConferencia"`
	IDGondola      int64             `json:"idGondola"`
	NomeGondola    string            `json:"nomeGondola"`
	IDLoja         int64             `json:"idLoja"`
	Usuario        string            `json:"usuario"`
	NomeUsuario    *string           `json:"nomeUsuario"`
	CriadoEm       string            `json:"criadoEm"`
	QtdItens       int64             `json:"qtdItens"`
	TotalConferido quantity.Quantity `json:"totalConferido"`
}

// ConferenciaFiltro: query of GET /conferencias.
type ConferenciaFiltro struct {
	IDLoja    string `query:"idLoja"`
	IDGondola string `query:"idGondola"`
	Usuario   string `query:"usuario"`
	DtIni     string `query:"dtIni"`
	DtFim     string `query:"dtFim"`
}

// ConferenciaLinha: one editable row of a stock count session. The baseline
// quantity comes from the latest stock count of the gondola.
type ConferenciaLinha struct {
	IDProduto    *int64            `json:"idProduto"`
	EAN          *string           `json:"ean"`
	Descricao    *string           `json:"descricao"`
	QtdConferida quantity.Quantity `json:"qtdConferida"`
}

// ConferenciaItemEnvio: an item of POST /gondolas/{id}/conferencia.
// qtdConferida goes out as a JSON number.
type ConferenciaItemEnvio struct {
	IDProduto    *int64      `json:"idProduto"`
	EAN          *string     `json:"ean"`
	Descricao    *string     `json:"descricao"`
	QtdConferida json.Number `json:"qtdConferida"`
}
