package models

import "gondolatrack/internal/quantity"

// Gondola: a physical shelf inside a store.
type Gondola struct {
	IDGondola     int64   `json:"idGondola" src:"idGondola,id_gondola,id"`
	IDLoja        int64   `json:"idLoja"`
	Nome          string  `json:"nome"`
	CorredorSecao *string `json:"corredorSecao" src:"corredorSecao,secao_corredor,corredor_secao"`
	Marca         *string `json:"marca"`
	TotalPosicoes int64   `json:"totalPosicoes"`
	IDResponsavel *int64  `json:"idResponsavel" src:"idResponsavel,id_vendedor_responsavel,id_responsavel"`
	CriadoEm      string  `json:"criadoEm"`
	AtualizadoEm  *string `json:"atualizadoEm"`
}

// GondolaForm: body of POST/PUT /gondolas.
type GondolaForm struct {
	IDLoja        int64   `json:"idLoja"`
	Nome          string  `json:"nome"`
	CorredorSecao *string `json:"corredorSecao"`
	Marca         *string `json:"marca"`
	TotalPosicoes int64   `json:"totalPosicoes"`
	IDResponsavel *int64  `json:"idResponsavel"`
}

// GondolaProduto: a product placed on a gondola, with its min/max thresholds.
type GondolaProduto struct {
	IDGondolaProduto int64             `json:"idGondolaProduto" src:"idGondolaProduto,id_gondola_produto,id"`
	IDGondola        int64             `json:"idGondola"`
	IDLoja           int64             `json:"idLoja"`
	IDProduto        *int64            `json:"idProduto"`
	IDSubproduto     *int64            `json:"idsubproduto" src:"idsubproduto,idSubproduto,id_subproduto"`
	EAN              string            `json:"ean" src:"ean,EAN"`
	Descricao        string            `json:"descricao" src:"descricao,DESCRICAO"`
	Minimo           quantity.Quantity `json:"minimo"`
	Maximo           quantity.Quantity `json:"maximo"`
	EstoqueAtual     quantity.Quantity `json:"estoqueAtual"`
	AtualizadoEm     string            `json:"atualizadoEm" src:"atualizadoEm,atualizado_em,criadoEm,criado_em"`
}

// ProductID is the identifier used to key the product in a stock count:
// idProduto, falling back to idsubproduto.
func (p GondolaProduto) ProductID() *int64 {
	if p.IDProduto != nil {
		return p.IDProduto
	}
	return p.IDSubproduto
}

// NovoGondolaProduto: body of POST /gondolas/{id}/produtos (add by barcode scan).
type NovoGondolaProduto struct {
	EAN    string  `json:"ean"`
	Minimo float64 `json:"minimo"`
	Maximo float64 `json:"maximo"`
}

// ReposicaoItem: a row of GET /gondolas/{id}/reposicao.
type ReposicaoItem struct {
	IDGondola        int64              `json:"idGondola"`
	IDLoja           int64              `json:"idLoja"`
	IDProduto        int64              `json:"idProduto"`
	EAN              string             `json:"ean"`
	Descricao        string             `json:"descricao"`
	IDGondolaProduto int64              `json:"idGondolaProduto"`
	Minimo           *quantity.Quantity `json:"minimo"`
	Maximo           *quantity.Quantity `json:"maximo"`
	EstoqueVenda     quantity.Quantity  `json:"estoqueVenda"`
	EstoqueDeposito  quantity.Quantity  `json:"estoqueDeposito"`
	Repor            quantity.Quantity  `json:"repor"`
}
