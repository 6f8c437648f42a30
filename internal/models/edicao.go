package models

// Edicao: one value typed by the user. A null valor reverts the line.
type Edicao struct {
	Key   string  `json:"key"`
	Valor *string `json:"valor"`
}

type EdicoesRequest struct {
	Valores []Edicao `json:"valores"`
}
