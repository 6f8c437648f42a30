package models

// Loja: a store as returned by GET /lojas.
type Loja struct {
	IDLoja       int64   `json:"idLoja" src:"idLoja,id_loja,id"`
	Nome         string  `json:"nome"`
	CodigoErp    *string `json:"codigoErp"`
	IDEmpresa    *int64  `json:"idEmpresa"`
	Cidade       *string `json:"cidade"`
	Endereco     *string `json:"endereco"`
	Telefone     *string `json:"telefone"`
	CriadoEm     string  `json:"criadoEm"`
	AtualizadoEm *string `json:"atualizadoEm"`
}

// LojaForm: body of POST /lojas.
type LojaForm struct {
	Nome      string `json:"nome"`
	CodigoErp string `json:"codigoErp"`
	IDEmpresa *int64 `json:"idEmpresa"`
}
