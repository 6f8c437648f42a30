package models

type Usuario struct {
	IDUsuario   int64  `json:"idUsuario"`
	NomeUsuario string `json:"nomeUsuario" src:"nomeUsuario,nome_usuario,nome"`
}

// AuthUser: the logged user as reported by GET /auth/me ({"user": {...}}).
type AuthUser struct {
	Username string   `json:"username" src:"username,usuario,sub"`
	Nome     *string  `json:"nome"`
	Groups   []string `json:"groups"`
}
