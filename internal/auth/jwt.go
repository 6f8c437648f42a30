package auth

import (
	"errors"
	"fmt"

	"gondolatrack/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims of the gt_token issued by the API.
type Claims struct {
	Username string   `json:"username"`
	Nome     *string  `json:"nome,omitempty"`
	Groups   []string `json:"groups,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) User() models.AuthUser {
	name := c.Username
	if name == "" {
		name = c.Subject
	}
	return models.AuthUser{Username: name, Nome: c.Nome, Groups: c.Groups}
}

// ParseToken verifies an HMAC-signed token and its expiry.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inválido: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("token inválido")
	}
	if claims.Username == "" && claims.Subject == "" {
		return nil, errors.New("token sem usuário")
	}
	return claims, nil
}
