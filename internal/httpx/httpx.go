// Package httpx holds the HTTP plumbing shared by the route packages: the
// central error handler and parameter parsing.
package httpx

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"gondolatrack/internal/models"
	"gondolatrack/internal/session"
	"gondolatrack/internal/upstream"
	"gondolatrack/internal/workflow"

	"github.com/gofiber/fiber/v2"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// Status maps an error to the HTTP status and message shown to the user.
func Status(err error) (int, string) {
	var fe *fiber.Error
	var se *upstream.StatusError
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, upstream.ErrUnreachable):
		return fiber.StatusServiceUnavailable, upstream.ErrUnreachable.Error()
	case errors.As(err, &se):
		if se.Status >= 500 {
			return fiber.StatusBadGateway, se.Message
		}
		return se.Status, se.Message
	case errors.Is(err, session.ErrBusy):
		return fiber.StatusConflict, session.ErrBusy.Error()
	case errors.Is(err, session.ErrFinalized):
		return fiber.StatusConflict, session.ErrFinalized.Error()
	case errors.Is(err, workflow.ErrNotSaved):
		return fiber.StatusConflict, workflow.ErrNotSaved.Error()
	case errors.Is(err, session.ErrUnknownKey):
		return fiber.StatusNotFound, err.Error()
	}
	return fiber.StatusInternalServerError, "Erro inesperado no servidor"
}

// ErrorHandler renders every error as {"error": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, msg := Status(err)
	if code >= 500 {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: msg})
}

// ParamID reads a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Parâmetro inválido: "+name)
	}
	return id, nil
}

// QueryID reads an optional numeric query parameter; absent is 0.
func QueryID(c *fiber.Ctx, name string) (int64, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Parâmetro inválido: "+name)
	}
	return id, nil
}

// Edicoes parses a {"valores": [{"key", "valor"}]} body.
func Edicoes(c *fiber.Ctx) (map[session.Key]*string, error) {
	var body models.EdicoesRequest
	if err := c.BodyParser(&body); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
	}
	if len(body.Valores) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Nenhum valor informado")
	}
	out := make(map[session.Key]*string, len(body.Valores))
	for _, e := range body.Valores {
		out[session.Key(e.Key)] = e.Valor
	}
	return out, nil
}
