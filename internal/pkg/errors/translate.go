// internal/pkg/errors/translate.go
package xerrors

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var pgMessages = map[string]string{
	"23505": "Este registro já existe.",
	"23503": "Registro relacionado não encontrado.",
	"23514": "Os dados informados são inválidos.",
	"23502": "Campo obrigatório não informado.",
	"22P02": "Formato de dado inválido.",
	"42501": "Você não tem permissão para realizar esta operação.",
	"57014": "A operação excedeu o tempo limite.",
}

var authMessages = map[string]string{
	CodeInvalidCredential: "Email ou senha incorretos.",
	CodeEmailInUse:        "Este email já está em uso.",
	CodeTooManyRequests:   "Muitas tentativas. Tente novamente mais tarde.",
	CodeUserNotFound:      "Usuário não encontrado no sistema.",
	CodeSessionExpired:    "Sessão expirada. Faça login novamente.",
}

// Translate turns a store or provider error into a stable user-facing message.
// Errors it does not recognize pass through with their raw message.
func Translate(err error) string {
	if err == nil {
		return ""
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		if msg, ok := authMessages[authErr.Code]; ok {
			return msg
		}
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := pgMessages[pgErr.Code]; ok {
			return msg
		}
		// class 08: connection exceptions
		if strings.HasPrefix(pgErr.Code, "08") {
			return "Serviço indisponível. Tente novamente mais tarde."
		}
		return pgErr.Message
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "A operação excedeu o tempo limite."
	case errors.Is(err, context.Canceled):
		return "A operação foi cancelada."
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, ErrNotFound):
		return "Registro não encontrado."
	}

	return err.Error()
}
