package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "warmup-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", xerrors.NewValidation("Status inválido"), http.StatusBadRequest},
		{"not found", xerrors.Op("Erro ao atualizar plano", xerrors.ErrNotFound), http.StatusNotFound},
		{"email in use", xerrors.Op("Erro ao criar conta", xerrors.NewAuth(xerrors.CodeEmailInUse, nil)), http.StatusConflict},
		{"bad credential", xerrors.NewAuth(xerrors.CodeInvalidCredential, nil), http.StatusUnauthorized},
		{"session expired", xerrors.NewAuth(xerrors.CodeSessionExpired, nil), http.StatusUnauthorized},
		{"rate limited", xerrors.NewAuth(xerrors.CodeTooManyRequests, nil), http.StatusTooManyRequests},
		{"unique violation", xerrors.Op("Erro ao criar cliente", &pgconn.PgError{Code: "23505"}), http.StatusConflict},
		{"unknown", fmt.Errorf("failed: %w", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"op error keeps action", xerrors.Op("Erro ao fazer login", xerrors.NewAuth(xerrors.CodeInvalidCredential, nil)),
			http.StatusUnauthorized, "Erro ao fazer login: Email ou senha incorretos."},
		{"bare auth error is translated", xerrors.NewAuth(xerrors.CodeSessionExpired, errors.New("token revoked")),
			http.StatusUnauthorized, "Sessão expirada. Faça login novamente."},
		{"validation", xerrors.NewValidation("Descreva a interação"), http.StatusBadRequest, "Descreva a interação"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			FromError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.True(t, c.IsAborted())

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
