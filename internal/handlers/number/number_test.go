package number

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"warmup-service/internal/pkg/response"
	"warmup-service/internal/repository/postgres"
	service "warmup-service/internal/service/number"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var interactionCols = []string{"id", "number_id", "type", "description", "metadata", "created_by", "timestamp"}

func setupRouter(t *testing.T) (*gin.Engine, pgxmock.PgxPoolIface) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	svc := service.NewNumberService(postgres.NewNumberRepository(mockPool), nil, zap.NewNop())
	h := NewNumberHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("uid", "admin-1")
		c.Next()
	})
	r.GET("/numbers/:id", h.GetNumber)
	r.POST("/numbers/:id/interactions", h.RegisterInteraction)
	r.GET("/numbers/:id/interactions", h.GetInteractions)
	return r, mockPool
}

func perform(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestGetNumber_NotFound(t *testing.T) {
	r, mockPool := setupRouter(t)

	mockPool.ExpectQuery(`FROM numbers WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	w, resp := perform(r, http.MethodGet, "/numbers/missing", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRegisterInteraction(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockPool := setupRouter(t)

		mockPool.ExpectQuery(`INSERT INTO number_interactions`).
			WithArgs(pgxmock.AnyArg(), "n1", "message_sent", "Primeira mensagem", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(mockPool.NewRows(interactionCols).
				AddRow("i1", "n1", "message_sent", "Primeira mensagem", nil, "admin-1", nil))
		mockPool.ExpectExec(`UPDATE numbers SET last_activity = NOW\(\), updated_at = NOW\(\) WHERE id = \$1`).
			WithArgs("n1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		w, resp := perform(r, http.MethodPost, "/numbers/n1/interactions",
			`{"type":"message_sent","description":"Primeira mensagem"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, resp.Success)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("InvalidType", func(t *testing.T) {
		r, mockPool := setupRouter(t)

		w, resp := perform(r, http.MethodPost, "/numbers/n1/interactions",
			`{"type":"voice_call","description":"x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Tipo de interação inválido", resp.Message)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("MissingNumberKeepsInteraction", func(t *testing.T) {
		r, mockPool := setupRouter(t)

		mockPool.ExpectQuery(`INSERT INTO number_interactions`).
			WillReturnRows(mockPool.NewRows(interactionCols).
				AddRow("i1", "gone", "block_alert", "Bloqueio", nil, "admin-1", nil))
		mockPool.ExpectExec(`UPDATE numbers SET last_activity`).
			WithArgs("gone").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		w, resp := perform(r, http.MethodPost, "/numbers/gone/interactions",
			`{"type":"block_alert","description":"Bloqueio"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Erro ao registrar interação: Registro não encontrado.", resp.Message)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestGetInteractions(t *testing.T) {
	t.Run("AppliesLimit", func(t *testing.T) {
		r, mockPool := setupRouter(t)

		mockPool.ExpectQuery(`FROM number_interactions WHERE number_id = \$1 ORDER BY "timestamp" DESC, id DESC LIMIT \$2`).
			WithArgs("n1", 2).
			WillReturnRows(mockPool.NewRows(interactionCols).
				AddRow("i5", "n1", "message_sent", "5", nil, nil, nil).
				AddRow("i4", "n1", "message_sent", "4", nil, nil, nil))

		w, resp := perform(r, http.MethodGet, "/numbers/n1/interactions?limit=2", "")

		assert.Equal(t, http.StatusOK, w.Code)
		items, ok := resp.Data.([]interface{})
		require.True(t, ok)
		assert.Len(t, items, 2)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("RejectsNegativeLimit", func(t *testing.T) {
		r, mockPool := setupRouter(t)

		w, _ := perform(r, http.MethodGet, "/numbers/n1/interactions?limit=-1", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
