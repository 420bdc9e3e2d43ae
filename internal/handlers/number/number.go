// internal/handlers/number/number.go
package number

import (
	"net/http"
	"strconv"

	"warmup-service/internal/domain/number"
	"warmup-service/internal/middleware"
	"warmup-service/internal/pkg/response"
	service "warmup-service/internal/service/number"

	"github.com/gin-gonic/gin"
)

type NumberHandler struct {
	numberService *service.NumberService
}

func NewNumberHandler(numberService *service.NumberService) *NumberHandler {
	return &NumberHandler{
		numberService: numberService,
	}
}

// ========== Numbers ==========

// ListNumbers applies ?status= or ?company= (exact); status wins when both are set.
func (h *NumberHandler) ListNumbers(c *gin.Context) {
	var filters number.NumberListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.numberService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "numbers retrieved", result)
}

// GetNumber returns the number with its current plan, health and interactions
func (h *NumberHandler) GetNumber(c *gin.Context) {
	result, err := h.numberService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if result == nil {
		response.NotFound(c, "number not found")
		return
	}

	response.Success(c, http.StatusOK, "number retrieved", result)
}

func (h *NumberHandler) CreateNumber(c *gin.Context) {
	var req number.CreateNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.numberService.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "number created successfully", result)
}

func (h *NumberHandler) UpdateNumber(c *gin.Context) {
	var req number.UpdateNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.numberService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if result == nil {
		response.NotFound(c, "number not found")
		return
	}

	response.Success(c, http.StatusOK, "number updated successfully", result)
}

func (h *NumberHandler) UpdateNumberStatus(c *gin.Context) {
	var req number.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.numberService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if result == nil {
		response.NotFound(c, "number not found")
		return
	}

	response.Success(c, http.StatusOK, "number status updated", result)
}

func (h *NumberHandler) DeleteNumber(c *gin.Context) {
	if err := h.numberService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "number deleted successfully", nil)
}

// ========== Interactions ==========

func (h *NumberHandler) RegisterInteraction(c *gin.Context) {
	var req number.RegisterInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	req.CreatedBy, _ = middleware.GetUID(c)

	result, err := h.numberService.RegisterInteraction(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "interaction registered", result)
}

// GetInteractions lists newest first; ?limit= caps the result, absent or 0 returns all.
func (h *NumberHandler) GetInteractions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = parsed
	}

	result, err := h.numberService.GetInteractions(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "interactions retrieved", result)
}

// ========== Heating plans / health ==========

func (h *NumberHandler) SetHeatingPlan(c *gin.Context) {
	var req number.SetHeatingPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.numberService.SetHeatingPlan(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "heating plan set", result)
}

func (h *NumberHandler) UpdateHeatingPlan(c *gin.Context) {
	var req number.UpdateHeatingPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.numberService.UpdateHeatingPlan(c.Request.Context(), c.Param("id"), c.Param("planId"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "heating plan updated", result)
}

func (h *NumberHandler) SaveHealth(c *gin.Context) {
	var req number.SaveHealthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.numberService.SaveNumberHealth(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "number health saved", result)
}
