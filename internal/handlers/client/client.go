// internal/handlers/client/client.go
package client

import (
	"net/http"

	"warmup-service/internal/domain/client"
	"warmup-service/internal/middleware"
	"warmup-service/internal/pkg/response"
	service "warmup-service/internal/service/client"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService *service.ClientService
}

func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

// ListClients applies ?status= or ?company= (prefix); status wins when both are set.
func (h *ClientHandler) ListClients(c *gin.Context) {
	var filters client.ClientListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.clientService.List(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "clients retrieved", result)
}

// GetClient returns the client with its numbers and billing
func (h *ClientHandler) GetClient(c *gin.Context) {
	result, err := h.clientService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if result == nil {
		response.NotFound(c, "client not found")
		return
	}

	response.Success(c, http.StatusOK, "client retrieved", result)
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req client.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	req.CreatedBy, _ = middleware.GetUID(c)

	result, err := h.clientService.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "client created successfully", result)
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req client.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	if req.IsEmpty() {
		response.Error(c, http.StatusBadRequest, "no fields to update", nil)
		return
	}

	result, err := h.clientService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if result == nil {
		response.NotFound(c, "client not found")
		return
	}

	response.Success(c, http.StatusOK, "client updated successfully", result)
}

func (h *ClientHandler) UpdateClientStatus(c *gin.Context) {
	var req client.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.clientService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if result == nil {
		response.NotFound(c, "client not found")
		return
	}

	response.Success(c, http.StatusOK, "client status updated", result)
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	if err := h.clientService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "client deleted successfully", nil)
}

// SetBilling is admin only.
func (h *ClientHandler) SetBilling(c *gin.Context) {
	var req client.SetBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.clientService.SetBilling(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if result == nil {
		response.NotFound(c, "client not found")
		return
	}

	response.Success(c, http.StatusOK, "billing updated", result)
}
