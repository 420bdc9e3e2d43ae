// internal/handlers/dashboard/dashboard.go
package dashboard

import (
	"net/http"

	"warmup-service/internal/pkg/response"
	service "warmup-service/internal/service/dashboard"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Summary always answers 200; parts that failed to load come back zeroed.
func (h *DashboardHandler) Summary(c *gin.Context) {
	response.Success(c, http.StatusOK, "dashboard summary", h.dashboardService.Summary(c.Request.Context()))
}
