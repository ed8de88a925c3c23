package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studymate/studymate-backend/internal/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (dh *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := dh.dashboardService.GetDashboard(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_dashboard_failed", err)
		return
	}
	RespondOK(c, dashboard)
}
