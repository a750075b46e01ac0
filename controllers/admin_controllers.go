package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cohee-app/kds"
	"github.com/yeremiapane/cohee-app/services"
	"github.com/yeremiapane/cohee-app/utils"
)

type AdminController struct {
	Analytics *services.AnalyticsService
	Sessions  *services.TableSessionManager
	Hub       *kds.Hub
}

func NewAdminController(analytics *services.AnalyticsService, sessions *services.TableSessionManager, hub *kds.Hub) *AdminController {
	return &AdminController{Analytics: analytics, Sessions: sessions, Hub: hub}
}

// GetDashboardStats mengambil statistik untuk dashboard
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats := ac.Analytics.Dashboard(c.Request.Context())

	ac.Hub.BroadcastDashboardUpdate(stats)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// GetAnalytics -> pendapatan, rata-rata order, item terlaris, per kategori
func (ac *AdminController) GetAnalytics(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Analytics retrieved successfully", ac.Analytics.Analytics(c.Request.Context()))
}

// GetActiveSessions -> semua meja yang sedang terisi
func (ac *AdminController) GetActiveSessions(c *gin.Context) {
	sessions, err := ac.Sessions.ActiveSessions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active table sessions", sessions)
}
