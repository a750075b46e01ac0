package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cohee-app/middlewares"
	"github.com/yeremiapane/cohee-app/services"
	"github.com/yeremiapane/cohee-app/utils"
)

var (
	ErrNoPermission   = errors.New("You do not have permission")
	ErrDeviceRequired = errors.New("X-Device-ID header missing")
)

// statusFor memetakan error layanan ke HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidQRFormat),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoActiveSession),
		errors.Is(err, services.ErrSessionNotActive),
		errors.Is(err, services.ErrScanInProgress),
		errors.Is(err, services.ErrCheckoutInProgress),
		errors.Is(err, services.ErrInvalidStatusTransition):
		return http.StatusConflict
	case errors.Is(err, services.ErrStoreFailure),
		errors.Is(err, services.ErrSessionStartFailed),
		errors.Is(err, services.ErrSessionEndFailed),
		errors.Is(err, services.ErrOrderPersistFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error) {
	utils.RespondError(c, statusFor(err), err)
}

// deviceApp mengambil AppContext milik device dari registry.
func deviceApp(c *gin.Context, apps *services.AppRegistry) (*services.AppContext, string, bool) {
	deviceID := c.GetString(middlewares.ContextDeviceID)
	if deviceID == "" {
		utils.RespondError(c, http.StatusBadRequest, ErrDeviceRequired)
		return nil, "", false
	}
	return apps.Get(deviceID), deviceID, true
}
