package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cohee-app/utils"
)

const DeviceHeader = "X-Device-ID"

const maxDeviceIDLength = 64

// DeviceMiddleware mewajibkan header X-Device-ID; setiap device punya keranjang dan sesi meja sendiri.
func DeviceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader(DeviceHeader))
		if deviceID == "" || len(deviceID) > maxDeviceIDLength {
			utils.RespondError(c, http.StatusBadRequest, errors.New("X-Device-ID header missing or invalid"))
			c.Abort()
			return
		}

		c.Set(ContextDeviceID, deviceID)
		c.Next()
	}
}
