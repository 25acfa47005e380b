package middleware

import (
	"net/http"
	"strings"

	"github.com/kayalabs/studiocart-backend/pkg/logger"
)

const deviceIDHeader = "X-Device-Id"

// DeviceID extracts the per-device session identity from the request header.
// Cart routes require it; handlers reject requests where it is absent.
func DeviceID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deviceID := strings.TrimSpace(r.Header.Get(deviceIDHeader))
			if deviceID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithDeviceID(r.Context(), deviceID)
			if logg != nil {
				ctx = logg.WithDeviceID(ctx, deviceID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
