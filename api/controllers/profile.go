package controllers

import (
	"net/http"

	"github.com/kayalabs/studiocart-backend/api/middleware"
	"github.com/kayalabs/studiocart-backend/api/responses"
	"github.com/kayalabs/studiocart-backend/api/validators"
	profilesvc "github.com/kayalabs/studiocart-backend/internal/profile"
	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
)

type paymentMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

// ProfileDashboard pulls the remote document and projects the dashboard.
func ProfileDashboard(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		deviceID := middleware.DeviceIDFromContext(r.Context())

		dashboard, err := svc.Dashboard(r.Context(), deviceID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboard)
	}
}

// ProfilePaymentMethod records the user's payment choice.
func ProfilePaymentMethod(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		var payload paymentMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if err := svc.ChoosePaymentMethod(r.Context(), userID, payload.Method); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}

// ProfileClearCart clears the remote cart and resets tracking, then wipes
// the local device session.
func ProfileClearCart(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		deviceID := middleware.DeviceIDFromContext(r.Context())

		if err := svc.ClearRemote(r.Context(), deviceID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
