package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kayalabs/studiocart-backend/api/responses"
	"github.com/kayalabs/studiocart-backend/api/validators"
	adminsvc "github.com/kayalabs/studiocart-backend/internal/admin"
	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
)

type statusUpdateRequest struct {
	DesignProgress *string `json:"designProgress"`
	PaymentStatus  *string `json:"paymentStatus"`
	DesignDuration *string `json:"designDuration"`
}

// AdminListSessions lists every tracked design session.
func AdminListSessions(svc adminsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		sessions, err := svc.ListSessions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessions)
	}
}

// AdminGetDesignRequest returns the full design request for one user.
func AdminGetDesignRequest(svc adminsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		userID, err := sessionUserIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.GetDesignRequest(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}

// AdminUpdateStatus patches the status fields of a tracked session.
func AdminUpdateStatus(svc adminsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		userID, err := sessionUserIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.UpdateStatus(r.Context(), userID, adminsvc.StatusUpdate{
			DesignProgress: payload.DesignProgress,
			PaymentStatus:  payload.PaymentStatus,
			DesignDuration: payload.DesignDuration,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}

// AdminEndSession clears a session's cart and resets its tracking state.
func AdminEndSession(svc adminsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		userID, err := sessionUserIDFromRoute(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.EndSession(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ended"})
	}
}

func sessionUserIDFromRoute(r *http.Request) (string, error) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return userID, nil
}
