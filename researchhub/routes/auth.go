package routes

import (
	"net/http"

	"researchhub/researchhub/controllers"
	"researchhub/researchhub/types"
	httputils "researchhub/researchhub/utils/http"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(ctrl *controllers.AuthController, requireUser, limiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(limiter).Post("/register", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.RegisterRequest
		if err := httputils.DecodeJSON(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		resp, err := ctrl.Register(r.Context(), req)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return resp, http.StatusOK, nil
	}))

	r.With(limiter).Post("/login", handleJSON(func(r *http.Request) (any, int, error) {
		var req types.LoginRequest
		if err := httputils.DecodeJSON(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		resp, err := ctrl.Login(r.Context(), req)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return resp, http.StatusOK, nil
	}))

	r.Group(func(gr chi.Router) {
		gr.Use(requireUser)

		gr.Get("/me", handleJSON(func(r *http.Request) (any, int, error) {
			user, err := currentUser(r)
			if err != nil {
				return nil, http.StatusUnauthorized, err
			}
			return user.Public(), http.StatusOK, nil
		}))

		gr.Put("/me/preferences", handleJSON(func(r *http.Request) (any, int, error) {
			user, err := currentUser(r)
			if err != nil {
				return nil, http.StatusUnauthorized, err
			}
			var req types.PreferencesRequest
			if err := httputils.DecodeJSON(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			resp, err := ctrl.UpdatePreferences(r.Context(), user, req)
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return resp, http.StatusOK, nil
		}))
	})

	return r
}
