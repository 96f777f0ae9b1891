package routes

import (
	"net/http"

	"researchhub/researchhub/controllers"

	"github.com/go-chi/chi/v5"
)

func CategoryRoutes(ctrl *controllers.CategoryController, requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireUser)

	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		return map[string][]string{"categories": ctrl.Names()}, http.StatusOK, nil
	}))

	r.Get("/{name}", handleJSON(func(r *http.Request) (any, int, error) {
		cat, err := ctrl.Get(chi.URLParam(r, "name"))
		if err != nil {
			return nil, http.StatusNotFound, err
		}
		return cat, http.StatusOK, nil
	}))

	return r
}
