package routes

import (
	"net/http"

	"researchhub/researchhub/controllers"
	"researchhub/researchhub/types"
	httputils "researchhub/researchhub/utils/http"

	"github.com/go-chi/chi/v5"
)

func ConversationRoutes(ctrl *controllers.ConversationController, requireUser func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(requireUser)

	r.Post("/", handleJSON(func(r *http.Request) (any, int, error) {
		user, err := currentUser(r)
		if err != nil {
			return nil, http.StatusUnauthorized, err
		}
		var req types.CreateConversationRequest
		if err := httputils.DecodeJSON(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		summary, err := ctrl.Create(r.Context(), user, req)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return summary, http.StatusOK, nil
	}))

	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		user, err := currentUser(r)
		if err != nil {
			return nil, http.StatusUnauthorized, err
		}
		skip, err := httputils.QueryInt(r, "skip", 0)
		if err != nil {
			return nil, http.StatusUnprocessableEntity, err
		}
		limit, err := httputils.QueryInt(r, "limit", controllers.DefaultPageLimit)
		if err != nil {
			return nil, http.StatusUnprocessableEntity, err
		}
		list, err := ctrl.List(r.Context(), user, skip, limit)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return list, http.StatusOK, nil
	}))

	// registered before /{id} so "search" is never read as an id
	r.Post("/search", handleJSON(func(r *http.Request) (any, int, error) {
		user, err := currentUser(r)
		if err != nil {
			return nil, http.StatusUnauthorized, err
		}
		var req types.SearchRequest
		if err := httputils.DecodeJSON(r, &req); err != nil {
			return nil, http.StatusBadRequest, err
		}
		hits, err := ctrl.Search(r.Context(), user, req)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return hits, http.StatusOK, nil
	}))

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
			user, err := currentUser(r)
			if err != nil {
				return nil, http.StatusUnauthorized, err
			}
			conv, err := ctrl.Get(r.Context(), user, chi.URLParam(r, "id"))
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return conv, http.StatusOK, nil
		}))

		r.Patch("/", handleJSON(func(r *http.Request) (any, int, error) {
			user, err := currentUser(r)
			if err != nil {
				return nil, http.StatusUnauthorized, err
			}
			var req types.UpdateConversationRequest
			if err := httputils.DecodeJSON(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			conv, err := ctrl.Update(r.Context(), user, chi.URLParam(r, "id"), req)
			if err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return conv, http.StatusOK, nil
		}))

		r.Post("/messages", handleJSON(func(r *http.Request) (any, int, error) {
			user, err := currentUser(r)
			if err != nil {
				return nil, http.StatusUnauthorized, err
			}
			var req types.AddMessageRequest
			if err := httputils.DecodeJSON(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			if _, err := ctrl.AddMessage(r.Context(), user, chi.URLParam(r, "id"), req); err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return map[string]string{"message": "Message added successfully"}, http.StatusOK, nil
		}))

		r.Post("/archive", handleJSON(func(r *http.Request) (any, int, error) {
			user, err := currentUser(r)
			if err != nil {
				return nil, http.StatusUnauthorized, err
			}
			if err := ctrl.Archive(r.Context(), user, chi.URLParam(r, "id")); err != nil {
				return nil, http.StatusInternalServerError, err
			}
			return map[string]string{"message": "Conversation archived"}, http.StatusOK, nil
		}))
	})

	return r
}
