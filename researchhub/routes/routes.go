package routes

import (
	"io/fs"
	"net/http"
	"time"

	"researchhub/researchhub/catalog"
	"researchhub/researchhub/controllers"
	"researchhub/researchhub/middlewares"
	"researchhub/researchhub/services/token"
	"researchhub/researchhub/sources"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/apperrors"
	httputils "researchhub/researchhub/utils/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs. Limiter and Frontend are optional.
type Deps struct {
	Store         sources.Store
	Tokens        *token.Service
	Catalog       *catalog.Catalog
	CORSOrigins   []string
	Limiter       middlewares.Counter
	AuthRateLimit int
	Frontend      fs.FS
}

// generic wrapper to reduce boilerplate
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, httputils.MaxBodyBytes)
		}
		res, status, err := handler(r)
		if err != nil {
			apperrors.Write(w, r, err)
			return
		}
		httputils.WriteJSON(w, status, res)
	}
}

// currentUser is only valid behind AuthMiddleware.
func currentUser(r *http.Request) (*types.User, error) {
	user := middlewares.UserFromContext(r.Context())
	if user == nil {
		return nil, apperrors.Unauthorized("Could not validate credentials")
	}
	return user, nil
}

func NewRouter(d Deps) chi.Router {
	authCtrl := controllers.NewAuthController(d.Store, d.Tokens)
	convCtrl := controllers.NewConversationController(d.Store)
	catCtrl := controllers.NewCategoryController(d.Catalog)
	healthCtrl := controllers.NewHealthController(d.Store)

	requireUser := middlewares.AuthMiddleware(d.Tokens, d.Store)
	limiter := middlewares.RateLimit(d.Limiter, middlewares.RateLimitConfig{
		Prefix:            "auth",
		RequestsPerMinute: d.AuthRateLimit,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middlewares.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		return map[string]string{"message": "LangGraph Research API", "status": "running"}, http.StatusOK, nil
	}))
	r.Mount("/health", HealthRoutes(healthCtrl))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", AuthRoutes(authCtrl, requireUser, limiter))
		api.Mount("/conversations", ConversationRoutes(convCtrl, requireUser))
		api.Mount("/categories", CategoryRoutes(catCtrl, requireUser))
	})

	frontend := FrontendHandler(d.Frontend)
	r.Handle("/app", frontend)
	r.Handle("/app/*", frontend)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.Write(w, r, apperrors.NotFound("Not Found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apperrors.Write(w, r, &apperrors.AppError{
			Type:       apperrors.TypeBadRequest,
			Message:    "Method Not Allowed",
			HTTPStatus: http.StatusMethodNotAllowed,
		})
	})
	return r
}
