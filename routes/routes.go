package routes

import (
	"database/sql"
	"net/http"
	"net/http/pprof"
	"time"

	"explore-api/controllers"
	"explore-api/db"
	"explore-api/middlewares"
	"explore-api/models"
	"explore-api/storage"

	"github.com/gorilla/mux"
)

// Deps carries the collaborators the handlers operate against.
type Deps struct {
	Posts    models.PostStore
	Cache    *db.PostCache
	Resolver *storage.Resolver
	DB       *sql.DB
}

// SetupRoutes sets up the application routes and middlewares.
func SetupRoutes(deps Deps) http.Handler {
	router := mux.NewRouter()

	// Apply global middlewares
	router.Use(middlewares.CorsMiddleware(&middlewares.CorsConfig{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"https://explore-front-aznp.vercel.app",
			"https://explore-dash-a3tm.vercel.app",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(middlewares.LoggingMiddleware)

	// Initialize rate limiter and apply to all routes
	rateLimiter := middlewares.NewRateLimiter(30, time.Minute, 2*time.Minute)
	router.Use(rateLimiter.Limit)

	// Attach the actor when a token is present; route groups decide
	// whether authentication is required.
	router.Use(middlewares.ActorFromToken)

	controllers.SetupRootRoute(router)

	postHandler := controllers.NewPostHandler(deps.Posts, deps.Cache, deps.Resolver)
	postHandler.SetupRoutes(router)

	uploadHandler := controllers.NewUploadHandler(deps.Resolver)
	uploadRouter := router.PathPrefix("/upload").Subrouter()
	uploadRouter.Use(middlewares.RequireAuth)
	uploadRouter.HandleFunc("", uploadHandler.UploadImage).Methods("POST")

	authHandler := &controllers.AuthHandler{DB: deps.DB}
	authHandler.SetupUserRoutes(router)

	// Register pprof routes to enable profiling
	router.HandleFunc("/debug/pprof/", pprof.Index)
	router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	return router
}
