// Package server assembles the HTTP API from an App.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/access"
	"github.com/csr-bridge/backend/internal/auth"
	"github.com/csr-bridge/backend/internal/businesses"
	"github.com/csr-bridge/backend/internal/connections"
	"github.com/csr-bridge/backend/internal/events"
	"github.com/csr-bridge/backend/internal/middleware"
	"github.com/csr-bridge/backend/internal/models"
	"github.com/csr-bridge/backend/internal/store"
	"github.com/csr-bridge/backend/pkg/response"
)

// RootMessage is returned by GET {prefix}/.
const RootMessage = "CSR Initiatives Platform API"

// App is everything a request handler may depend on. It is built once at
// startup and never mutated afterwards.
type App struct {
	Store     store.Store
	Tokens    *auth.TokenService
	Logger    *zap.Logger
	APIPrefix string
	ListLimit int
	CORS      string

	// Optional collaborators; nil disables the feature.
	Images  businesses.ImagePresigner
	Repairs connections.Enqueuer
}

// NewRouter builds the gin engine serving the API.
func NewRouter(app *App) *gin.Engine {
	logger := app.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := app.ListLimit
	if limit <= 0 {
		limit = store.DefaultLimit
	}
	cors := app.CORS
	if cors == "" {
		cors = "*"
	}

	authenticator := auth.NewAuthenticator(app.Tokens, app.Store)
	policy := access.NewPolicy(app.Store, app.Store)

	authHandler := auth.NewHandler(app.Store, app.Tokens, logger)
	businessHandler := businesses.NewHandler(app.Store, policy, app.Images, limit, logger)
	eventHandler := events.NewHandler(app.Store, policy, limit, logger)
	connectionHandler := connections.NewHandler(app.Store, policy, app.Repairs, limit, logger)

	authenticated := middleware.Authenticate(authenticator, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cors))
	router.Use(middleware.Logger(logger))

	router.GET("/health", health(app.Store))

	api := router.Group(app.APIPrefix)
	api.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": RootMessage}) })

	// Bodies are bound and validated before the token is looked at.
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", middleware.BindJSON[auth.RegisterRequest](), authHandler.Register)
		authGroup.POST("/login", middleware.BindJSON[auth.LoginRequest](), authHandler.Login)
	}

	api.GET("/businesses", businessHandler.List)
	api.GET("/businesses/my", authenticated, businessHandler.ListMine)
	api.POST("/businesses", middleware.BindJSON[businesses.CreateRequest](), authenticated, businessHandler.Create)
	api.POST("/businesses/image-upload-url",
		middleware.BindJSON[businesses.ImageUploadRequest](), authenticated,
		middleware.RequireRole(models.RoleBusinessOwner), businessHandler.ImageUploadURL)

	api.GET("/events", eventHandler.List)
	api.GET("/events/my", authenticated, eventHandler.ListMine)
	api.GET("/events/:id", eventHandler.GetByID)
	api.POST("/events", middleware.BindJSON[events.CreateRequest](), authenticated, eventHandler.Create)

	api.GET("/connections", authenticated, connectionHandler.List)
	api.POST("/connections", middleware.BindJSON[connections.CreateRequest](), authenticated, connectionHandler.Create)

	return router
}

func health(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.Ping(ctx); err != nil {
			response.ServiceUnavailable(c, "store unavailable")
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	}
}
