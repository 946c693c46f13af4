package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"conectame/internal/config"
	"conectame/internal/middleware"
	"conectame/internal/service"
)

type HandlerSet struct {
	log     zerolog.Logger
	cfg     *config.AppConfig
	auth    *service.AuthService
	clients *service.ClientService
	checks  []HealthCheck
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	auth *service.AuthService,
	clients *service.ClientService,
	checks ...HealthCheck,
) HandlerSet {
	return HandlerSet{
		log:     log,
		cfg:     cfg,
		auth:    auth,
		clients: clients,
		checks:  checks,
	}
}

// Routes mounts every endpoint on router.
func (h HandlerSet) Routes(router gin.IRouter) {
	router.GET("/", h.Home)
	router.GET("/healthz", h.Health)

	router.POST("/login", h.Login)
	router.POST("/register", h.Register)

	logout := router.Group("/logout")
	logout.Use(middleware.RequireSession(h.auth))
	logout.POST("", h.Logout)
	logout.GET("", h.Logout)

	clients := router.Group("/clients")
	clients.GET("", h.ListClients)
	clients.POST("", h.CreateClient)
	clients.GET("/:id", h.GetClient)
	clients.PUT("/:id", h.UpdateClient)
	clients.POST("/:id", h.UpdateClient)
	clients.DELETE("/:id", h.DeleteClient)
	clients.POST("/:id/delete", h.DeleteClient)

	router.GET("/reminders", h.DueReminders)
}
