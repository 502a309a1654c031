package handlers

import (
	"brewlink/internal/logger"
	"brewlink/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live state stream (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorAuth)
	{
		h.registerMachineRoutes(api)
		h.registerChartRoutes(api)
		h.registerShotRoutes(api)
		h.registerProfileRoutes(api)
		h.registerReplayRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerMachineRoutes(api *gin.RouterGroup) {
	machine := api.Group("/machine")
	{
		machine.GET("/state", h.getState)
		machine.POST("/command/:name", h.dispatchCommand)
	}
}

func (h *Handler) registerChartRoutes(api *gin.RouterGroup) {
	api.GET("/chart/live", h.getChart)
}

func (h *Handler) registerShotRoutes(api *gin.RouterGroup) {
	shots := api.Group("/shots")
	{
		shots.GET("/", h.listShots)
		shots.GET("/:id", h.getShot)
		shots.POST("/import", h.importShot)
	}
}

func (h *Handler) registerProfileRoutes(api *gin.RouterGroup) {
	profiles := api.Group("/profiles")
	{
		profiles.GET("/", h.listProfiles)
		profiles.GET("/:name", h.getProfile)
		profiles.PUT("/:name", h.saveProfile)
	}
}

func (h *Handler) registerReplayRoutes(api *gin.RouterGroup) {
	replay := api.Group("/replay")
	{
		replay.POST("/shot/:id", h.startShotReplay)
		replay.POST("/profile/:name", h.startProfileReplay)
		replay.POST("/stop", h.stopReplay)
		replay.GET("/status", h.replayStatus)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
