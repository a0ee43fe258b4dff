package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Gera09az/zentry-web-sub000/internal/handler/api"
	"github.com/Gera09az/zentry-web-sub000/internal/handler/middleware"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, reservationHandler *api.ReservationHandler, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, reservationHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, reservationHandler *api.ReservationHandler, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		communities := apiGroup.Group("/communities/:communityId")
		communities.Use(authMiddleware.RequireAuth(), authMiddleware.RequireCommunity())
		{
			reservations := communities.Group("/reservations")
			{
				addRoutes(reservations, []route{
					{Method: http.MethodPost, Path: "/evaluate", Handler: reservationHandler.Evaluate},
					{Method: http.MethodGet, Path: "/export", Handler: reservationHandler.Export},
					{Method: http.MethodGet, Path: "/:id", Handler: reservationHandler.GetReservation},
					{Method: http.MethodGet, Path: "/:id/access", Handler: reservationHandler.AccessStatus},
					{Method: http.MethodPost, Path: "/:id/status", Handler: reservationHandler.Transition},
					{Method: http.MethodPost, Path: "/:id/key", Handler: reservationHandler.SetKeyStatus, Mw: []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast("guard")}},
					{Method: http.MethodDelete, Path: "/:id", Handler: reservationHandler.Remove, Mw: []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast("admin")}},
				})
			}

			amenities := communities.Group("/amenities")
			{
				addRoutes(amenities, []route{
					{Method: http.MethodGet, Path: "/:amenityId/blocks", Handler: reservationHandler.DayBlocks},
				})
			}
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(group *gin.RouterGroup, routes []route) {
	for _, r := range routes {
		handlers := make([]gin.HandlerFunc, 0, len(r.Mw)+1)
		handlers = append(handlers, r.Mw...)
		handlers = append(handlers, r.Handler)
		group.Handle(r.Method, r.Path, handlers...)
	}
}
