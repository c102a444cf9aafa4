package handlers

import (
	"sterilizer_control/internal/logger"
	"sterilizer_control/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services and logging. It carries no process
// logic: every route either reads the snapshot or forwards a command.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}

	api := router.Group("/api/v1", h.operatorIDMiddleware)
	{
		h.registerSterilizerRoutes(api)
		h.registerHistoryRoutes(api)
	}
	return router
}

func (h *Handler) registerSterilizerRoutes(api *gin.RouterGroup) {
	st := api.Group("/sterilizer")
	{
		st.GET("/state", h.getState)
		st.GET("/programs", h.getPrograms)
		st.POST("/start", h.startCycle)
		st.POST("/stop", h.stopCycle)
		st.POST("/door/open", h.openDoor)
		st.POST("/door/close", h.closeDoor)
		st.POST("/vacuum-test", h.startVacuumTest)
		st.POST("/reset-errors", h.resetErrors)
		st.POST("/power-fail", h.powerFail)
		st.POST("/power-continue", h.powerContinue)
		st.POST("/power-abort", h.powerAbort)
		st.PUT("/programs/:id/override", h.setProgramOverride)
		st.PUT("/calibration", h.setCalibration)
		st.DELETE("/calibration", h.resetCalibration)
	}
}

func (h *Handler) registerHistoryRoutes(api *gin.RouterGroup) {
	hist := api.Group("/history")
	{
		hist.GET("/cycles", h.getCycleHistory)
		hist.GET("/errors", h.getErrorHistory)
		hist.GET("/vacuum-tests", h.getVacuumHistory)
	}
}
