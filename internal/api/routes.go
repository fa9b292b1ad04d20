package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "yolo-webcam-go/docs"
	"yolo-webcam-go/internal/api/middleware"
)

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.WorkerInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	s.router.GET("/stream.mjpeg", s.streamHandler.Stream)
	s.router.GET("/frame.jpg", s.streamHandler.Snapshot)

	s.router.GET("/labels", s.annotationHandler.Labels)
	s.router.POST("/annotate", s.annotationHandler.Annotate)
	annotation := s.router.Group("/annotation")
	{
		annotation.GET("/settings", s.annotationHandler.GetSettings)
		annotation.PUT("/settings", s.annotationHandler.UpdateSettings)
	}

	s.router.GET("/webrtc/config", s.webrtcHandler.Config)

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
		system.GET("/debug", s.systemHandler.GetDebugInfo)
	}
}

func (s *Server) setupSwagger() {
	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
}
