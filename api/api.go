// Package api wires the HTTP surface of the weatherstation backend.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meteohub/weatherstation/api/auth"
	"github.com/meteohub/weatherstation/api/docs"
	"github.com/meteohub/weatherstation/api/handler"
	"github.com/meteohub/weatherstation/config"
	"github.com/meteohub/weatherstation/database"
)

type Server struct {
	cfg          *config.Config
	ginEngine    *gin.Engine
	db           *database.Client
	authProvider *auth.Provider
}

func New(cfg *config.Config, db *database.Client) *Server {
	s := &Server{
		cfg:          cfg,
		ginEngine:    gin.Default(),
		db:           db,
		authProvider: auth.New(db, cfg.TokenTTL),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

func (s *Server) setupMiddleware() {
	s.ginEngine.HandleMethodNotAllowed = true
	s.ginEngine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	s.ginEngine.Use(requestID())
	s.ginEngine.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
	}))
	if s.cfg.Gzip {
		s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression))
	}
}

func (s *Server) setupRoutes() {
	h := handler.New(s.db)

	api := s.ginEngine.Group("/api")

	// Public endpoints: account creation, credential exchange, docs.
	api.POST("/users/", h.CreateUser)
	api.POST("/login/", s.authProvider.Login)
	api.POST("/token/", s.authProvider.Token)
	api.GET("/schema/", docs.Schema)
	api.GET("/docs/", docs.Docs)

	protected := api.Group("/")
	protected.Use(s.authProvider.RequireAuth(false))

	protected.POST("/logout/", s.authProvider.Logout)
	protected.POST("/logoutall/", s.authProvider.LogoutAll)
	protected.GET("/users/me/", h.Me)
	protected.PATCH("/users/me/", h.UpdateMe)

	ws := protected.Group("/weatherstation")

	ws.GET("/sensors/", h.ListSensors)
	ws.POST("/sensors/", h.CreateSensor)
	ws.GET("/sensors/:id/", h.GetSensor)
	ws.PUT("/sensors/:id/", h.UpdateSensor)
	ws.PATCH("/sensors/:id/", h.UpdateSensor)
	ws.DELETE("/sensors/:id/", h.DeleteSensor)

	ws.GET("/sensor_types/", h.ListSensorTypes)
	ws.POST("/sensor_types/", h.CreateSensorType)
	ws.GET("/sensor_types/:id/", h.GetSensorType)
	ws.PUT("/sensor_types/:id/", h.UpdateSensorType)
	ws.PATCH("/sensor_types/:id/", h.UpdateSensorType)
	ws.DELETE("/sensor_types/:id/", h.DeleteSensorType)

	ws.GET("/locations/", h.ListLocations)
	ws.POST("/locations/", h.CreateLocation)
	ws.GET("/locations/:id/", h.GetLocation)
	ws.PUT("/locations/:id/", h.UpdateLocation)
	ws.PATCH("/locations/:id/", h.UpdateLocation)
	ws.DELETE("/locations/:id/", h.DeleteLocation)

	// Measurements additionally accept the API key header so station
	// firmware can ingest readings without a login flow.
	measurements := api.Group("/weatherstation/measurements")
	measurements.Use(s.authProvider.RequireAuth(true))
	measurements.GET("/", h.ListMeasurements)
	measurements.POST("/", h.CreateMeasurement)
	measurements.GET("/:id/", h.GetMeasurement)
	measurements.PUT("/:id/", h.UpdateMeasurement)
	measurements.PATCH("/:id/", h.UpdateMeasurement)
	measurements.DELETE("/:id/", h.DeleteMeasurement)
}

// Engine exposes the gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.ginEngine
}

// Run starts the HTTP server on the configured listen address.
func (s *Server) Run() error {
	return s.ginEngine.Run(s.cfg.Listen)
}
