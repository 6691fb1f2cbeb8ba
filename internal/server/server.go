package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"cvquery-backend/internal/config"
	"cvquery-backend/internal/curricula"
	"cvquery-backend/internal/shared/server/middleware"
)

// Deps carries everything the router needs.
type Deps struct {
	Config    config.Config
	Curricula *curricula.Handler
	Health    HealthInfo
}

// NewEngine builds the gin engine with middleware and routes registered.
func NewEngine(deps Deps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Logging(),
	)

	registerRoutes(engine, deps)
	return engine
}

// Addr returns a normalized listen address for the given port.
func Addr(port string) string {
	if port == "" {
		return ":8000"
	}
	if port[0] == ':' {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
