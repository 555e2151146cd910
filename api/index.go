package handler

import (
	"context"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	config "ai-proposal-api/configs"
	"ai-proposal-api/pkg/app"
)

var (
	engine *gin.Engine
	once   sync.Once
)

// setupApp wires the application once per function instance. Environment
// variables come from the platform, so no .env file is read.
func setupApp() *gin.Engine {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)
		logger, err := app.NewLogger(os.Getenv("VERBOSE_LOGGING") == "true")
		if err != nil {
			log.Printf("logger setup failed, using no-op logger: %v", err)
			logger = zap.NewNop()
		}

		a, err := app.New(context.Background(), config.LoadConfig(), logger)
		if err != nil {
			logger.Error("application setup failed", zap.Error(err))
			engine = unavailable(err)
			return
		}
		engine = a.Handler()
	})
	return engine
}

func unavailable(cause error) *gin.Engine {
	r := gin.New()
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service is not configured", "details": cause.Error()})
	})
	return r
}

// Handler is the entry point for every request to the function.
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
