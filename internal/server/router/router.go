package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harshg28/stockroom/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(items *handlers.ItemHandler, issuances *handlers.IssuanceHandler, imports *handlers.ImportHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.POST("/items", items.Create)
	r.GET("/items", items.List)
	r.GET("/items/:id", items.Get)
	r.DELETE("/items/:id", items.Delete)
	r.GET("/items/:id/transactions", items.Transactions)
	r.POST("/items/:id/stock/add", items.AddStock)
	r.POST("/items/:id/stock/remove", items.RemoveStock)
	r.GET("/categories", items.Categories)

	r.POST("/issuances", issuances.Open)
	r.GET("/issuances", issuances.List)
	r.GET("/issuances/:id", issuances.Get)
	r.POST("/issuances/:id/receive", issuances.Close)

	r.POST("/import", imports.Run)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
