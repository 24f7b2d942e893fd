// Package api exposes the ingest service over HTTP for the desktop shell.
package api

import (
	"fmt"
	"net/http"
	"sync"

	"candlestore/internal/ingest"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var registerOnce sync.Once

// RegisterValidators adds the symbolname tag to gin's validator.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("symbolname", func(fl validator.FieldLevel) bool {
			return ingest.ValidSymbolName(fl.Field().String())
		})
	})
	return err
}

// NewRouter wires the handlers. events, when set, serves the progress stream;
// metrics, when set, is mounted at /metrics.
func NewRouter(svc *ingest.Service, events, metrics http.Handler, logger *zap.Logger) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	h := NewHandler(svc, logger)
	api := router.Group("/api")
	{
		imports := api.Group("/import")
		imports.POST("/local", h.ImportLocal)
		imports.POST("/repository", h.ImportRepository)
		imports.POST("/quotes", h.ImportQuotes)

		symbols := api.Group("/symbols")
		symbols.GET("", h.ListSymbols)
		symbols.GET("/:symbol", h.GetSymbol)
		symbols.GET("/:symbol/candles/:timeframe", h.GetCandles)
		symbols.DELETE("/:symbol", h.DeleteSymbol)
		symbols.POST("/:symbol/rename", h.RenameSymbol)

		if events != nil {
			api.GET("/events", gin.WrapH(events))
		}
	}
	return router, nil
}
