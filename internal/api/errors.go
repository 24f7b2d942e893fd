package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"candlestore/pkg/candle"
	"candlestore/pkg/candlefile"

	"github.com/gin-gonic/gin"
)

// errorKinds maps error sentinels to a status code and a stable kind string,
// checked in order.
var errorKinds = []struct {
	target error
	status int
	kind   string
}{
	{candle.ErrNotFound, http.StatusNotFound, "not_found"},
	{candle.ErrAlreadyExists, http.StatusConflict, "already_exists"},
	{candle.ErrUnsupportedTimeframe, http.StatusBadRequest, "unsupported_timeframe"},
	{candle.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{candle.ErrNoData, http.StatusUnprocessableEntity, "no_data"},
	{candle.ErrNoValidTimeframes, http.StatusUnprocessableEntity, "no_valid_timeframes"},
	{candle.ErrNoCandles, http.StatusUnprocessableEntity, "no_candles"},
	{candle.ErrNetwork, http.StatusBadGateway, "network"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
	{candle.ErrIO, http.StatusInternalServerError, "io"},
}

// classify returns the HTTP status and kind for err.
func classify(err error) (int, string) {
	var fe *candlefile.FormatError
	if errors.As(err, &fe) {
		return http.StatusBadRequest, strings.ReplaceAll(fe.Kind.String(), " ", "_")
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.status, k.kind
		}
	}
	return http.StatusInternalServerError, "internal"
}

// SendErrorResponse sends a standardized error response
func SendErrorResponse(c *gin.Context, statusCode int, kind, message string) {
	c.JSON(statusCode, gin.H{"error": message, "kind": kind})
}

func sendError(c *gin.Context, err error) {
	status, kind := classify(err)
	_ = c.Error(err)
	SendErrorResponse(c, status, kind, err.Error())
}
