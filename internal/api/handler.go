package api

import (
	"errors"
	"net/http"

	"candlestore/internal/ingest"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler serves the import and symbol endpoints.
type Handler struct {
	svc    *ingest.Service
	logger *zap.Logger
}

func NewHandler(svc *ingest.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type localRequest struct {
	Path string `json:"path" binding:"required"`
}

type repositoryRequest struct {
	RepoURL       string `json:"repo_url" binding:"required"`
	Branch        string `json:"branch"`
	StructureType string `json:"structure_type" binding:"required,oneof=single multi"`
	SymbolName    string `json:"symbol_name"`
}

type quoteRequest struct {
	Symbol     string   `json:"symbol" binding:"required"`
	SaveAs     string   `json:"save_as" binding:"required,symbolname"`
	StartDate  string   `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate    string   `json:"end_date" binding:"required,datetime=2006-01-02"`
	Timeframes []string `json:"timeframes" binding:"required,min=1,dive,required"`
}

type renameRequest struct {
	NewName string `json:"new_name" binding:"required,symbolname"`
}

// bindJSON binds the body and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		msg := err.Error()
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msg = "invalid field " + verrs[0].Field() + ": failed on " + verrs[0].Tag()
		}
		SendErrorResponse(c, http.StatusBadRequest, "invalid_input", msg)
		return false
	}
	return true
}

// ImportLocal imports a folder on the server host
// POST /api/import/local
func (h *Handler) ImportLocal(c *gin.Context) {
	var req localRequest
	if !bindJSON(c, &req) {
		return
	}

	sum, err := h.svc.ImportLocal(c.Request.Context(), req.Path)
	if err != nil {
		h.logger.Warn("Local import failed", zap.String("path", req.Path), zap.Error(err))
		sendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sum)
}

// ImportRepository imports CSV files from a GitHub repository
// POST /api/import/repository
func (h *Handler) ImportRepository(c *gin.Context) {
	var req repositoryRequest
	if !bindJSON(c, &req) {
		return
	}

	sum, err := h.svc.ImportRepository(c.Request.Context(), ingest.RepositoryRequest{
		URL:       req.RepoURL,
		Branch:    req.Branch,
		Structure: req.StructureType,
		Symbol:    req.SymbolName,
	})
	if err != nil {
		h.logger.Warn("Repository import failed", zap.String("repo_url", req.RepoURL), zap.Error(err))
		sendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sum)
}

// ImportQuotes downloads candles from the quote API
// POST /api/import/quotes
func (h *Handler) ImportQuotes(c *gin.Context) {
	var req quoteRequest
	if !bindJSON(c, &req) {
		return
	}

	sum, err := h.svc.ImportQuotes(c.Request.Context(), ingest.QuoteRequest{
		Ticker:     req.Symbol,
		SaveAs:     req.SaveAs,
		Start:      req.StartDate,
		End:        req.EndDate,
		Timeframes: req.Timeframes,
	})
	if err != nil {
		h.logger.Warn("Quote import failed", zap.String("ticker", req.Symbol), zap.Error(err))
		sendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sum)
}

// ListSymbols returns every stored symbol
// GET /api/symbols
func (h *Handler) ListSymbols(c *gin.Context) {
	symbols, err := h.svc.ListSymbols(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list symbols", zap.Error(err))
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, symbols)
}

// GetSymbol returns one symbol document
// GET /api/symbols/:symbol
func (h *Handler) GetSymbol(c *gin.Context) {
	rec, err := h.svc.GetSymbol(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetCandles returns the stored rows of one timeframe
// GET /api/symbols/:symbol/candles/:timeframe
func (h *Handler) GetCandles(c *gin.Context) {
	b, err := h.svc.Candles(c.Request.Context(), c.Param("symbol"), c.Param("timeframe"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/csv; charset=utf-8", b)
}

// DeleteSymbol removes a symbol and its candles
// DELETE /api/symbols/:symbol
func (h *Handler) DeleteSymbol(c *gin.Context) {
	if err := h.svc.DeleteSymbol(c.Request.Context(), c.Param("symbol")); err != nil {
		sendError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RenameSymbol moves a symbol to a new name
// POST /api/symbols/:symbol/rename
func (h *Handler) RenameSymbol(c *gin.Context) {
	var req renameRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.svc.RenameSymbol(c.Request.Context(), c.Param("symbol"), req.NewName)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
