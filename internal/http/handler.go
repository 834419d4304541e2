package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abenov/tenderhub-eval/internal/engine"
	"github.com/abenov/tenderhub-eval/internal/model"
	"github.com/abenov/tenderhub-eval/internal/service"
)

type Handler struct {
	sheets *service.SheetService
	log    zerolog.Logger
}

func NewHandler(sheets *service.SheetService, log zerolog.Logger) *Handler {
	return &Handler{sheets: sheets, log: log}
}

func (h *Handler) Register(router *gin.Engine) {
	router.POST("/tenders/:id/comparable-sheet/generate", h.generateSheet)
	router.GET("/tenders/:id/comparable-sheet", h.currentSheet)
	router.GET("/tenders/:id/comparable-sheet/history", h.sheetHistory)
	router.GET("/comparable-sheets/:id", h.sheetByID)
}

func (h *Handler) generateSheet(c *gin.Context) {
	tenderID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tender id"})
		return
	}

	record, err := h.sheets.Generate(c.Request.Context(), tenderID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) currentSheet(c *gin.Context) {
	tenderID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tender id"})
		return
	}

	record, err := h.sheets.Current(c.Request.Context(), tenderID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) sheetHistory(c *gin.Context) {
	tenderID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tender id"})
		return
	}

	summaries, err := h.sheets.History(c.Request.Context(), tenderID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if summaries == nil {
		summaries = []model.SheetSummary{}
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) sheetByID(c *gin.Context) {
	sheetID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sheet id"})
		return
	}

	record, err := h.sheets.SheetByID(c.Request.Context(), sheetID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrBidsNotOpened):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrDataIntegrity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("comparable sheet request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context, param string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param(param)))
}
