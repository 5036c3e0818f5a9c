package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bananaledger/internal/domain"
	"bananaledger/internal/service"
)

// CorrectionHandler handles the correction store endpoints.
type CorrectionHandler struct {
	correctionService service.CorrectionService
}

// NewCorrectionHandler creates a new CorrectionHandler.
func NewCorrectionHandler(correctionService service.CorrectionService) *CorrectionHandler {
	return &CorrectionHandler{correctionService: correctionService}
}

// Submit handles POST /api/v1/corrections
// @Summary Submit a correction
// @Description Store a human-approved ledger for a statement. Records are append-only and feed later prompts as examples.
// @Tags corrections
// @Accept json
// @Produce json
// @Param request body SubmitCorrectionRequest true "Correction"
// @Success 201 {object} Response{data=domain.CorrectionRecord} "Correction stored"
// @Failure 400 {object} ErrorResponseBody "Invalid request or empty correct_output"
// @Failure 500 {object} ErrorResponseBody "Internal error"
// @Router /corrections [post]
func (h *CorrectionHandler) Submit(c *gin.Context) {
	var req SubmitCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	record, err := h.correctionService.Submit(c.Request.Context(), &service.SubmitCorrectionInput{
		Source:              req.Source,
		InvoiceID:           req.InvoiceID,
		DocumentFingerprint: req.DocumentFingerprint,
		ModelOutput:         req.ModelOutput,
		CorrectOutput:       req.CorrectOutput,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, record)
}

// List handles GET /api/v1/corrections
// @Summary List recent corrections
// @Description List the most recent corrections for a source, newest first
// @Tags corrections
// @Produce json
// @Param source query string true "Statement source (smood, uber, smartbox)"
// @Param limit query int false "Maximum records to return (default 20, max 100)"
// @Success 200 {object} Response{data=[]domain.CorrectionRecord} "Corrections"
// @Failure 400 {object} ErrorResponseBody "Missing source or invalid limit"
// @Failure 500 {object} ErrorResponseBody "Internal error"
// @Router /corrections [get]
func (h *CorrectionHandler) List(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "source query parameter is required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.correctionService.ListRecent(c.Request.Context(), domain.NormalizeSource(source), limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, records)
}
