package handler

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bananaledger/internal/domain"
	"bananaledger/internal/export"
	"bananaledger/internal/ledger"
	"bananaledger/internal/service"
)

// Download formats accepted by the parse endpoint.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// StatementHandler handles payout statement conversion endpoints.
type StatementHandler struct {
	conversionService service.ConversionService
	maxUploadBytes    int64
	now               func() time.Time
}

// NewStatementHandler creates a new StatementHandler. Uploads larger than
// maxUploadBytes are cut short and rejected by the conversion service.
func NewStatementHandler(conversionService service.ConversionService, maxUploadBytes int64) *StatementHandler {
	return &StatementHandler{
		conversionService: conversionService,
		maxUploadBytes:    maxUploadBytes,
		now:               time.Now,
	}
}

// Parse handles POST /api/v1/statements/parse
// @Summary Convert a payout statement
// @Description Convert a Smood, Uber Eats or Smartbox payout PDF into a Banana import ledger
// @Tags statements
// @Accept multipart/form-data
// @Produce json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param file formData file true "Payout statement (PDF)"
// @Param source formData string false "Statement source (smood, uber, smartbox); inferred from the file name when omitted"
// @Param format formData string false "Response format: json (default), csv or xlsx"
// @Success 200 {object} Response{data=ConversionResponse} "Ledger generated"
// @Failure 400 {object} ErrorResponseBody "Missing file, empty document or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Generated ledger still invalid after correction"
// @Failure 429 {object} ErrorResponseBody "All providers rate limited"
// @Failure 502 {object} ErrorResponseBody "Generation provider failed"
// @Failure 504 {object} ErrorResponseBody "Generation timed out"
// @Router /statements/parse [post]
func (h *StatementHandler) Parse(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultPostForm("format", c.Query("format"))))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV && format != FormatXLSX {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be one of: json, csv, xlsx")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	limit := h.maxUploadBytes
	var reader io.Reader = file
	if limit > 0 {
		// One extra byte lets the service tell "at the limit" from "over it".
		reader = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read uploaded file")
		return
	}

	input := &service.ConvertInput{
		FileBytes:   data,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
		FileName:    header.Filename,
		Source:      c.PostForm("source"),
	}

	conv, err := h.conversionService.Convert(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	switch format {
	case FormatCSV:
		h.download(c, conv, header.Filename, FormatCSV, contentTypeCSV, export.WriteCSV)
	case FormatXLSX:
		h.download(c, conv, header.Filename, FormatXLSX, contentTypeXLSX, export.WriteXLSX)
	default:
		RespondOK(c, conv)
	}
}

func (h *StatementHandler) download(
	c *gin.Context,
	conv *domain.Conversion,
	uploadName, ext, contentType string,
	write func(io.Writer, []string) error,
) {
	if conv.IsErrorDocument {
		HandleError(c, domain.ErrErrorDocument)
		return
	}

	lines := conv.Lines
	if len(lines) == 0 {
		lines = ledger.Normalize(conv.Text)
	}

	var buf bytes.Buffer
	if err := write(&buf, lines); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(uploadName, conv.Source, ext, h.now())
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// detectContentType trusts the part header unless it is missing or generic.
func detectContentType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared == "" || strings.HasPrefix(strings.ToLower(declared), "application/octet-stream") {
		return http.DetectContentType(data)
	}
	return declared
}
