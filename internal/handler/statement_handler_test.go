package handler_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bananaledger/internal/domain"
	"bananaledger/internal/export"
	"bananaledger/internal/generator"
	"bananaledger/internal/handler"
	"bananaledger/internal/ledger"
	"bananaledger/internal/service"
	"bananaledger/mocks"
)

const uberLedger = ledger.Header + "\n2024-03-01;INV1;Incasso Uber - Marzo;100020;105010;1'123.45;CHF;"

func init() {
	gin.SetMode(gin.TestMode)
}

type uploadOpts struct {
	fileName    string
	contentType string
	data        []byte
	fields      map[string]string
}

func newUploadContext(t *testing.T, opts uploadOpts) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range opts.fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if opts.fileName != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+opts.fileName+`"`)
		if opts.contentType != "" {
			hdr.Set("Content-Type", opts.contentType)
		}
		part, err := writer.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(opts.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/statements/parse", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	return c, w
}

func pdfUpload(fields map[string]string) uploadOpts {
	return uploadOpts{
		fileName:    "uber_march.pdf",
		contentType: "application/pdf",
		data:        []byte("%PDF-1.4 payout"),
		fields:      fields,
	}
}

func uberConversion() *domain.Conversion {
	return &domain.Conversion{
		Text:        uberLedger,
		Lines:       ledger.Normalize(uberLedger),
		Source:      domain.SourceUber,
		Fingerprint: "abc",
		Attempts:    1,
		ModelUsed:   "gpt-4o-mini",
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStatementHandler_Parse_JSON(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)

	svc.On("Convert", mock.Anything, mock.MatchedBy(func(in *service.ConvertInput) bool {
		return in.FileName == "uber_march.pdf" &&
			in.ContentType == "application/pdf" &&
			string(in.FileBytes) == "%PDF-1.4 payout" &&
			in.Source == "uber"
	})).Return(uberConversion(), nil)

	c, w := newUploadContext(t, pdfUpload(map[string]string{"source": "uber"}))
	h.Parse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, uberLedger, data["csv"])
	assert.Equal(t, "uber", data["source"])
	assert.Equal(t, "abc", data["fingerprint"])
	assert.Equal(t, float64(1), data["attempts"])
	assert.Equal(t, false, data["is_error_document"])
	svc.AssertExpectations(t)
}

func TestStatementHandler_Parse_SniffsGenericContentType(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)

	svc.On("Convert", mock.Anything, mock.MatchedBy(func(in *service.ConvertInput) bool {
		return in.ContentType == "application/pdf"
	})).Return(uberConversion(), nil)

	opts := pdfUpload(nil)
	opts.contentType = "application/octet-stream"
	c, w := newUploadContext(t, opts)
	h.Parse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestStatementHandler_Parse_MissingFile(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)

	c, w := newUploadContext(t, uploadOpts{fields: map[string]string{"source": "uber"}})
	h.Parse(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeResponse(t, w).Error.Code)
	svc.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything)
}

func TestStatementHandler_Parse_InvalidFormat(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)

	c, w := newUploadContext(t, pdfUpload(map[string]string{"format": "pdf"}))
	h.Parse(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FORMAT", decodeResponse(t, w).Error.Code)
	svc.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything)
}

func TestStatementHandler_Parse_TruncatesOversizeUpload(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 8)

	svc.On("Convert", mock.Anything, mock.MatchedBy(func(in *service.ConvertInput) bool {
		return len(in.FileBytes) == 9
	})).Return(nil, domain.ErrFileTooLarge)

	opts := pdfUpload(nil)
	opts.data = bytes.Repeat([]byte("x"), 64)
	c, w := newUploadContext(t, opts)
	h.Parse(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decodeResponse(t, w).Error.Code)
	svc.AssertExpectations(t)
}

func TestStatementHandler_Parse_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty document", domain.ErrEmptyDocument, http.StatusBadRequest, "EMPTY_DOCUMENT"},
		{"unsupported type", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"unprocessable", &domain.UnprocessableError{Reason: "line 2: Importo must be positive"}, http.StatusUnprocessableEntity, "UNPROCESSABLE_OUTPUT"},
		{"external", errors.Join(domain.ErrExternalService, errors.New("boom")), http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR"},
		{"timeout", domain.ErrGeneratorTimeout, http.StatusGatewayTimeout, "GENERATOR_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockConversionService)
			h := handler.NewStatementHandler(svc, 1024)
			svc.On("Convert", mock.Anything, mock.Anything).Return(nil, tt.err)

			c, w := newUploadContext(t, pdfUpload(nil))
			h.Parse(c)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestStatementHandler_Parse_RateLimitedSetsRetryAfter(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)

	rle := generator.NewRateLimitError("all", errors.New("429"), 30)
	svc.On("Convert", mock.Anything, mock.Anything).Return(nil, rle)

	c, w := newUploadContext(t, pdfUpload(nil))
	h.Parse(c)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeResponse(t, w).Error.Code)
}

func TestStatementHandler_Parse_CSVDownload(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)
	svc.On("Convert", mock.Anything, mock.Anything).Return(uberConversion(), nil)

	c, w := newUploadContext(t, pdfUpload(map[string]string{"format": "csv"}))
	h.Parse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "uber_march_")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.Bytes()
	require.True(t, len(body) >= 3)
	assert.Equal(t, export.BOM, body[:3])

	r := csv.NewReader(strings.NewReader(string(body[3:])))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Data", records[0][0])
	assert.Equal(t, "Incasso Uber - Marzo", records[1][2])
	assert.Equal(t, "1'123.45", records[1][5])
}

func TestStatementHandler_Parse_XLSXDownload(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)
	svc.On("Convert", mock.Anything, mock.Anything).Return(uberConversion(), nil)

	c, w := newUploadContext(t, pdfUpload(map[string]string{"format": "xlsx"}))
	h.Parse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Banana")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Descrizione", rows[0][2])
	assert.Equal(t, "Incasso Uber - Marzo", rows[1][2])
}

func TestStatementHandler_Parse_CSVMatchesValidatedText(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)
	text := ledger.Header + "\n" +
		`2024-03-01;INV1;Fee "Uber";100020;105010;1234.56;CHF;` + "\n" +
		"2024-02-30;INV2;Incasso Uber;100020;105010;123.45;CHF;"
	require.NoError(t, ledger.Validate(text))
	conv := &domain.Conversion{Text: text, Lines: ledger.Normalize(text), Source: domain.SourceUber, Attempts: 1}
	svc.On("Convert", mock.Anything, mock.Anything).Return(conv, nil)

	c, w := newUploadContext(t, pdfUpload(map[string]string{"format": "csv"}))
	h.Parse(c)

	require.Equal(t, http.StatusOK, w.Code)
	want := string(export.BOM) + strings.ReplaceAll(text, "\n", "\r\n") + "\r\n"
	assert.Equal(t, want, w.Body.String())
}

func TestStatementHandler_Parse_XLSXImpossibleCalendarDate(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)
	text := ledger.Header + "\n2024-02-30;INV1;Incasso Uber;100020;105010;123.45;CHF;"
	conv := &domain.Conversion{Text: text, Source: domain.SourceUber, Attempts: 1}
	svc.On("Convert", mock.Anything, mock.Anything).Return(conv, nil)

	c, w := newUploadContext(t, pdfUpload(map[string]string{"format": "xlsx"}))
	h.Parse(c)

	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	date, err := f.GetCellValue("Banana", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-30", date)
}

func TestStatementHandler_Parse_ErrorDocumentNotExported(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)

	conv := &domain.Conversion{
		Text:            "# ERRORE: manca la data di incasso",
		Source:          domain.SourceSmood,
		Attempts:        1,
		IsErrorDocument: true,
	}
	svc.On("Convert", mock.Anything, mock.Anything).Return(conv, nil)

	for _, format := range []string{"csv", "xlsx"} {
		c, w := newUploadContext(t, pdfUpload(map[string]string{"format": format}))
		h.Parse(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, format)
		assert.Equal(t, "ERROR_DOCUMENT", decodeResponse(t, w).Error.Code, format)
	}
}

func TestStatementHandler_Parse_ErrorDocumentAsJSON(t *testing.T) {
	svc := new(mocks.MockConversionService)
	h := handler.NewStatementHandler(svc, 1024)

	conv := &domain.Conversion{
		Text:            "# ERRORE: manca la data di incasso",
		Source:          domain.SourceSmood,
		Attempts:        1,
		IsErrorDocument: true,
	}
	svc.On("Convert", mock.Anything, mock.Anything).Return(conv, nil)

	c, w := newUploadContext(t, pdfUpload(nil))
	h.Parse(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]interface{})
	assert.Equal(t, true, data["is_error_document"])
	assert.Equal(t, "# ERRORE: manca la data di incasso", data["csv"])
}
