package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// SubmitCorrectionRequest represents the correction submission body.
type SubmitCorrectionRequest struct {
	Source              string  `json:"source" binding:"required" example:"smood"`
	InvoiceID           *string `json:"invoice_id" example:"PDN-12345"`
	DocumentFingerprint *string `json:"document_fingerprint" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	ModelOutput         string  `json:"model_output" example:"Data;Fattura;Descrizione;CtDare;CtAvere;Importo;Moneta;Cod. IVA\n2024-03-01;;Uber;105010;300030;-10.00;CHF;"`
	CorrectOutput       string  `json:"correct_output" binding:"required" example:"Data;Fattura;Descrizione;CtDare;CtAvere;Importo;Moneta;Cod. IVA\n2024-03-01;;Uber;105010;300030;10.00;CHF;"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// ConversionResponse documents the JSON body returned by a statement conversion.
type ConversionResponse struct {
	CSV             string `json:"csv" example:"Data;Fattura;Descrizione;CtDare;CtAvere;Importo;Moneta;Cod. IVA\n2024-03-01;INV1;Incasso Uber - Marzo;100020;105010;123.45;CHF;"`
	Source          string `json:"source" example:"uber"`
	Fingerprint     string `json:"fingerprint" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	Attempts        int    `json:"attempts" example:"1"`
	Model           string `json:"model" example:"gpt-4o-mini"`
	IsErrorDocument bool   `json:"is_error_document" example:"false"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
