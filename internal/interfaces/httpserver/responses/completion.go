package responses

import "github.com/janhq/mistralhub/internal/domain/model"

// ContentResponse is the /vision reply.
type ContentResponse struct {
	Content string `json:"content" example:"A cat sitting on a windowsill."`
}

// DocumentResponse is the /document reply. Answer is null when no question was asked.
type DocumentResponse struct {
	ExtractedText string  `json:"extractedText"`
	Answer        *string `json:"answer"`
}

// ModelListResponse is the /models reply.
type ModelListResponse struct {
	Object string       `json:"object" example:"list"`
	Data   []model.Info `json:"data"`
}
