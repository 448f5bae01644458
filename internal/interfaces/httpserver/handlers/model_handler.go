package handlers

import (
	"github.com/janhq/mistralhub/internal/domain/model"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver/responses"
)

// ModelHandler serves the static model catalog.
type ModelHandler struct{}

func NewModelHandler() *ModelHandler {
	return &ModelHandler{}
}

// List returns the catalog in display order.
func (h *ModelHandler) List() responses.ModelListResponse {
	return responses.ModelListResponse{Object: "list", Data: model.All()}
}
