package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/mistralhub/internal/interfaces/httpserver/handlers"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver/requests"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver/responses"
	"github.com/janhq/mistralhub/internal/utils/platformerrors"
)

func registerCompletionRoutes(router gin.IRoutes, handler *handlers.CompletionHandler) {
	router.POST("/chat", postChat(handler))
	router.POST("/vision", postVision(handler))
	router.POST("/document", postDocument(handler))
}

// postChat godoc
// @Summary      Stream a chat completion
// @Description  Relays the upstream completion as Server-Sent Events. Every fragment is a
// @Description  `data: {"content":"..."}` frame, the stream ends with `data: [DONE]`.
// @Description  A failure after streaming began is reported as one `data: {"error":"..."}` frame.
// @Tags         chat
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      requests.ChatRequest  true  "Conversation history and model"
// @Success      200      {string}  string  "SSE frames"
// @Failure      400      {object}  responses.ErrorResponse  "Missing required fields"
// @Failure      500      {object}  responses.ErrorResponse  "Upstream failed before streaming began"
// @Router       /chat [post]
func postChat(handler *handlers.CompletionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid request body", "0c7d4e2a-9b51-4f38-a6e0-d3f1b8c5a729")
			return
		}
		c.Set(middlewares.ContextKeyModel, req.Model)
		c.Set(middlewares.ContextKeyStream, true)

		ctx := c.Request.Context()
		cs, err := handler.OpenChatStream(ctx, req)
		if err != nil {
			responses.HandleError(c, err, "Failed to open chat stream")
			return
		}

		middlewares.PrepareSSE(c)
		handler.RelayChatStream(ctx, cs, c.Writer)
	}
}

// postVision godoc
// @Summary      Describe an image
// @Description  Sends one base64 image and an optional prompt to a vision model.
// @Tags         vision
// @Accept       json
// @Produce      json
// @Param        request  body      requests.VisionRequest  true  "Image and prompt"
// @Success      200      {object}  responses.ContentResponse
// @Failure      400      {object}  responses.ErrorResponse  "Missing required field: image"
// @Failure      500      {object}  responses.ErrorResponse  "Upstream failure or empty answer"
// @Router       /vision [post]
func postVision(handler *handlers.CompletionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.VisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid request body", "7e2b9f4c-1d63-4a85-b0c8-e5a3f7d91b26")
			return
		}
		c.Set(middlewares.ContextKeyModel, req.Model)

		result, err := handler.Vision(c.Request.Context(), req)
		if err != nil {
			responses.HandleError(c, err, "Vision request failed")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// postDocument godoc
// @Summary      Extract and question a document
// @Description  Runs OCR on a base64 PDF, then answers the prompt against the extracted text.
// @Description  `answer` is null when the prompt is empty or whitespace.
// @Tags         document
// @Accept       json
// @Produce      json
// @Param        request  body      requests.DocumentRequest  true  "Document and optional question"
// @Success      200      {object}  responses.DocumentResponse
// @Failure      400      {object}  responses.ErrorResponse  "Missing required field: document"
// @Failure      500      {object}  responses.ErrorResponse  "Upstream failure or no extracted text"
// @Router       /document [post]
func postDocument(handler *handlers.CompletionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req requests.DocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "Invalid request body", "3a8f6d1e-5c27-4b94-9e0d-b2c7a4f81e53")
			return
		}
		c.Set(middlewares.ContextKeyModel, req.Model)

		result, err := handler.Document(c.Request.Context(), req)
		if err != nil {
			responses.HandleError(c, err, "Document request failed")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
