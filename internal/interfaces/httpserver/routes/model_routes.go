package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janhq/mistralhub/internal/interfaces/httpserver/handlers"
)

func registerModelRoutes(router gin.IRoutes, handler *handlers.ModelHandler) {
	router.GET("/models", listModels(handler))
}

// listModels godoc
// @Summary      List models
// @Description  Returns the static model catalog with capability flags.
// @Tags         models
// @Produce      json
// @Success      200  {object}  responses.ModelListResponse
// @Router       /models [get]
func listModels(handler *handlers.ModelHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.List())
	}
}
