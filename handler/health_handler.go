package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookrag/types"
)

type HealthHandler struct {
	chunkCount int
}

func NewHealthHandler(chunkCount int) *HealthHandler {
	return &HealthHandler{chunkCount: chunkCount}
}

func (h *HealthHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: map[string]interface{}{
			"chunks": h.chunkCount,
		},
	})
}
