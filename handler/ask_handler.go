package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookrag/service"
	"bookrag/types"
)

type AskHandler struct {
	rag *service.RagService
}

func NewAskHandler(rag *service.RagService) *AskHandler {
	return &AskHandler{
		rag: rag,
	}
}

func (h *AskHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "question is required",
		})
		return
	}

	resp, err := h.rag.Ask(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   resp,
	})
}
