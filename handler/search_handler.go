package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookrag/service"
	"bookrag/types"
)

type SearchHandler struct {
	rag *service.RagService
}

func NewSearchHandler(rag *service.RagService) *SearchHandler {
	return &SearchHandler{
		rag: rag,
	}
}

// HandleSearch exposes raw retrieval without the LLM step, mainly for
// debugging relevance.
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "query is required",
		})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 5
	}

	matches, err := h.rag.Retrieve(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "Search failed: " + err.Error(),
		})
		return
	}

	results := make([]types.MatchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, types.MatchResult{
			ID:       m.ID(),
			Score:    m.Score(),
			Metadata: m.Metadata(),
		})
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   types.SearchResponse{Matches: results},
	})
}
