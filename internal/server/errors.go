package server

import (
	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// fail writes err as JSON with the status it maps to and aborts the chain.
func (s *Server) fail(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("http.handler.failed", "req_id", common.RequestIDFromContext(c.Request.Context()), "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: common.PublicMessage(err), Code: common.CodeOf(err)})
}
