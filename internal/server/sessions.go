package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/render"
	"github.com/joseph-ayodele/doc-explainer/internal/session"
)

const (
	ctxSession = "session"

	// MaxQuestionChars caps a chat question.
	MaxQuestionChars = 2000
)

func (s *Server) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := common.NewValidator().Field("id", id, common.UUID).Err(); err != nil {
			s.fail(c, err)
			return
		}
		sess, err := s.sessions.Get(id)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Set(ctxSession, sess)
		c.Request = c.Request.WithContext(common.WithSessionID(c.Request.Context(), sess.ID))
		c.Next()
	}
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID})
}

func (s *Server) getProgress(c *gin.Context) {
	c.JSON(http.StatusOK, current(c).Tracker().Status())
}

type explainRequest struct {
	Short bool `json:"short"`
}

type explainResponse struct {
	Explanation string `json:"explanation"`
	HTML        string `json:"html"`
	Parts       int    `json:"parts"`
}

func (s *Server) explain(c *gin.Context) {
	var req explainRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.fail(c, common.NewAppError(common.CodeInvalidInput, "Invalid request body", common.ErrInvalidInput))
			return
		}
	}
	res, err := s.proc.Explain(c.Request.Context(), current(c), req.Short)
	if err != nil {
		s.fail(c, err)
		return
	}
	html, err := render.Friendly(res.Text)
	if err != nil {
		s.logger.Warn("http.explain.render_failed", "error", err)
	}
	c.JSON(http.StatusOK, explainResponse{Explanation: res.Text, HTML: html, Parts: res.Parts})
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer     string         `json:"answer"`
	Transcript []session.Turn `json:"transcript"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.NewAppError(common.CodeInvalidInput, "Invalid request body", common.ErrInvalidInput))
		return
	}
	v := common.NewValidator().Field("question", req.Question, common.Required, common.MaxLength(MaxQuestionChars))
	if err := v.Err(); err != nil {
		s.fail(c, err)
		return
	}
	answer, transcript, err := s.proc.Ask(c.Request.Context(), current(c), req.Question)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chatResponse{Answer: answer, Transcript: transcript})
}

func (s *Server) downloadExplanation(c *gin.Context) {
	text := current(c).Explanation()
	if strings.TrimSpace(text) == "" {
		s.fail(c, common.NewAppError(common.CodeNotFound, "No explanation yet.", common.ErrNotFound))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="explanation.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (s *Server) resetSession(c *gin.Context) {
	current(c).Reset()
	c.Status(http.StatusNoContent)
}
