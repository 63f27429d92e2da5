package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-explainer/constants"
	"github.com/joseph-ayodele/doc-explainer/internal/common"
)

type documentResponse struct {
	Kind     string   `json:"kind"`
	Method   string   `json:"method"`
	Pages    int      `json:"pages"`
	Chars    int      `json:"chars"`
	Warnings []string `json:"warnings"`
}

// uploadDocument accepts a multipart "file" and/or a "text" form value and
// extracts the file immediately.
func (s *Server) uploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	var (
		name string
		data []byte
	)
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			s.fail(c, common.NewAppError(common.CodeInvalidInput, "Could not read upload", common.ErrInvalidInput))
			return
		}
		data, err = io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			s.fail(c, common.NewAppError(common.CodeInvalidInput, "Could not read upload", common.ErrInvalidInput))
			return
		}
		name = fh.Filename
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "File too large", Code: common.CodeInvalidInput})
			return
		}
		s.fail(c, common.NewAppError(common.CodeInvalidInput, "Invalid upload", common.ErrInvalidInput))
		return
	}
	pasted := c.PostForm("text")

	res, err := s.proc.Ingest(c.Request.Context(), current(c), name, data, pasted)
	if err != nil {
		s.fail(c, err)
		return
	}
	warnings := res.Warnings
	if w := contentMismatch(name, data); w != "" {
		warnings = append(warnings, w)
	}
	if warnings == nil {
		warnings = []string{}
	}
	c.JSON(http.StatusOK, documentResponse{
		Kind:     res.Kind.String(),
		Method:   string(res.Method),
		Pages:    res.Pages,
		Chars:    res.Chars,
		Warnings: warnings,
	})
}

// contentMismatch sniffs data and returns a warning when it does not look
// like the kind its name claims. Detection stays name based.
func contentMismatch(name string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	kind := constants.DetectKind(name)
	m := mimetype.Detect(data)
	ok := true
	switch kind {
	case constants.PDF:
		ok = m.Is("application/pdf")
	case constants.DOCX:
		ok = m.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document") || m.Is("application/zip")
	case constants.Image:
		ok = strings.HasPrefix(m.String(), "image/")
	}
	if ok {
		return ""
	}
	return fmt.Sprintf("%s looks like %s, not %s", name, m.String(), kind)
}
