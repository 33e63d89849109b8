package http

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/barbershop-backend/internal/file"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/request"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
}

func NewHandler(fileService file.Service) *Handler {
	return &Handler{
		fileService: fileService,
	}
}

// ServeFile streams the file content by ID.
func (h *Handler) ServeFile(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid file id", err)
		return
	}

	stream, info, err := h.fileService.Download(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	h.stream(c, stream, info.ContentType, info.Filename)
}

// ServeThumbnail streams the JPEG thumbnail of an image file.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid file id", err)
		return
	}

	stream, info, err := h.fileService.DownloadThumbnail(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	h.stream(c, stream, "image/jpeg", info.Filename+"_thumb.jpg")
}

func (h *Handler) stream(c *gin.Context, body io.Reader, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, body); err != nil {
		// Headers are already sent.
		zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("file stream interrupted")
	}
}
