package handler

import (
	"errors"
	"net/http"

	"GymChat/internal/api/dto"
	"GymChat/internal/pkg/response"
	"GymChat/internal/service"

	"github.com/gin-gonic/gin"
)

// multipart 头部与边界的余量
const multipartOverhead = 1 << 20

type MediaHandler struct {
	media   service.MediaService
	maxSize int64
}

func NewMediaHandler(media service.MediaService, maxSize int64) *MediaHandler {
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &MediaHandler{media: media, maxSize: maxSize}
}

// Upload POST /chat/upload，成功时直接返回 {fileUrl}
func (s *MediaHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxSize+multipartOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.ErrorStatus(c, service.ErrFileTooLarge)
			return
		}
		response.ErrorStatus(c, service.ErrParamInvalid)
		return
	}
	if file.Size > s.maxSize {
		response.ErrorStatus(c, service.ErrFileTooLarge)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.ErrorStatus(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	url, err := s.media.Upload(c.Request.Context(), file.Filename, reader, file.Size)
	if err != nil {
		response.ErrorStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UploadResp{FileURL: url})
}
