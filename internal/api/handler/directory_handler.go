package handler

import (
	"GymChat/internal/pkg/response"
	"GymChat/internal/service"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	directory service.DirectoryService
}

func NewDirectoryHandler(directory service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// ListMembers GET /member/list
func (s *DirectoryHandler) ListMembers(c *gin.Context) {
	list, err := s.directory.ListMembers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// ListStaffMembers GET /staffmember/list
func (s *DirectoryHandler) ListStaffMembers(c *gin.Context) {
	list, err := s.directory.ListStaffMembers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
