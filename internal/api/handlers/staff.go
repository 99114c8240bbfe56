package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tipjar/internal/model"
)

// StaffLister lists selectable staff. *staff.Directory satisfies it.
type StaffLister interface {
	List() []model.StaffMember
}

type StaffHandler struct {
	directory StaffLister
}

func NewStaffHandler(directory StaffLister) *StaffHandler {
	return &StaffHandler{directory: directory}
}

func (h *StaffHandler) List(c *gin.Context) {
	members := h.directory.List()
	if members == nil {
		members = []model.StaffMember{}
	}
	c.JSON(http.StatusOK, gin.H{"staff": members})
}
