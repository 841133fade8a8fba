package controllers

import (
	"net/http"

	"github.com/nivash/building-service/internal/services"
	"github.com/nivash/building-service/internal/utils"
)

type AnnouncementController struct {
	announcementService *services.AnnouncementService
}

func NewAnnouncementController(s *services.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{announcementService: s}
}

// GET /api/v1/announcements
func (c *AnnouncementController) ListAnnouncementsHandler(w http.ResponseWriter, r *http.Request) {
	announcements, err := c.announcementService.List(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, announcements)
}
