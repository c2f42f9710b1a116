package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorlink/tutorlink-api/internal/service"
	appErrors "github.com/tutorlink/tutorlink-api/pkg/errors"
	"github.com/tutorlink/tutorlink-api/pkg/response"
)

// TutorHandler wires tutor profile management to HTTP routes.
type TutorHandler struct {
	tutors *service.TutorService
}

// NewTutorHandler constructs a TutorHandler.
func NewTutorHandler(tutors *service.TutorService) *TutorHandler {
	return &TutorHandler{tutors: tutors}
}

// Get godoc
// @Summary Get tutor profile
// @Tags Tutors
// @Produce json
// @Param id path string true "Tutor ID"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id} [get]
func (h *TutorHandler) Get(c *gin.Context) {
	tutor, err := h.tutors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tutor, nil)
}

// Create godoc
// @Summary Create tutor profile
// @Tags Tutors
// @Accept json
// @Produce json
// @Param payload body service.CreateTutorRequest true "Tutor payload"
// @Success 201 {object} response.Envelope
// @Router /tutors [post]
func (h *TutorHandler) Create(c *gin.Context) {
	var req service.CreateTutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	tutor, err := h.tutors.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tutor)
}

// Update godoc
// @Summary Update tutor profile
// @Tags Tutors
// @Accept json
// @Produce json
// @Param id path string true "Tutor ID"
// @Param payload body service.UpdateTutorRequest true "Tutor payload"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id} [put]
func (h *TutorHandler) Update(c *gin.Context) {
	var req service.UpdateTutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	tutor, err := h.tutors.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tutor, nil)
}

// Deactivate godoc
// @Summary Deactivate tutor profile
// @Tags Tutors
// @Param id path string true "Tutor ID"
// @Success 204
// @Router /tutors/{id} [delete]
func (h *TutorHandler) Deactivate(c *gin.Context) {
	if err := h.tutors.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReplaceSubjects godoc
// @Summary Replace a tutor's subject list
// @Tags Tutors
// @Accept json
// @Produce json
// @Param id path string true "Tutor ID"
// @Param payload body service.ReplaceSubjectsRequest true "Subjects payload"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/subjects [put]
func (h *TutorHandler) ReplaceSubjects(c *gin.Context) {
	var req service.ReplaceSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	tutor, err := h.tutors.ReplaceSubjects(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tutor, nil)
}
