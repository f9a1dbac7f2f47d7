package handlers

import (
	"errors"
	"net/http"

	"github.com/cityhall/employee-registry/internal/services"
	"github.com/cityhall/employee-registry/internal/session"
	"github.com/cityhall/employee-registry/internal/wizard"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RegistrationHandler exposes the employee registration wizard
type RegistrationHandler struct {
	service *services.RegistrationService
	logger  *logrus.Logger
}

// NewRegistrationHandler creates a new RegistrationHandler
func NewRegistrationHandler(service *services.RegistrationService, logger *logrus.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		service: service,
		logger:  logger,
	}
}

// SetFieldsRequest overwrites draft fields; a null value clears the field
type SetFieldsRequest struct {
	Fields map[wizard.Field]*string `json:"fields" binding:"required"`
}

// CaptureRequest carries the frame taken by the console camera
type CaptureRequest struct {
	Image string `json:"image" binding:"required"`
}

// Start opens a new registration
// POST /api/v1/registrations
func (h *RegistrationHandler) Start(c *gin.Context) {
	res, err := h.service.Start(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "lookup_unavailable",
			"message": "Failed to load roles, departments and sponsors",
		})
		return
	}

	c.JSON(http.StatusCreated, res)
}

// View returns the active step
// GET /api/v1/registrations/:id
func (h *RegistrationHandler) View(c *gin.Context) {
	res, err := h.service.View(c.Request.Context(), c.Param("id"))
	h.respond(c, res, err)
}

// SetFields updates the draft
// PATCH /api/v1/registrations/:id/fields
func (h *RegistrationHandler) SetFields(c *gin.Context) {
	var req SetFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	res, err := h.service.SetFields(c.Request.Context(), c.Param("id"), req.Fields)
	h.respond(c, res, err)
}

// Next moves to the following step when the active one is complete
// POST /api/v1/registrations/:id/next
func (h *RegistrationHandler) Next(c *gin.Context) {
	res, err := h.service.Next(c.Request.Context(), c.Param("id"))
	h.respond(c, res, err)
}

// Back moves to the previous step
// POST /api/v1/registrations/:id/back
func (h *RegistrationHandler) Back(c *gin.Context) {
	res, err := h.service.Back(c.Request.Context(), c.Param("id"))
	h.respond(c, res, err)
}

// OpenCamera shows the capture panel
// POST /api/v1/registrations/:id/camera/open
func (h *RegistrationHandler) OpenCamera(c *gin.Context) {
	res, err := h.service.OpenCamera(c.Request.Context(), c.Param("id"))
	h.respond(c, res, err)
}

// CloseCamera hides the capture panel
// POST /api/v1/registrations/:id/camera/close
func (h *RegistrationHandler) CloseCamera(c *gin.Context) {
	res, err := h.service.CloseCamera(c.Request.Context(), c.Param("id"))
	h.respond(c, res, err)
}

// Capture stores the employee photo
// POST /api/v1/registrations/:id/camera/capture
func (h *RegistrationHandler) Capture(c *gin.Context) {
	var req CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	res, err := h.service.Capture(c.Request.Context(), c.Param("id"), req.Image)
	h.respond(c, res, err)
}

// Submit creates the employee record
// POST /api/v1/registrations/:id/submit
func (h *RegistrationHandler) Submit(c *gin.Context) {
	res, err := h.service.Submit(c.Request.Context(), c.Param("id"))
	if err == nil {
		c.JSON(http.StatusCreated, res)
		return
	}
	h.respond(c, res, err)
}

// Abandon discards the registration
// DELETE /api/v1/registrations/:id
func (h *RegistrationHandler) Abandon(c *gin.Context) {
	if err := h.service.Abandon(c.Request.Context(), c.Param("id")); err != nil {
		h.respond(c, nil, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respond writes res, or maps err to its status. Wizard rejections still
// carry the view and notifications so the console can show the toast.
func (h *RegistrationHandler) respond(c *gin.Context, res *services.RegistrationResult, err error) {
	if err == nil {
		c.JSON(http.StatusOK, res)
		return
	}

	status, code, message := http.StatusInternalServerError, "internal_error", "Failed to process registration"
	switch {
	case errors.Is(err, session.ErrNotFound):
		status, code, message = http.StatusNotFound, "session_not_found", "Registration not found or expired"
	case errors.Is(err, wizard.ErrUnknownField):
		status, code, message = http.StatusBadRequest, "unknown_field", err.Error()
	case errors.Is(err, services.ErrInvalidPhoto):
		status, code, message = http.StatusBadRequest, "invalid_photo", err.Error()
	case errors.Is(err, wizard.ErrStepIncomplete):
		status, code, message = http.StatusUnprocessableEntity, "step_incomplete", "Required fields are missing"
	case errors.Is(err, wizard.ErrNotOnFinalStep):
		status, code, message = http.StatusConflict, "not_on_final_step", "Submit is only available on the last step"
	case errors.Is(err, wizard.ErrSubmissionInFlight):
		status, code, message = http.StatusConflict, "submission_in_flight", "A submission is already in progress"
	case errors.Is(err, wizard.ErrSubmissionFailed):
		status, code, message = http.StatusBadGateway, "submission_failed", "The employee could not be created"
	default:
		_ = c.Error(err)
	}

	body := gin.H{
		"error":   code,
		"message": message,
	}
	if res != nil {
		body["view"] = res.View
		body["notifications"] = res.Notifications
	}
	c.JSON(status, body)
}
