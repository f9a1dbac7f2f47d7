package handlers

import (
	"net/http"

	"github.com/cityhall/employee-registry/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReferenceHandler struct {
	service *services.ReferenceService
	logger  *logrus.Logger
}

func NewReferenceHandler(service *services.ReferenceService, logger *logrus.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		service: service,
		logger:  logger,
	}
}

// ListRoles GET /api/v1/roles?search=
func (h *ReferenceHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.Roles(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err, "roles")
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles, "count": len(roles)})
}

// ListDepartments GET /api/v1/departments?search=
func (h *ReferenceHandler) ListDepartments(c *gin.Context) {
	departments, err := h.service.Departments(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err, "departments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments, "count": len(departments)})
}

// ListSponsors GET /api/v1/sponsors?search=
func (h *ReferenceHandler) ListSponsors(c *gin.Context) {
	sponsors, err := h.service.Sponsors(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err, "sponsors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sponsors": sponsors, "count": len(sponsors)})
}

func (h *ReferenceHandler) fail(c *gin.Context, err error, what string) {
	h.logger.WithError(err).Errorf("Failed to list %s", what)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "list_failed",
		"message": "Failed to fetch " + what,
	})
}
