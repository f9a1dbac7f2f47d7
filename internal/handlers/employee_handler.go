package handlers

import (
	"bytes"
	"net/http"
	"slices"

	"github.com/cityhall/employee-registry/internal/models"
	"github.com/cityhall/employee-registry/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EmployeeHandler struct {
	service *services.EmployeeService
	logger  *logrus.Logger
}

func NewEmployeeHandler(service *services.EmployeeService, logger *logrus.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service: service,
		logger:  logger,
	}
}

// ListEmployees returns the filtered employee list with its counters
// GET /api/v1/employees?search=&department_id=&contract_type=
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	filter, ok := bindEmployeeFilter(c)
	if !ok {
		return
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list employees")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "list_failed",
			"message": "Failed to fetch employees",
		})
		return
	}

	c.JSON(http.StatusOK, list)
}

// ExportEmployees downloads the filtered employee list as a spreadsheet
// GET /api/v1/employees/export
func (h *EmployeeHandler) ExportEmployees(c *gin.Context) {
	filter, ok := bindEmployeeFilter(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), filter, &buf); err != nil {
		h.logger.WithError(err).Error("Failed to export employees")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "export_failed",
			"message": "Failed to export employees",
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="funcionarios.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func bindEmployeeFilter(c *gin.Context) (models.EmployeeFilter, bool) {
	var filter models.EmployeeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return filter, false
	}

	if filter.ContractType != "" && !slices.Contains(models.ContractTypes, filter.ContractType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_contract_type",
			"message": "contract_type must be efetivo, comissionado or temporario",
		})
		return filter, false
	}
	return filter, true
}
