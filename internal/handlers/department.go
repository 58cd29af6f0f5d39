package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tdminh/hrm-backend/internal/logging"
	"github.com/tdminh/hrm-backend/internal/models"
	"github.com/tdminh/hrm-backend/internal/mykafka"
)

type DepartmentHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type departmentRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Phone       string `json:"phone"`
}

// departmentPatch uses pointers so an omitted field is distinguishable from
// a zero and leaves the stored value untouched.
type departmentPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Phone       *string `json:"phone"`
}

func (h *DepartmentHandler) GetDepartments(c echo.Context) error {
	ctx := c.Request().Context()

	var departments []models.Department
	if err := h.DB.WithContext(ctx).Order("id").Find(&departments).Error; err != nil {
		logging.FromContext(ctx).Error("department list failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list departments")
	}
	return c.JSON(http.StatusOK, departments)
}

func (h *DepartmentHandler) GetDepartment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var department models.Department
	if err := h.DB.WithContext(ctx).First(&department, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "department not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get department")
	}
	return c.JSON(http.StatusOK, department)
}

func (h *DepartmentHandler) CreateDepartment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "department.create")

	var req departmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Code == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code and name are required")
	}

	department := models.Department{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Phone:       req.Phone,
	}
	tx := h.DB.WithContext(ctx).Where("code = ?", req.Code).FirstOrCreate(&department)
	if tx.Error != nil {
		l.Error("create_failed", "status", 500, "error", tx.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create department")
	}
	if tx.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusConflict, "department already exists")
	}

	publish(c, h.Producer, "hr_events", department.Code, map[string]any{
		"type": "department_created",
		"code": department.Code,
	})

	return c.JSON(http.StatusCreated, department)
}

func (h *DepartmentHandler) UpdateDepartment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var department models.Department
	if err := h.DB.WithContext(ctx).First(&department, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "department not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update department")
	}

	var req departmentPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name != nil {
		if *req.Name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "name must not be empty")
		}
		department.Name = *req.Name
	}
	if req.Description != nil {
		department.Description = *req.Description
	}
	if req.Location != nil {
		department.Location = *req.Location
	}
	if req.Phone != nil {
		department.Phone = *req.Phone
	}

	if err := h.DB.WithContext(ctx).Save(&department).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update department")
	}
	return c.JSON(http.StatusOK, department)
}

func (h *DepartmentHandler) DeleteDepartment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := h.DB.WithContext(ctx).Delete(&models.Department{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete department")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "department not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "department deleted successfully"})
}
