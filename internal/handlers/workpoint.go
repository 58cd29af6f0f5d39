package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tdminh/hrm-backend/internal/models"
)

type WorkPointHandler struct {
	DB *gorm.DB
}

type workPointRequest struct {
	EmployeeID uint    `json:"employee_id"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	Day        int     `json:"day"`
	Points     float64 `json:"points"`
	Notes      string  `json:"notes"`
}

// workPointPatch uses pointers so an omitted field is distinguishable from
// a zero and leaves the stored value untouched.
type workPointPatch struct {
	Points *float64 `json:"points"`
	Notes  *string  `json:"notes"`
}

func (r *workPointRequest) validate() error {
	if r.EmployeeID == 0 {
		return errors.New("employee_id is required")
	}
	if r.Month < 1 || r.Month > 12 {
		return errors.New("month must be between 1 and 12")
	}
	if r.Day < 1 || r.Day > 31 {
		return errors.New("day must be between 1 and 31")
	}
	if r.Points < 0 || r.Points > 1 {
		return errors.New("points must be between 0 and 1")
	}
	return nil
}

func (h *WorkPointHandler) GetWorkPoints(c echo.Context) error {
	ctx := c.Request().Context()

	q := h.DB.WithContext(ctx).Order("id")
	if employeeID := c.QueryParam("employee_id"); employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}
	if year := c.QueryParam("year"); year != "" {
		q = q.Where("year = ?", year)
	}
	if month := c.QueryParam("month"); month != "" {
		q = q.Where("month = ?", month)
	}

	var points []models.WorkPoint
	if err := q.Find(&points).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list work points")
	}
	return c.JSON(http.StatusOK, points)
}

func (h *WorkPointHandler) CreateWorkPoint(c echo.Context) error {
	ctx := c.Request().Context()

	var req workPointRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", req.EmployeeID).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create work point")
	}
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "employee not found")
	}

	point := models.WorkPoint{
		EmployeeID: req.EmployeeID,
		Year:       req.Year,
		Month:      req.Month,
		Day:        req.Day,
		Points:     req.Points,
		Notes:      req.Notes,
	}
	if err := h.DB.WithContext(ctx).Create(&point).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create work point")
	}
	return c.JSON(http.StatusCreated, point)
}

func (h *WorkPointHandler) UpdateWorkPoint(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var point models.WorkPoint
	if err := h.DB.WithContext(ctx).First(&point, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "work point not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update work point")
	}

	var req workPointPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Points != nil {
		if *req.Points < 0 || *req.Points > 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "points must be between 0 and 1")
		}
		point.Points = *req.Points
	}
	if req.Notes != nil {
		point.Notes = *req.Notes
	}
	if err := h.DB.WithContext(ctx).Save(&point).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update work point")
	}
	return c.JSON(http.StatusOK, point)
}

func (h *WorkPointHandler) DeleteWorkPoint(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := h.DB.WithContext(ctx).Delete(&models.WorkPoint{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete work point")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "work point not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "work point deleted successfully"})
}
