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

type AttendanceHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type attendanceRequest struct {
	EmployeeID uint   `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

// MarkAttendance creates or updates the record for (employee, date).
func (h *AttendanceHandler) MarkAttendance(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "attendance.mark")

	var req attendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.EmployeeID == 0 || req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "employee_id and status are required")
	}

	day, err := parseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", req.EmployeeID).Count(&count).Error; err != nil {
		l.Error("mark_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot mark attendance")
	}
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "employee not found")
	}

	var attendance models.Attendance
	err = h.DB.WithContext(ctx).
		Where("employee_id = ? AND date = ?", req.EmployeeID, day).
		First(&attendance).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		attendance = models.Attendance{
			EmployeeID: req.EmployeeID,
			Date:       day,
			Status:     req.Status,
			Notes:      req.Notes,
		}
		if err := h.DB.WithContext(ctx).Create(&attendance).Error; err != nil {
			l.Error("mark_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot mark attendance")
		}
	case err != nil:
		l.Error("mark_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot mark attendance")
	default:
		attendance.Status = req.Status
		attendance.Notes = req.Notes
		if err := h.DB.WithContext(ctx).Save(&attendance).Error; err != nil {
			l.Error("mark_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot mark attendance")
		}
	}

	publish(c, h.Producer, "attendance_events", req.Date, map[string]any{
		"type":        "attendance_marked",
		"employee_id": attendance.EmployeeID,
		"date":        req.Date,
		"status":      attendance.Status,
	})

	return c.JSON(http.StatusOK, attendance)
}

// GetAttendance lists the records for one day.
func (h *AttendanceHandler) GetAttendance(c echo.Context) error {
	ctx := c.Request().Context()

	day, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}

	var records []models.Attendance
	if err := h.DB.WithContext(ctx).Where("date = ?", day).Order("employee_id").Find(&records).Error; err != nil {
		logging.FromContext(ctx).Error("attendance list failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list attendance")
	}
	return c.JSON(http.StatusOK, records)
}

func (h *AttendanceHandler) DeleteAttendance(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := h.DB.WithContext(ctx).Delete(&models.Attendance{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete attendance")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "attendance not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "attendance deleted successfully"})
}
