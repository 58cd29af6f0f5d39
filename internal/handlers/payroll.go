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

type PayrollHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type payrollRequest struct {
	EmployeeID uint    `json:"employee_id"`
	Month      string  `json:"month"`
	BaseSalary float64 `json:"base_salary"`
	Allowance  float64 `json:"allowance"`
	Deduction  float64 `json:"deduction"`
	Notes      string  `json:"notes"`
}

// payrollPatch uses pointers so an omitted field is distinguishable from a
// zero and leaves the stored value untouched.
type payrollPatch struct {
	Month      *string  `json:"month"`
	BaseSalary *float64 `json:"base_salary"`
	Allowance  *float64 `json:"allowance"`
	Deduction  *float64 `json:"deduction"`
	Notes      *string  `json:"notes"`
}

type payrollResponse struct {
	models.Payroll
	EmployeeName string  `json:"employee_name"`
	NetSalary    float64 `json:"net_salary"`
}

func (h *PayrollHandler) toResponse(c echo.Context, payroll models.Payroll) payrollResponse {
	var employee models.Employee
	name := "N/A"
	if err := h.DB.WithContext(c.Request().Context()).First(&employee, payroll.EmployeeID).Error; err == nil {
		name = employee.Name
	}
	return payrollResponse{
		Payroll:      payroll,
		EmployeeName: name,
		NetSalary:    payroll.BaseSalary + payroll.Allowance - payroll.Deduction,
	}
}

func (h *PayrollHandler) GetPayrolls(c echo.Context) error {
	ctx := c.Request().Context()

	q := h.DB.WithContext(ctx).Order("id")
	if employeeID := c.QueryParam("employee_id"); employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}

	var payrolls []models.Payroll
	if err := q.Find(&payrolls).Error; err != nil {
		logging.FromContext(ctx).Error("payroll list failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list payrolls")
	}

	out := make([]payrollResponse, len(payrolls))
	for i, p := range payrolls {
		out[i] = h.toResponse(c, p)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PayrollHandler) GetPayroll(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var payroll models.Payroll
	if err := h.DB.WithContext(ctx).First(&payroll, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "payroll not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get payroll")
	}
	return c.JSON(http.StatusOK, h.toResponse(c, payroll))
}

func (h *PayrollHandler) CreatePayroll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payroll.create")

	var req payrollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.EmployeeID == 0 || req.BaseSalary <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "employee_id and positive base_salary are required")
	}
	if req.Allowance < 0 || req.Deduction < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "allowance and deduction must not be negative")
	}

	month, err := parseDate(req.Month)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", req.EmployeeID).Count(&count).Error; err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create payroll")
	}
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "employee not found")
	}

	payroll := models.Payroll{
		EmployeeID: req.EmployeeID,
		Month:      month,
		BaseSalary: req.BaseSalary,
		Allowance:  req.Allowance,
		Deduction:  req.Deduction,
		Notes:      req.Notes,
	}
	if err := h.DB.WithContext(ctx).Create(&payroll).Error; err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create payroll")
	}

	publish(c, h.Producer, "hr_events", req.Month, map[string]any{
		"type":        "payroll_created",
		"payroll_id":  payroll.ID,
		"employee_id": payroll.EmployeeID,
	})

	return c.JSON(http.StatusCreated, h.toResponse(c, payroll))
}

func (h *PayrollHandler) UpdatePayroll(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var payroll models.Payroll
	if err := h.DB.WithContext(ctx).First(&payroll, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "payroll not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update payroll")
	}

	var req payrollPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.BaseSalary != nil {
		if *req.BaseSalary <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "base_salary must be positive")
		}
		payroll.BaseSalary = *req.BaseSalary
	}
	if req.Allowance != nil {
		if *req.Allowance < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "allowance must not be negative")
		}
		payroll.Allowance = *req.Allowance
	}
	if req.Deduction != nil {
		if *req.Deduction < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "deduction must not be negative")
		}
		payroll.Deduction = *req.Deduction
	}
	if req.Notes != nil {
		payroll.Notes = *req.Notes
	}
	if req.Month != nil {
		month, err := parseDate(*req.Month)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
		}
		payroll.Month = month
	}

	if err := h.DB.WithContext(ctx).Save(&payroll).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update payroll")
	}
	return c.JSON(http.StatusOK, h.toResponse(c, payroll))
}

func (h *PayrollHandler) DeletePayroll(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := h.DB.WithContext(ctx).Delete(&models.Payroll{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete payroll")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "payroll not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payroll deleted successfully"})
}
