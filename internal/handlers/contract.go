package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tdminh/hrm-backend/internal/models"
)

type ContractHandler struct {
	DB *gorm.DB
}

type contractRequest struct {
	Code       string  `json:"code"`
	EmployeeID uint    `json:"employee_id"`
	Type       string  `json:"type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	BaseSalary float64 `json:"base_salary"`
	Status     string  `json:"status"`
}

func (h *ContractHandler) GetContracts(c echo.Context) error {
	ctx := c.Request().Context()

	q := h.DB.WithContext(ctx).Order("id")
	if employeeID := c.QueryParam("employee_id"); employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}

	var contracts []models.Contract
	if err := q.Find(&contracts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list contracts")
	}
	return c.JSON(http.StatusOK, contracts)
}

func (h *ContractHandler) GetContract(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var contract models.Contract
	if err := h.DB.WithContext(ctx).First(&contract, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contract not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get contract")
	}
	return c.JSON(http.StatusOK, contract)
}

func (h *ContractHandler) CreateContract(c echo.Context) error {
	ctx := c.Request().Context()

	var req contractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Code == "" || req.EmployeeID == 0 || req.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code, employee_id and type are required")
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date")
	}
	if end.Before(start) {
		return echo.NewHTTPError(http.StatusBadRequest, "end_date before start_date")
	}

	contract := models.Contract{
		Code:       req.Code,
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		StartDate:  start,
		EndDate:    end,
		BaseSalary: req.BaseSalary,
		Status:     req.Status,
	}
	tx := h.DB.WithContext(ctx).Where("code = ?", req.Code).FirstOrCreate(&contract)
	if tx.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create contract")
	}
	if tx.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusConflict, "contract already exists")
	}
	return c.JSON(http.StatusCreated, contract)
}

func (h *ContractHandler) UpdateContract(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var contract models.Contract
	if err := h.DB.WithContext(ctx).First(&contract, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "contract not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update contract")
	}

	var req contractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Type != "" {
		contract.Type = req.Type
	}
	if req.Status != "" {
		contract.Status = req.Status
	}
	if req.BaseSalary > 0 {
		contract.BaseSalary = req.BaseSalary
	}
	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date")
		}
		contract.StartDate = start
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date")
		}
		contract.EndDate = end
	}

	if err := h.DB.WithContext(ctx).Save(&contract).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update contract")
	}
	return c.JSON(http.StatusOK, contract)
}

func (h *ContractHandler) DeleteContract(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := h.DB.WithContext(ctx).Delete(&models.Contract{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete contract")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "contract not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "contract deleted successfully"})
}
