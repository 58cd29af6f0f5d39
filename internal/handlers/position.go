package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tdminh/hrm-backend/internal/logging"
	"github.com/tdminh/hrm-backend/internal/models"
)

type PositionHandler struct {
	DB *gorm.DB
}

type positionRequest struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

func (h *PositionHandler) GetPositions(c echo.Context) error {
	ctx := c.Request().Context()

	var positions []models.Position
	if err := h.DB.WithContext(ctx).Order("id").Find(&positions).Error; err != nil {
		logging.FromContext(ctx).Error("position list failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list positions")
	}
	return c.JSON(http.StatusOK, positions)
}

func (h *PositionHandler) GetPosition(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var position models.Position
	if err := h.DB.WithContext(ctx).First(&position, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "position not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get position")
	}
	return c.JSON(http.StatusOK, position)
}

func (h *PositionHandler) CreatePosition(c echo.Context) error {
	ctx := c.Request().Context()

	var req positionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Code == "" || req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code and title are required")
	}

	position := models.Position{Code: req.Code, Title: req.Title}
	tx := h.DB.WithContext(ctx).Where("code = ?", req.Code).FirstOrCreate(&position)
	if tx.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create position")
	}
	if tx.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusConflict, "position already exists")
	}
	return c.JSON(http.StatusCreated, position)
}

func (h *PositionHandler) UpdatePosition(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req positionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	var position models.Position
	if err := h.DB.WithContext(ctx).First(&position, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "position not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update position")
	}

	position.Title = req.Title
	if err := h.DB.WithContext(ctx).Save(&position).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update position")
	}
	return c.JSON(http.StatusOK, position)
}

func (h *PositionHandler) DeletePosition(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := h.DB.WithContext(ctx).Delete(&models.Position{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete position")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "position not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "position deleted successfully"})
}
