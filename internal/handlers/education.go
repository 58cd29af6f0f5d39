package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tdminh/hrm-backend/internal/models"
)

type EducationHandler struct {
	DB *gorm.DB
}

type educationRequest struct {
	EmployeeID     uint   `json:"employee_id"`
	DegreeName     string `json:"degree_name"`
	School         string `json:"school"`
	Major          string `json:"major"`
	GraduationYear string `json:"graduation_year"`
	Ranking        string `json:"ranking"`
}

// educationPatch uses pointers so an omitted field is distinguishable from
// a zero and leaves the stored value untouched.
type educationPatch struct {
	DegreeName     *string `json:"degree_name"`
	School         *string `json:"school"`
	Major          *string `json:"major"`
	GraduationYear *string `json:"graduation_year"`
	Ranking        *string `json:"ranking"`
}

func (h *EducationHandler) GetEducations(c echo.Context) error {
	ctx := c.Request().Context()

	q := h.DB.WithContext(ctx).Order("id")
	if employeeID := c.QueryParam("employee_id"); employeeID != "" {
		q = q.Where("employee_id = ?", employeeID)
	}

	var educations []models.Education
	if err := q.Find(&educations).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list educations")
	}
	return c.JSON(http.StatusOK, educations)
}

func (h *EducationHandler) GetEducation(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var education models.Education
	if err := h.DB.WithContext(ctx).First(&education, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "education not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get education")
	}
	return c.JSON(http.StatusOK, education)
}

func (h *EducationHandler) CreateEducation(c echo.Context) error {
	ctx := c.Request().Context()

	var req educationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.EmployeeID == 0 || req.DegreeName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "employee_id and degree_name are required")
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", req.EmployeeID).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create education")
	}
	if count == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "employee not found")
	}

	education := models.Education{
		EmployeeID:     req.EmployeeID,
		DegreeName:     req.DegreeName,
		School:         req.School,
		Major:          req.Major,
		GraduationYear: req.GraduationYear,
		Ranking:        req.Ranking,
	}
	if err := h.DB.WithContext(ctx).Create(&education).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create education")
	}
	return c.JSON(http.StatusCreated, education)
}

func (h *EducationHandler) UpdateEducation(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var education models.Education
	if err := h.DB.WithContext(ctx).First(&education, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "education not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update education")
	}

	var req educationPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.DegreeName != nil {
		if *req.DegreeName == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "degree_name must not be empty")
		}
		education.DegreeName = *req.DegreeName
	}
	if req.School != nil {
		education.School = *req.School
	}
	if req.Major != nil {
		education.Major = *req.Major
	}
	if req.GraduationYear != nil {
		education.GraduationYear = *req.GraduationYear
	}
	if req.Ranking != nil {
		education.Ranking = *req.Ranking
	}

	if err := h.DB.WithContext(ctx).Save(&education).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update education")
	}
	return c.JSON(http.StatusOK, education)
}

func (h *EducationHandler) DeleteEducation(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := h.DB.WithContext(ctx).Delete(&models.Education{}, id)
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete education")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "education not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "education deleted successfully"})
}
