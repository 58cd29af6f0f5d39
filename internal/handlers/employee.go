package handlers

import (
	"errors"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tdminh/hrm-backend/internal/logging"
	"github.com/tdminh/hrm-backend/internal/models"
	"github.com/tdminh/hrm-backend/internal/mykafka"
	"github.com/tdminh/hrm-backend/internal/service/search"
	"github.com/tdminh/hrm-backend/internal/util"
)

type EmployeeHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

type employeeRequest struct {
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	PositionCode     string  `json:"position_code"`
	DepartmentCode   string  `json:"department_code"`
	ContractCode     string  `json:"contract_code"`
	EducationLevelID string  `json:"education_level_id"`
	Salary           float64 `json:"salary"`
	Gender           string  `json:"gender"`
	DateOfBirth      string  `json:"date_of_birth"`
	PlaceOfBirth     string  `json:"place_of_birth"`
	IDNumber         string  `json:"id_number"`
	IDCardDate       string  `json:"id_card_date"`
	IDCardPlace      string  `json:"id_card_place"`
	Phone            string  `json:"phone"`
	Address          string  `json:"address"`
	Email            string  `json:"email"`
	MaritalStatus    string  `json:"marital_status"`
	Ethnicity        string  `json:"ethnicity"`
	HealthInsurance  string  `json:"health_insurance"`
	SocialInsurance  string  `json:"social_insurance"`
	ProfileImageID   string  `json:"profile_image_id"`
}

func (r *employeeRequest) toModel(employee *models.Employee) error {
	dob, err := parseDate(r.DateOfBirth)
	if err != nil {
		return errors.New("invalid date_of_birth")
	}
	idCardDate, err := parseDatePtr(r.IDCardDate)
	if err != nil {
		return errors.New("invalid id_card_date")
	}

	employee.Code = r.Code
	employee.Name = r.Name
	employee.PositionCode = r.PositionCode
	employee.DepartmentCode = r.DepartmentCode
	employee.ContractCode = r.ContractCode
	employee.EducationLevelID = r.EducationLevelID
	employee.Salary = r.Salary
	employee.Gender = r.Gender
	employee.DateOfBirth = dob
	employee.PlaceOfBirth = r.PlaceOfBirth
	employee.IDNumber = r.IDNumber
	employee.IDCardDate = idCardDate
	employee.IDCardPlace = r.IDCardPlace
	employee.Phone = r.Phone
	employee.Address = r.Address
	employee.Email = r.Email
	employee.MaritalStatus = r.MaritalStatus
	employee.Ethnicity = r.Ethnicity
	employee.HealthInsurance = r.HealthInsurance
	employee.SocialInsurance = r.SocialInsurance
	employee.ProfileImageID = r.ProfileImageID
	return nil
}

// employeePatch uses pointers so an omitted field is distinguishable from a
// zero and leaves the stored value untouched.
type employeePatch struct {
	Code             *string  `json:"code"`
	Name             *string  `json:"name"`
	PositionCode     *string  `json:"position_code"`
	DepartmentCode   *string  `json:"department_code"`
	ContractCode     *string  `json:"contract_code"`
	EducationLevelID *string  `json:"education_level_id"`
	Salary           *float64 `json:"salary"`
	Gender           *string  `json:"gender"`
	DateOfBirth      *string  `json:"date_of_birth"`
	PlaceOfBirth     *string  `json:"place_of_birth"`
	IDNumber         *string  `json:"id_number"`
	IDCardDate       *string  `json:"id_card_date"`
	IDCardPlace      *string  `json:"id_card_place"`
	Phone            *string  `json:"phone"`
	Address          *string  `json:"address"`
	Email            *string  `json:"email"`
	MaritalStatus    *string  `json:"marital_status"`
	Ethnicity        *string  `json:"ethnicity"`
	HealthInsurance  *string  `json:"health_insurance"`
	SocialInsurance  *string  `json:"social_insurance"`
	ProfileImageID   *string  `json:"profile_image_id"`
}

func (r *employeePatch) apply(employee *models.Employee) error {
	if r.DateOfBirth != nil {
		dob, err := parseDate(*r.DateOfBirth)
		if err != nil {
			return errors.New("invalid date_of_birth")
		}
		employee.DateOfBirth = dob
	}
	if r.IDCardDate != nil {
		idCardDate, err := parseDatePtr(*r.IDCardDate)
		if err != nil {
			return errors.New("invalid id_card_date")
		}
		employee.IDCardDate = idCardDate
	}
	if r.Code != nil && *r.Code != "" {
		employee.Code = *r.Code
	}
	if r.Name != nil && *r.Name != "" {
		employee.Name = *r.Name
	}
	if r.PositionCode != nil {
		employee.PositionCode = *r.PositionCode
	}
	if r.DepartmentCode != nil {
		employee.DepartmentCode = *r.DepartmentCode
	}
	if r.ContractCode != nil {
		employee.ContractCode = *r.ContractCode
	}
	if r.EducationLevelID != nil {
		employee.EducationLevelID = *r.EducationLevelID
	}
	if r.Salary != nil {
		employee.Salary = *r.Salary
	}
	if r.Gender != nil {
		employee.Gender = *r.Gender
	}
	if r.PlaceOfBirth != nil {
		employee.PlaceOfBirth = *r.PlaceOfBirth
	}
	if r.IDNumber != nil {
		employee.IDNumber = *r.IDNumber
	}
	if r.IDCardPlace != nil {
		employee.IDCardPlace = *r.IDCardPlace
	}
	if r.Phone != nil {
		employee.Phone = *r.Phone
	}
	if r.Address != nil {
		employee.Address = *r.Address
	}
	if r.Email != nil {
		employee.Email = *r.Email
	}
	if r.MaritalStatus != nil {
		employee.MaritalStatus = *r.MaritalStatus
	}
	if r.Ethnicity != nil {
		employee.Ethnicity = *r.Ethnicity
	}
	if r.HealthInsurance != nil {
		employee.HealthInsurance = *r.HealthInsurance
	}
	if r.SocialInsurance != nil {
		employee.SocialInsurance = *r.SocialInsurance
	}
	if r.ProfileImageID != nil {
		employee.ProfileImageID = *r.ProfileImageID
	}
	return nil
}

// index mirrors the row into elasticsearch, best effort.
func (h *EmployeeHandler) index(c echo.Context, employee *models.Employee) {
	if h.ES == nil {
		return
	}
	if err := search.IndexEmployee(c.Request().Context(), h.ES, h.Index, employee); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index error", "employee_id", employee.ID, "error", err)
	}
}

func (h *EmployeeHandler) GetEmployees(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "employee.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.Employee{}).Count(&total).Error; err != nil {
		l.Error("list_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list employees")
	}

	var employees []models.Employee
	if err := h.DB.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&employees).Error; err != nil {
		l.Error("list_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list employees")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": employees,
		"meta": echo.Map{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *EmployeeHandler) GetEmployee(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "employee.get")

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var employee models.Employee
	if err := h.DB.WithContext(ctx).First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		l.Error("get_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get employee")
	}

	return c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) CreateEmployee(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "employee.create")

	var req employeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Code == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code and name are required")
	}

	var employee models.Employee
	if err := req.toModel(&employee); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.Employee{}).Where("code = ?", employee.Code).Count(&count).Error; err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create employee")
	}
	if count > 0 {
		return echo.NewHTTPError(http.StatusConflict, "employee already exists")
	}

	if err := h.DB.WithContext(ctx).Create(&employee).Error; err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create employee")
	}

	h.index(c, &employee)
	publish(c, h.Producer, "hr_events", employee.Code, map[string]any{
		"type":        "employee_created",
		"employee_id": employee.ID,
		"code":        employee.Code,
	})

	l.Info("create_successful", "employee_id", employee.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "employee created successfully",
		"employee": employee,
	})
}

func (h *EmployeeHandler) UpdateEmployee(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "employee.update")

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var employee models.Employee
	if err := h.DB.WithContext(ctx).First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		l.Error("update_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update employee")
	}

	var req employeePatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.apply(&employee); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.DB.WithContext(ctx).Save(&employee).Error; err != nil {
		l.Error("update_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update employee")
	}

	h.index(c, &employee)
	publish(c, h.Producer, "hr_events", employee.Code, map[string]any{
		"type":        "employee_updated",
		"employee_id": employee.ID,
		"code":        employee.Code,
	})

	return c.JSON(http.StatusOK, employee)
}

func (h *EmployeeHandler) DeleteEmployee(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "employee.delete")

	id, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var employee models.Employee
	if err := h.DB.WithContext(ctx).First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "employee not found")
		}
		l.Error("delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete employee")
	}

	if err := h.DB.WithContext(ctx).Delete(&employee).Error; err != nil {
		l.Error("delete_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete employee")
	}

	if h.ES != nil {
		if err := search.DeleteEmployee(ctx, h.ES, h.Index, employee.ID); err != nil {
			l.Error("es delete error", "employee_id", employee.ID, "error", err)
		}
	}
	publish(c, h.Producer, "hr_events", employee.Code, map[string]any{
		"type":        "employee_deleted",
		"employee_id": employee.ID,
		"code":        employee.Code,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "employee deleted successfully",
	})
}

// SearchEmployees serves the full-text directory search off elasticsearch.
func (h *EmployeeHandler) SearchEmployees(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "employee.search")

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search unavailable")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, employees, err := search.SearchEmployees(ctx, h.ES, h.Index, q, from, limit)
	if err != nil {
		l.Error("search_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":     total,
		"employees": employees,
	})
}
