package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tdminh/hrm-backend/internal/models"
	"github.com/tdminh/hrm-backend/internal/mykafka"
)

func newEmployeeHandler(t *testing.T) *EmployeeHandler {
	t.Helper()
	return &EmployeeHandler{
		DB:       initTestDB(t),
		Producer: &mykafka.Producer{},
	}
}

func jsonContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func employeeBody(code, name string) string {
	return fmt.Sprintf(`{
		"code": %q,
		"name": %q,
		"position_code": "DEV",
		"department_code": "IT",
		"salary": 2500,
		"gender": "Female",
		"date_of_birth": "1995-04-12",
		"email": "%s@example.com",
		"phone": "0123456789"
	}`, code, name, strings.ToLower(code))
}

func createEmployee(t *testing.T, h *EmployeeHandler, code, name string) models.Employee {
	t.Helper()

	e := echo.New()
	c, rec := jsonContext(e, http.MethodPost, "/api/v1/employees", employeeBody(code, name))
	require.NoError(t, h.CreateEmployee(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var out struct {
		Employee models.Employee `json:"employee"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Employee
}

func TestCreateEmployee(t *testing.T) {
	h := newEmployeeHandler(t)

	employee := createEmployee(t, h, "EMP001", "Nguyen Van A")
	require.NotZero(t, employee.ID)
	require.Equal(t, "EMP001", employee.Code)
	require.Equal(t, "IT", employee.DepartmentCode)
}

func TestCreateEmployeeDuplicateCode(t *testing.T) {
	h := newEmployeeHandler(t)
	createEmployee(t, h, "EMP001", "Nguyen Van A")

	e := echo.New()
	c, _ := jsonContext(e, http.MethodPost, "/api/v1/employees", employeeBody("EMP001", "Someone Else"))
	err := h.CreateEmployee(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestCreateEmployeeInvalidDate(t *testing.T) {
	h := newEmployeeHandler(t)

	e := echo.New()
	c, _ := jsonContext(e, http.MethodPost, "/api/v1/employees",
		`{"code": "EMP002", "name": "B", "date_of_birth": "12/04/1995"}`)
	err := h.CreateEmployee(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestGetEmployee(t *testing.T) {
	h := newEmployeeHandler(t)
	created := createEmployee(t, h, "EMP001", "Nguyen Van A")

	e := echo.New()
	c, rec := jsonContext(e, http.MethodGet, "/", "")
	c.SetPath("/api/v1/employees/:id")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))

	require.NoError(t, h.GetEmployee(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Employee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, created.Code, got.Code)
}

func TestGetEmployeeNotFound(t *testing.T) {
	h := newEmployeeHandler(t)

	e := echo.New()
	c, _ := jsonContext(e, http.MethodGet, "/", "")
	c.SetPath("/api/v1/employees/:id")
	c.SetParamNames("id")
	c.SetParamValues("999")

	err := h.GetEmployee(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestListEmployeesPagination(t *testing.T) {
	h := newEmployeeHandler(t)
	for i := 1; i <= 15; i++ {
		createEmployee(t, h, fmt.Sprintf("EMP%03d", i), fmt.Sprintf("Employee %d", i))
	}

	e := echo.New()
	c, rec := jsonContext(e, http.MethodGet, "/api/v1/employees?page=2&size=10", "")
	require.NoError(t, h.GetEmployees(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data []models.Employee `json:"data"`
		Meta struct {
			Page  int   `json:"page"`
			Size  int   `json:"size"`
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Data, 5)
	require.Equal(t, 2, out.Meta.Page)
	require.Equal(t, int64(15), out.Meta.Total)
}

func TestUpdateEmployee(t *testing.T) {
	h := newEmployeeHandler(t)
	created := createEmployee(t, h, "EMP001", "Nguyen Van A")

	e := echo.New()
	c, rec := jsonContext(e, http.MethodPut, "/", employeeBody("EMP001", "Nguyen Van B"))
	c.SetPath("/api/v1/employees/:id")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))

	require.NoError(t, h.UpdateEmployee(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Employee
	require.NoError(t, h.DB.First(&got, created.ID).Error)
	require.Equal(t, "Nguyen Van B", got.Name)
}

func TestUpdateEmployeeKeepsOmittedFields(t *testing.T) {
	h := newEmployeeHandler(t)
	created := createEmployee(t, h, "EMP001", "Nguyen Van A")

	e := echo.New()
	c, rec := jsonContext(e, http.MethodPatch, "/", `{"name": "Nguyen Van B"}`)
	c.SetPath("/api/v1/employees/:id")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))

	require.NoError(t, h.UpdateEmployee(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Employee
	require.NoError(t, h.DB.First(&got, created.ID).Error)
	require.Equal(t, "Nguyen Van B", got.Name)
	require.Equal(t, "EMP001", got.Code)
	require.Equal(t, "IT", got.DepartmentCode)
	require.Equal(t, float64(2500), got.Salary)
	require.Equal(t, created.Email, got.Email)
	require.True(t, got.DateOfBirth.Equal(created.DateOfBirth))
}

func TestDeleteEmployee(t *testing.T) {
	h := newEmployeeHandler(t)
	created := createEmployee(t, h, "EMP001", "Nguyen Van A")

	e := echo.New()
	c, rec := jsonContext(e, http.MethodDelete, "/", "")
	c.SetPath("/api/v1/employees/:id")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))

	require.NoError(t, h.DeleteEmployee(c))
	require.Equal(t, http.StatusOK, rec.Code)

	err := h.DB.First(&models.Employee{}, created.ID).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSearchEmployeesWithoutBackend(t *testing.T) {
	h := newEmployeeHandler(t)

	e := echo.New()
	c, _ := jsonContext(e, http.MethodGet, "/api/v1/employees/search?q=nguyen", "")
	err := h.SearchEmployees(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusServiceUnavailable, httpErr.Code)
}
