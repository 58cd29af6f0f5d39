package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/tdminh/hrm-backend/internal/mykafka"
)

func TestCreatePayrollComputesNetSalary(t *testing.T) {
	db := initTestDB(t)
	eh := &EmployeeHandler{DB: db, Producer: &mykafka.Producer{}}
	h := &PayrollHandler{DB: db, Producer: &mykafka.Producer{}}

	employee := createEmployee(t, eh, "EMP001", "Nguyen Van A")

	e := echo.New()
	body := fmt.Sprintf(`{
		"employee_id": %d,
		"month": "2025-06-01",
		"base_salary": 2000,
		"allowance": 300,
		"deduction": 150
	}`, employee.ID)
	c, rec := jsonContext(e, http.MethodPost, "/api/v1/payrolls", body)
	require.NoError(t, h.CreatePayroll(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var out payrollResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, float64(2150), out.NetSalary)
	require.Equal(t, "Nguyen Van A", out.EmployeeName)
}

func TestCreatePayrollUnknownEmployee(t *testing.T) {
	h := &PayrollHandler{DB: initTestDB(t), Producer: &mykafka.Producer{}}

	e := echo.New()
	c, _ := jsonContext(e, http.MethodPost, "/api/v1/payrolls",
		`{"employee_id": 42, "month": "2025-06-01", "base_salary": 2000}`)
	err := h.CreatePayroll(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestCreatePayrollRejectsNegativeAmounts(t *testing.T) {
	h := &PayrollHandler{DB: initTestDB(t), Producer: &mykafka.Producer{}}

	e := echo.New()
	c, _ := jsonContext(e, http.MethodPost, "/api/v1/payrolls",
		`{"employee_id": 1, "month": "2025-06-01", "base_salary": 2000, "deduction": -5}`)
	err := h.CreatePayroll(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestUpdatePayrollKeepsOmittedFields(t *testing.T) {
	db := initTestDB(t)
	eh := &EmployeeHandler{DB: db, Producer: &mykafka.Producer{}}
	h := &PayrollHandler{DB: db, Producer: &mykafka.Producer{}}

	employee := createEmployee(t, eh, "EMP001", "Nguyen Van A")

	e := echo.New()
	body := fmt.Sprintf(`{
		"employee_id": %d,
		"month": "2025-06-01",
		"base_salary": 2000,
		"allowance": 300,
		"deduction": 150,
		"notes": "june run"
	}`, employee.ID)
	c, rec := jsonContext(e, http.MethodPost, "/api/v1/payrolls", body)
	require.NoError(t, h.CreatePayroll(c))

	var created payrollResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// A one-field patch must leave every other field as stored.
	c, rec = jsonContext(e, http.MethodPatch, "/", `{"base_salary": 2500}`)
	c.SetPath("/api/v1/payrolls/:id")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))
	require.NoError(t, h.UpdatePayroll(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated payrollResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, float64(2500), updated.BaseSalary)
	require.Equal(t, float64(300), updated.Allowance)
	require.Equal(t, float64(150), updated.Deduction)
	require.Equal(t, "june run", updated.Notes)
	require.Equal(t, float64(2650), updated.NetSalary)

	// An explicit zero is still applied.
	c, rec = jsonContext(e, http.MethodPatch, "/", `{"allowance": 0}`)
	c.SetPath("/api/v1/payrolls/:id")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))
	require.NoError(t, h.UpdatePayroll(c))

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, float64(0), updated.Allowance)
	require.Equal(t, float64(150), updated.Deduction)
}

func TestUpdatePayrollRejectsNegativeAmounts(t *testing.T) {
	db := initTestDB(t)
	eh := &EmployeeHandler{DB: db, Producer: &mykafka.Producer{}}
	h := &PayrollHandler{DB: db, Producer: &mykafka.Producer{}}

	employee := createEmployee(t, eh, "EMP001", "Nguyen Van A")

	e := echo.New()
	body := fmt.Sprintf(`{"employee_id": %d, "month": "2025-06-01", "base_salary": 2000}`, employee.ID)
	c, rec := jsonContext(e, http.MethodPost, "/api/v1/payrolls", body)
	require.NoError(t, h.CreatePayroll(c))

	var created payrollResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	c, _ = jsonContext(e, http.MethodPatch, "/", `{"deduction": -5}`)
	c.SetPath("/api/v1/payrolls/:id")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(created.ID))
	err := h.UpdatePayroll(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestListPayrollsFilterByEmployee(t *testing.T) {
	db := initTestDB(t)
	eh := &EmployeeHandler{DB: db, Producer: &mykafka.Producer{}}
	h := &PayrollHandler{DB: db, Producer: &mykafka.Producer{}}

	first := createEmployee(t, eh, "EMP001", "Nguyen Van A")
	second := createEmployee(t, eh, "EMP002", "Tran Thi B")

	e := echo.New()
	for _, id := range []uint{first.ID, first.ID, second.ID} {
		body := fmt.Sprintf(`{"employee_id": %d, "month": "2025-06-01", "base_salary": 1000}`, id)
		c, rec := jsonContext(e, http.MethodPost, "/api/v1/payrolls", body)
		require.NoError(t, h.CreatePayroll(c))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	c, rec := jsonContext(e, http.MethodGet, fmt.Sprintf("/api/v1/payrolls?employee_id=%d", first.ID), "")
	require.NoError(t, h.GetPayrolls(c))

	var out []payrollResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
}
