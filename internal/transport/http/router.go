package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tdminh/hrm-backend/internal/blocklist"
	"github.com/tdminh/hrm-backend/internal/handlers"
	authmw "github.com/tdminh/hrm-backend/internal/middleware/auth"
	"github.com/tdminh/hrm-backend/internal/models"
)

type Deps struct {
	DB                *gorm.DB
	Blocklist         blocklist.Registry
	AuthMW            *authmw.Middleware
	AuthHandler       *handlers.AuthHandler
	EmployeeHandler   *handlers.EmployeeHandler
	DepartmentHandler *handlers.DepartmentHandler
	PositionHandler   *handlers.PositionHandler
	EducationHandler  *handlers.EducationHandler
	ContractHandler   *handlers.ContractHandler
	PayrollHandler    *handlers.PayrollHandler
	AttendanceHandler *handlers.AttendanceHandler
	WorkPointHandler  *handlers.WorkPointHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		if _, err := d.Blocklist.Contains(ctx, "readyz"); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	anyRole := d.AuthMW.RequireAccess(models.RoleAdmin, models.RoleUser)
	adminOnly := d.AuthMW.RequireAccess(models.RoleAdmin)

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/refresh", d.AuthHandler.Refresh)
	auth.GET("/logout", d.AuthHandler.Logout)
	auth.GET("/me", d.AuthHandler.Me, anyRole)

	employees := v1.Group("/employees", anyRole)
	employees.GET("", d.EmployeeHandler.GetEmployees)
	employees.GET("/search", d.EmployeeHandler.SearchEmployees)
	employees.GET("/:id", d.EmployeeHandler.GetEmployee)
	employees.POST("", d.EmployeeHandler.CreateEmployee)
	employees.PATCH("/:id", d.EmployeeHandler.UpdateEmployee)
	employees.DELETE("/:id", d.EmployeeHandler.DeleteEmployee)

	departments := v1.Group("/departments")
	departments.GET("", d.DepartmentHandler.GetDepartments, anyRole)
	departments.GET("/:id", d.DepartmentHandler.GetDepartment, anyRole)
	departments.POST("", d.DepartmentHandler.CreateDepartment, adminOnly)
	departments.PATCH("/:id", d.DepartmentHandler.UpdateDepartment, adminOnly)
	departments.DELETE("/:id", d.DepartmentHandler.DeleteDepartment, adminOnly)

	positions := v1.Group("/positions")
	positions.GET("", d.PositionHandler.GetPositions, anyRole)
	positions.GET("/:id", d.PositionHandler.GetPosition, anyRole)
	positions.POST("", d.PositionHandler.CreatePosition, adminOnly)
	positions.PATCH("/:id", d.PositionHandler.UpdatePosition, adminOnly)
	positions.DELETE("/:id", d.PositionHandler.DeletePosition, adminOnly)

	educations := v1.Group("/educations", anyRole)
	educations.GET("", d.EducationHandler.GetEducations)
	educations.GET("/:id", d.EducationHandler.GetEducation)
	educations.POST("", d.EducationHandler.CreateEducation)
	educations.PATCH("/:id", d.EducationHandler.UpdateEducation)
	educations.DELETE("/:id", d.EducationHandler.DeleteEducation)

	contracts := v1.Group("/contracts", anyRole)
	contracts.GET("", d.ContractHandler.GetContracts)
	contracts.GET("/:id", d.ContractHandler.GetContract)
	contracts.POST("", d.ContractHandler.CreateContract)
	contracts.PATCH("/:id", d.ContractHandler.UpdateContract)
	contracts.DELETE("/:id", d.ContractHandler.DeleteContract)

	payrolls := v1.Group("/payrolls")
	payrolls.GET("", d.PayrollHandler.GetPayrolls, anyRole)
	payrolls.GET("/:id", d.PayrollHandler.GetPayroll, anyRole)
	payrolls.POST("", d.PayrollHandler.CreatePayroll, adminOnly)
	payrolls.PATCH("/:id", d.PayrollHandler.UpdatePayroll, adminOnly)
	payrolls.DELETE("/:id", d.PayrollHandler.DeletePayroll, adminOnly)

	attendances := v1.Group("/attendances", anyRole)
	attendances.GET("", d.AttendanceHandler.GetAttendance)
	attendances.POST("", d.AttendanceHandler.MarkAttendance)
	attendances.DELETE("/:id", d.AttendanceHandler.DeleteAttendance)

	workpoints := v1.Group("/workpoints", anyRole)
	workpoints.GET("", d.WorkPointHandler.GetWorkPoints)
	workpoints.POST("", d.WorkPointHandler.CreateWorkPoint)
	workpoints.PATCH("/:id", d.WorkPointHandler.UpdateWorkPoint)
	workpoints.DELETE("/:id", d.WorkPointHandler.DeleteWorkPoint)
}
