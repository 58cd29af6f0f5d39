package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null"             json:"username"`
	PasswordHash string    `gorm:"not null"                    json:"-"`
	Role         string    `gorm:"not null;default:user"       json:"role"`
	IsVerified   bool      `gorm:"default:false"               json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Employee struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Code             string     `gorm:"uniqueIndex;not null"     json:"code"`
	Name             string     `gorm:"not null"                 json:"name"`
	PositionCode     string     `gorm:"index;not null"           json:"position_code"`
	DepartmentCode   string     `gorm:"index;not null"           json:"department_code"`
	ContractCode     string     `gorm:"index"                    json:"contract_code"`
	EducationLevelID string     `json:"education_level_id"`
	Salary           float64    `gorm:"not null"                 json:"salary"`
	Gender           string     `gorm:"default:Male"             json:"gender"`
	DateOfBirth      time.Time  `json:"date_of_birth"`
	PlaceOfBirth     string     `json:"place_of_birth"`
	IDNumber         string     `json:"id_number"`
	IDCardDate       *time.Time `json:"id_card_date"`
	IDCardPlace      string     `json:"id_card_place"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address"`
	Email            string     `gorm:"index"                    json:"email"`
	MaritalStatus    string     `gorm:"default:Single"           json:"marital_status"`
	Ethnicity        string     `json:"ethnicity"`
	HealthInsurance  string     `json:"health_insurance"`
	SocialInsurance  string     `json:"social_insurance"`
	ProfileImageID   string     `json:"profile_image_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Department struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string `gorm:"uniqueIndex;not null"     json:"code"`
	Name        string `gorm:"not null"                 json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Phone       string `json:"phone"`
}

type Position struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Code  string `gorm:"uniqueIndex;not null"     json:"code"`
	Title string `gorm:"not null"                 json:"title"`
}

type Education struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID     uint   `gorm:"index;not null"           json:"employee_id"`
	DegreeName     string `gorm:"not null"                 json:"degree_name"`
	School         string `json:"school"`
	Major          string `json:"major"`
	GraduationYear string `json:"graduation_year"`
	Ranking        string `json:"ranking"`
}

type Contract struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code       string    `gorm:"uniqueIndex;not null"     json:"code"`
	EmployeeID uint      `gorm:"index;not null"           json:"employee_id"`
	Type       string    `gorm:"not null"                 json:"type"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	BaseSalary float64   `json:"base_salary"`
	Status     string    `gorm:"default:active"           json:"status"`
}

type Payroll struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID uint      `gorm:"index;not null"           json:"employee_id"`
	Month      time.Time `gorm:"index;not null"           json:"month"`
	BaseSalary float64   `gorm:"not null"                 json:"base_salary"`
	Allowance  float64   `gorm:"default:0"                json:"allowance"`
	Deduction  float64   `gorm:"default:0"                json:"deduction"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Attendance struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"                json:"id"`
	EmployeeID uint      `gorm:"not null;uniqueIndex:idx_attendance_day" json:"employee_id"`
	Date       time.Time `gorm:"not null;uniqueIndex:idx_attendance_day" json:"date"`
	Status     string    `gorm:"not null"                                json:"status"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type WorkPoint struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeID uint      `gorm:"index;not null"           json:"employee_id"`
	Year       int       `gorm:"not null"                 json:"year"`
	Month      int       `gorm:"not null"                 json:"month"`
	Day        int       `gorm:"not null"                 json:"day"`
	Points     float64   `gorm:"default:1"                json:"points"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
