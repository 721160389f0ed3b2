package dto

import (
	"time"
)

// User — локальная учётная запись, с которой сверяются записи сотрудников.
type User struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Phone      *string        `json:"phone,omitempty"`
	JobTitle   *string        `json:"job_title,omitempty"`
	Department *string        `json:"department,omitempty"`
	Status     EmployeeStatus `json:"status"`
	VendorID   *string        `json:"vendor_id,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Department — локальная запись подразделения.
type Department struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendor_id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Job — локальная запись вакансии.
type Job struct {
	ID         string         `json:"id"`
	VendorID   string         `json:"vendor_id"`
	Title      string         `json:"title"`
	Department *string        `json:"department,omitempty"`
	Location   *string        `json:"location,omitempty"`
	Status     PositionStatus `json:"status"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
