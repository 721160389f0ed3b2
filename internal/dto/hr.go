package dto

import (
	"time"
)

// EmploymentType — внутреннее перечисление типов занятости.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContractor EmploymentType = "contractor"
	EmploymentIntern     EmploymentType = "intern"
)

// EmployeeStatus — внутреннее перечисление статусов сотрудника.
type EmployeeStatus string

const (
	EmployeeActive     EmployeeStatus = "active"
	EmployeeInactive   EmployeeStatus = "inactive"
	EmployeeTerminated EmployeeStatus = "terminated"
)

// PositionStatus — внутреннее перечисление статусов вакансии.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionOnHold PositionStatus = "on_hold"
	PositionClosed PositionStatus = "closed"
)

// HREmployee — нормализованная запись сотрудника из внешней HR-системы.
// ID — нативный идентификатор вендора, ключ идемпотентности для upsert.
type HREmployee struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	JobTitle       string         `json:"job_title"`
	Department     string         `json:"department"`
	EmploymentType EmploymentType `json:"employment_type"`
	Status         EmployeeStatus `json:"status"`
	HireDate       time.Time      `json:"hire_date"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// HRDepartment — нормализованная запись подразделения.
type HRDepartment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
	Head     string `json:"head,omitempty"`
}

// HRJobPosition — нормализованная запись вакансии.
type HRJobPosition struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Department string         `json:"department"`
	Location   string         `json:"location,omitempty"`
	Status     PositionStatus `json:"status"`
	OpenedAt   time.Time      `json:"opened_at"`
}
