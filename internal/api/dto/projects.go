package dto

import "time"

type ProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Location    string     `json:"location,omitempty"`
	Budget      float64    `json:"budget,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

var validProjectStatuses = map[string]bool{
	"planning":  true,
	"active":    true,
	"on_hold":   true,
	"completed": true,
}

func (r ProjectRequest) Validate() []FieldError {
	var errs []FieldError

	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Project name is required"})
	} else if len(r.Name) > 200 {
		errs = append(errs, FieldError{Field: "name", Message: "Project name cannot exceed 200 characters"})
	}

	if r.Status != "" && !validProjectStatuses[r.Status] {
		errs = append(errs, FieldError{Field: "status", Message: "Status must be one of planning, active, on_hold, completed"})
	}

	if r.Budget < 0 {
		errs = append(errs, FieldError{Field: "budget", Message: "Budget cannot be negative"})
	}

	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		errs = append(errs, FieldError{Field: "endDate", Message: "End date cannot be before start date"})
	}

	return errs
}
