package handler

import "github.com/taskflow/task-manager/internal/core/domain"

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// messageResponse is the body of confirmations and errors.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Categories ---

type categoryRequest struct {
	Name string `json:"name"`
}

// --- Tasks ---

type createTaskRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"dueDate"     validate:"required"`
	Priority    string `json:"priority"    validate:"required,oneof=low medium high"`
	Status      string `json:"status"      validate:"required,oneof=pending in-progress completed"`
	Category    string `json:"category"    validate:"required"`
}

// patchTaskRequest lists the mutable task fields. Absent keys stay nil and
// leave the stored value untouched; unknown keys are ignored.
type patchTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Status      *string `json:"status"      validate:"omitempty,oneof=pending in-progress completed"`
	Category    *string `json:"category"`
}

type listTasksQuery struct {
	Status   string `query:"status"`
	Priority string `query:"priority"`
	Category string `query:"category"`
	Search   string `query:"search"`
}
