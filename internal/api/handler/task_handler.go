package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/core/ports"
)

const monthLayout = "2006-01"

// TaskHandler serves /tasks for the authenticated owner.
type TaskHandler struct {
	service ports.TaskService
	now     func() time.Time
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service, now: time.Now}
}

// List returns the caller's tasks, newest first.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Exact status"
// @Param        priority  query     string  false  "Exact priority"
// @Param        category  query     string  false  "Category ID"
// @Param        search    query     string  false  "Case-insensitive substring of title or description"
// @Success      200       {array}   domain.Task
// @Failure      401       {object}  messageResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var q listTasksQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	tasks, err := h.service.List(c.Request().Context(), ports.TaskFilter{
		UserID:     userID,
		Status:     q.Status,
		Priority:   q.Priority,
		CategoryID: q.Category,
		Search:     q.Search,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Create adds a task.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  messageResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	due, err := domain.ParseDueDate(req.DueDate)
	if err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		Priority:    domain.Priority(req.Priority),
		Status:      domain.TaskStatus(req.Status),
		CategoryID:  req.Category,
		UserID:      userID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// Get returns one task.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  domain.Task
// @Failure      404  {object}  messageResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Patch merges the fields present in the body.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Task ID"
// @Param        body  body      patchTaskRequest  true  "Fields to change"
// @Success      200   {object}  domain.Task
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Patch(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req patchTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	patch, err := req.toPatch()
	if err != nil {
		return err
	}

	task, err := h.service.Patch(c.Request().Context(), c.Param("id"), userID, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Delete removes a task.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted successfully"})
}

// Stats returns the dashboard counters.
//
// @Summary      Task statistics
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.TaskStats
// @Router       /tasks/stats [get]
func (h *TaskHandler) Stats(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Calendar groups the month's tasks by due day.
//
// @Summary      Task calendar
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     string  false  "Month as YYYY-MM, defaults to the current month"
// @Success      200    {array}   ports.CalendarDay
// @Failure      400    {object}  messageResponse
// @Router       /tasks/calendar [get]
func (h *TaskHandler) Calendar(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	month := h.now().UTC()
	if raw := c.QueryParam("month"); raw != "" {
		month, err = time.Parse(monthLayout, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "month must be formatted as YYYY-MM")
		}
	}

	days, err := h.service.Calendar(c.Request().Context(), userID, month)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, days)
}

func (r patchTaskRequest) toPatch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.Category,
	}
	if r.DueDate != nil {
		due, err := domain.ParseDueDate(*r.DueDate)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		patch.DueDate = &due
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		patch.Priority = &p
	}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		patch.Status = &s
	}
	return patch, nil
}
