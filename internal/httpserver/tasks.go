package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"tasks-api/internal/domain"
	tasksvc "tasks-api/internal/service/task"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type createTaskRequest struct {
	UserID      int64             `json:"user_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status" binding:"omitempty,taskstatus"`
}

type updateTaskRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *domain.TaskStatus `json:"status" binding:"omitempty,taskstatus"`
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
}

func listTasksHandler(svc taskService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID *int64
		if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
			id := parsePositiveID(raw)
			if id == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
				return
			}
			userID = &id
		}

		tasks, total, err := svc.List(c.Request.Context(), userID)
		if err != nil {
			logger.Printf("list tasks: request_id=%s err=%v", c.GetString(ctxRequestID), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		if tasks == nil {
			tasks = []domain.Task{}
		}
		c.JSON(http.StatusOK, tasksResponse{Tasks: tasks, Total: total})
	}
}

func createTaskHandler(svc taskService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTaskRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
			return
		}
		// The task owner must be the user the token was checked against.
		gateUser := c.GetInt64(ctxUserID)
		if req.UserID == 0 {
			req.UserID = gateUser
		} else if req.UserID != gateUser {
			c.JSON(http.StatusForbidden, gin.H{"error": msgCSRFInvalid})
			return
		}

		task, err := svc.Create(c.Request.Context(), tasksvc.CreateInput{
			UserID:      req.UserID,
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
		})
		if err != nil {
			switch {
			case errors.Is(err, tasksvc.ErrMissingFields):
				c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, title and description are required."})
			case errors.Is(err, tasksvc.ErrInvalidStatus):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, domain.ErrAlreadyExists):
				c.JSON(http.StatusConflict, gin.H{"error": "Tasks already exist"})
			case errors.Is(err, domain.ErrUserNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			default:
				logger.Printf("create task: request_id=%s user=%d err=%v", c.GetString(ctxRequestID), req.UserID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			}
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Task created", "task": task})
	}
}

func updateTaskHandler(svc taskService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := parsePositiveID(c.Param("id"))
		if id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
			return
		}
		var req updateTaskRequest
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
			return
		}

		task, err := svc.Update(c.Request.Context(), id, domain.TaskPatch{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"message": "Task not found."})
			case errors.Is(err, tasksvc.ErrInvalidStatus):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, domain.ErrAlreadyExists):
				c.JSON(http.StatusConflict, gin.H{"error": "Tasks already exist"})
			default:
				logger.Printf("update task: request_id=%s id=%d err=%v", c.GetString(ctxRequestID), id, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error."})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully.", "task": task})
	}
}

func deleteTaskHandler(svc taskService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := parsePositiveID(c.Param("id"))
		if id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "No task found"})
				return
			}
			logger.Printf("delete task: request_id=%s id=%d err=%v", c.GetString(ctxRequestID), id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully."})
	}
}
