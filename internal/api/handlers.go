package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"todo/internal/task"
)

// maxBodySize caps request bodies.
const maxBodySize = 64 << 10

type taskRequest struct {
	Title     string     `json:"title"`
	Details   string     `json:"details"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
}

type updateRequest struct {
	Title       *string    `json:"title"`
	Details     *string    `json:"details"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	ClearTimes  bool       `json:"clearTimes"`
	IsCompleted *bool      `json:"isCompleted"`
}

type sortRequest struct {
	Order string `json:"order"`
}

func (s *Server) handleList(c *gin.Context) {
	filter, err := task.ParseFilter(c.Query("filter"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	if order := c.Query("sort"); order != "" {
		o, err := task.ParseSortOrder(order)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		s.svc.SetSortOrder(o)
	}

	s.svc.Load(c.Request.Context())
	tasks := s.svc.FilteredView(filter)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tasks,
		"count":   len(tasks),
		"sort":    s.svc.SortOrder().String(),
		"filter":  filter.String(),
	})
}

func (s *Server) handleGet(c *gin.Context) {
	t, err := s.svc.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    t,
	})
}

func (s *Server) handleCreate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	created, err := s.svc.Add(c.Request.Context(), strings.TrimSpace(req.Title), req.Details, req.StartTime, req.EndTime)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    created,
	})
}

func (s *Server) handleUpdate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	t, err := s.svc.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Details != nil {
		t.Details = *req.Details
	}
	if req.ClearTimes {
		t.StartTime = nil
		t.EndTime = nil
	}
	if req.StartTime != nil {
		t.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		t.EndTime = req.EndTime
	}
	if req.IsCompleted != nil {
		t.IsCompleted = *req.IsCompleted
	}

	if err := s.svc.Update(c.Request.Context(), t); err != nil {
		s.fail(c, err)
		return
	}

	updated, err := s.svc.Get(t.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

func (s *Server) handleToggle(c *gin.Context) {
	t, err := s.svc.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.svc.ToggleCompletion(c.Request.Context(), t); err != nil {
		s.fail(c, err)
		return
	}

	updated, err := s.svc.Get(t.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

func (s *Server) handleDelete(c *gin.Context) {
	t, err := s.svc.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.svc.Delete(c.Request.Context(), t); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "task deleted",
	})
}

func (s *Server) handleSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	order, err := task.ParseSortOrder(req.Order)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	s.svc.SetSortOrder(order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.svc.FilteredView(task.FilterAll),
		"sort":    order.String(),
	})
}

// fail maps service errors to status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, task.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, task.ErrDuplicateTitle):
		status = http.StatusConflict
	case errors.Is(err, task.ErrEmptyTitle):
		status = http.StatusBadRequest
	default:
		s.logger.Printf("warning: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}
