package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khanhvu/jobradar/internal/logger"
	"github.com/khanhvu/jobradar/internal/scheduler"
)

// AdminHandler handles manual ingestion triggers.
type AdminHandler struct {
	sched *scheduler.Scheduler
}

// NewAdminHandler creates a new admin handler.
// Parameters:
//   - sched: ingestion scheduler.
// Returns:
//   - *AdminHandler: initialized handler.
func NewAdminHandler(sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{sched: sched}
}

// triggerRequest is the optional body for a manual run.
type triggerRequest struct {
	Sources  []string `json:"sources"`
	MaxPages int      `json:"max_pages"`
}

// TriggerScrape handles POST /api/v1/admin/scrape. The run executes in the
// background; the response carries the run ID so clients can follow progress
// through the runs endpoints.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *AdminHandler) TriggerScrape(c *gin.Context) {
	var req triggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}
	}

	// The run outlives the HTTP request, so it gets a fresh context carrying
	// only the request's logger.
	ctx := logger.FromContext(c.Request.Context()).WithContext(context.Background())

	run, err := h.sched.Start(ctx, scheduler.Options{
		Trigger:  "manual",
		Sources:  req.Sources,
		MaxPages: req.MaxPages,
	})
	if err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "an ingestion run is already in progress",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to start run: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"run_id":  run.ID,
		"status":  string(run.Status),
		"sources": []string(run.Sources),
	})
}
