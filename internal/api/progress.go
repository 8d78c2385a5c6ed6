package api

import (
	"errors"
	"net/http"
	"strconv"

	"sidequest/internal/service"
	"sidequest/pkg/auth"
	"sidequest/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxLeaderboardLimit = 100

type progressRoutes struct {
	ps service.ProgressServiceI
	a  *auth.SessionAuth
}

func NewProgressRoutes(handler *gin.RouterGroup, ps service.ProgressServiceI, a *auth.SessionAuth) {
	r := &progressRoutes{ps: ps, a: a}

	h := handler.Group("/progress")
	h.Use(a.SessionMiddleware())
	{
		h.GET("", r.GetProgress)
		h.POST("", r.SetCompletion)
		h.GET("/summary", r.GetSummary)
		h.GET("/locations", r.GetLocationSummaries)
	}

	handler.GET("/leaderboard", a.SessionMiddleware(), r.GetLeaderboard)
}

func (r *progressRoutes) GetProgress(c *gin.Context) {
	log := logger.Logger()

	sessionUser, exists := auth.SessionUserFrom(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	progress, err := r.ps.GetProgress(c.Request.Context(), sessionUser.ID)
	if err != nil {
		log.Error("failed to get progress", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"progress": progress,
	})
}

type SetCompletionRequest struct {
	LocationName string `json:"location_name"`
	QuestText    string `json:"quest_text"`
	Completed    bool   `json:"completed"`
}

func (r *progressRoutes) SetCompletion(c *gin.Context) {
	log := logger.Logger()

	sessionUser, exists := auth.SessionUserFrom(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SetCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.LocationName == "" || req.QuestText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_name and quest_text are required"})
		return
	}

	record, err := r.ps.SetCompletion(c.Request.Context(), sessionUser.ID, req.LocationName, req.QuestText, req.Completed)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLocationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
		case errors.Is(err, service.ErrQuestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "quest not found"})
		case errors.Is(err, service.ErrDependencyNotMet):
			c.JSON(http.StatusForbidden, gin.H{"error": "complete the prerequisite quest first"})
		case errors.Is(err, service.ErrDependentCompleted):
			c.JSON(http.StatusForbidden, gin.H{"error": "a completed quest still depends on this one"})
		default:
			log.Error("failed to set completion", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update progress"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"progress": gin.H{
			"quest_id":     record.QuestID,
			"completed":    record.Completed,
			"completed_at": record.CompletedAt,
		},
	})
}

func (r *progressRoutes) GetSummary(c *gin.Context) {
	log := logger.Logger()

	sessionUser, exists := auth.SessionUserFrom(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	summary, err := r.ps.CompletionSummary(c.Request.Context(), sessionUser.ID)
	if err != nil {
		log.Error("failed to get completion summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"completed":  summary.Completed,
		"total":      summary.Total,
		"percentage": summary.Percentage,
	})
}

func (r *progressRoutes) GetLocationSummaries(c *gin.Context) {
	log := logger.Logger()

	sessionUser, exists := auth.SessionUserFrom(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	summaries, err := r.ps.LocationSummaries(c.Request.Context(), sessionUser.ID)
	if err != nil {
		log.Error("failed to get location summaries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get location summaries"})
		return
	}

	out := make([]gin.H, len(summaries))
	for i, s := range summaries {
		out[i] = gin.H{
			"location_id":         s.LocationID,
			"location_name":       s.LocationName,
			"completed":           s.Completed,
			"total":               s.Total,
			"completed_quest_ids": s.CompletedQuestIDs,
		}
	}

	c.JSON(http.StatusOK, gin.H{"locations": out})
}

func (r *progressRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	entries, err := r.ps.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	out := make([]gin.H, len(entries))
	for i, entry := range entries {
		out[i] = gin.H{
			"user_id":         entry.UserID,
			"name":            entry.DisplayName,
			"completed_count": entry.CompletedCount,
		}
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}
