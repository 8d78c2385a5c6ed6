package api

import (
	"errors"
	"net/http"
	"strconv"

	"sidequest/internal/middleware"
	"sidequest/internal/model"
	"sidequest/internal/service"
	"sidequest/pkg/auth"
	"sidequest/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type catalogRoutes struct {
	cs service.CatalogServiceI
	a  *auth.SessionAuth
}

func NewCatalogRoutes(handler *gin.RouterGroup, cs service.CatalogServiceI, a *auth.SessionAuth, authz *middleware.Authorization) {
	r := &catalogRoutes{cs: cs, a: a}

	// The map itself is public: the welcome page renders it before login.
	handler.GET("/map", r.GetMap)

	admin := handler.Group("/admin")
	admin.Use(a.SessionMiddleware(), authz.AdminOnly())
	{
		admin.GET("/locations", r.ListLocations)
		admin.POST("/locations", r.CreateLocation)
		admin.PUT("/locations/:location_id", r.UpdateLocation)
		admin.DELETE("/locations/:location_id", r.DeleteLocation)

		admin.GET("/quests", r.ListQuests)
		admin.POST("/quests", r.CreateQuest)
		admin.PUT("/quests/:quest_id", r.UpdateQuest)
		admin.DELETE("/quests/:quest_id", r.DeleteQuest)
	}
}

type locationResponse struct {
	LocationID int64   `json:"location_id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	X          float64 `json:"x_coordinate"`
	Y          float64 `json:"y_coordinate"`
}

type questResponse struct {
	QuestID    int64  `json:"quest_id"`
	LocationID int64  `json:"location_id"`
	Text       string `json:"text"`
	Dependency *int64 `json:"dependency"`
}

func locationOut(location *model.Location) locationResponse {
	return locationResponse{
		LocationID: location.ID,
		Name:       location.Name,
		Type:       location.Type,
		X:          location.X,
		Y:          location.Y,
	}
}

func questOut(quest *model.Quest) questResponse {
	return questResponse{
		QuestID:    quest.ID,
		LocationID: quest.LocationID,
		Text:       quest.Text,
		Dependency: quest.Dependency,
	}
}

func (r *catalogRoutes) GetMap(c *gin.Context) {
	log := logger.Logger()

	locations, quests, err := r.cs.MapData(c.Request.Context())
	if err != nil {
		log.Error("failed to get map data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get map data"})
		return
	}

	outLocations := make([]locationResponse, len(locations))
	for i, location := range locations {
		outLocations[i] = locationOut(location)
	}
	outQuests := make([]questResponse, len(quests))
	for i, quest := range quests {
		outQuests[i] = questOut(quest)
	}

	c.JSON(http.StatusOK, gin.H{
		"locations": outLocations,
		"quests":    outQuests,
	})
}

func (r *catalogRoutes) ListLocations(c *gin.Context) {
	log := logger.Logger()

	locations, err := r.cs.ListLocations(c.Request.Context())
	if err != nil {
		log.Error("failed to list locations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]locationResponse, len(locations))
	for i, location := range locations {
		out[i] = locationOut(location)
	}

	c.JSON(http.StatusOK, out)
}

type LocationRequest struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	X    float64 `json:"x_coordinate"`
	Y    float64 `json:"y_coordinate"`
}

func (r *catalogRoutes) CreateLocation(c *gin.Context) {
	log := logger.Logger()

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	created, err := r.cs.CreateLocation(c.Request.Context(), &model.Location{
		Name: req.Name,
		Type: req.Type,
		X:    req.X,
		Y:    req.Y,
	})
	if err != nil {
		log.Error("failed to create location", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, locationOut(created))
}

type UpdateLocationRequest struct {
	Name *string  `json:"name"`
	Type *string  `json:"type"`
	X    *float64 `json:"x_coordinate"`
	Y    *float64 `json:"y_coordinate"`
}

func (r *catalogRoutes) UpdateLocation(c *gin.Context) {
	log := logger.Logger()

	locationID, err := strconv.ParseInt(c.Param("location_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location_id"})
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.X != nil {
		updates["x_coordinate"] = *req.X
	}
	if req.Y != nil {
		updates["y_coordinate"] = *req.Y
	}

	updated, err := r.cs.UpdateLocation(c.Request.Context(), locationID, updates)
	if err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
			return
		}
		log.Error("failed to update location", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, locationOut(updated))
}

func (r *catalogRoutes) DeleteLocation(c *gin.Context) {
	log := logger.Logger()

	locationID, err := strconv.ParseInt(c.Param("location_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location_id"})
		return
	}

	if err := r.cs.DeleteLocation(c.Request.Context(), locationID); err != nil {
		if errors.Is(err, service.ErrLocationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
			return
		}
		log.Error("failed to delete location", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *catalogRoutes) ListQuests(c *gin.Context) {
	log := logger.Logger()

	quests, err := r.cs.ListQuests(c.Request.Context())
	if err != nil {
		log.Error("failed to list quests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]questResponse, len(quests))
	for i, quest := range quests {
		out[i] = questOut(quest)
	}

	c.JSON(http.StatusOK, out)
}

type QuestRequest struct {
	LocationID int64  `json:"location_id"`
	Text       string `json:"text"`
	Dependency *int64 `json:"dependency"`
}

func (r *catalogRoutes) CreateQuest(c *gin.Context) {
	log := logger.Logger()

	var req QuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	created, err := r.cs.CreateQuest(c.Request.Context(), &model.Quest{
		LocationID: req.LocationID,
		Text:       req.Text,
		Dependency: req.Dependency,
	})
	if err != nil {
		log.Error("failed to create quest", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, questOut(created))
}

func (r *catalogRoutes) UpdateQuest(c *gin.Context) {
	log := logger.Logger()

	questID, err := strconv.ParseInt(c.Param("quest_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest_id"})
		return
	}

	var req QuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	updated, err := r.cs.UpdateQuest(c.Request.Context(), &model.Quest{
		ID:         questID,
		LocationID: req.LocationID,
		Text:       req.Text,
		Dependency: req.Dependency,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "quest not found"})
		case errors.Is(err, service.ErrDependencyForeign),
			errors.Is(err, service.ErrDependencyCycle):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Error("failed to update quest", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, questOut(updated))
}

func (r *catalogRoutes) DeleteQuest(c *gin.Context) {
	log := logger.Logger()

	questID, err := strconv.ParseInt(c.Param("quest_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest_id"})
		return
	}

	if err := r.cs.DeleteQuest(c.Request.Context(), questID); err != nil {
		if errors.Is(err, service.ErrQuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quest not found"})
			return
		}
		log.Error("failed to delete quest", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
