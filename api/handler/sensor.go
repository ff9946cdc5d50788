package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meteohub/weatherstation/api/auth"
	"github.com/meteohub/weatherstation/api/models"
	"github.com/meteohub/weatherstation/database"
)

func sensorFilterFromQuery(c *gin.Context) (database.SensorFilter, bool) {
	var filter database.SensorFilter
	if raw := c.Query("locations"); raw != "" {
		ids, err := paramToUints(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "All parameters need to be integers."})
			return filter, false
		}
		filter.LocationIDs = ids
	}
	if raw := c.Query("sensor_types"); raw != "" {
		ids, err := paramToUints(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "All parameters need to be integers."})
			return filter, false
		}
		filter.SensorTypeIDs = ids
	}
	return filter, true
}

// ListSensors returns the caller's sensors in the compact list projection,
// optionally filtered by location and sensor type ids.
func (h *Handler) ListSensors(c *gin.Context) {
	filter, ok := sensorFilterFromQuery(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	sensors, err := h.db.ListSensors(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToSensorListItems(sensors))
}

// resolveTagRefs turns the nested sensor_type and location payloads into tag
// ids owned by the acting user, creating missing tags on the fly.
func (h *Handler) resolveTagRefs(c *gin.Context, userID uint, req *models.SensorWriteRequest) (sensorTypeID, locationID *uint, ok bool) {
	if req.SensorType.Set && req.SensorType.Value != nil {
		sensorType, err := h.db.GetOrCreateSensorType(c.Request.Context(), userID, req.SensorType.Value.Name, req.SensorType.Value.Unit)
		if err != nil {
			respondStoreError(c, err)
			return nil, nil, false
		}
		sensorTypeID = &sensorType.ID
	}
	if req.Location.Set && req.Location.Value != nil {
		location, err := h.db.GetOrCreateLocation(c.Request.Context(), userID, req.Location.Value.Name)
		if err != nil {
			respondStoreError(c, err)
			return nil, nil, false
		}
		locationID = &location.ID
	}
	return sensorTypeID, locationID, true
}

func validateTagRefs(c *gin.Context, req *models.SensorWriteRequest) bool {
	if req.SensorType.Set && req.SensorType.Value != nil && req.SensorType.Value.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"sensor_type": "name is required"})
		return false
	}
	if req.Location.Set && req.Location.Value != nil && req.Location.Value.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"location": "name is required"})
		return false
	}
	return true
}

// CreateSensor creates a sensor owned by the caller. Nested sensor_type and
// location objects are matched against the caller's existing tags by name
// (and unit) and created when missing, so posting the same payload twice
// reuses the tag row from the first call.
func (h *Handler) CreateSensor(c *gin.Context) {
	var req models.SensorWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == nil || *req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"name": "this field is required"})
		return
	}
	if !validateTagRefs(c, &req) {
		return
	}

	user := auth.CurrentUser(c)
	sensorTypeID, locationID, ok := h.resolveTagRefs(c, user.ID, &req)
	if !ok {
		return
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}
	sensor, err := h.db.CreateSensor(c.Request.Context(), user.ID, *req.Name, description, sensorTypeID, locationID)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.ToSensorDetail(sensor))
}

// GetSensor returns one of the caller's sensors in the full projection.
func (h *Handler) GetSensor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	sensor, err := h.db.GetSensor(c.Request.Context(), user.ID, id)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToSensorDetail(sensor))
}

// UpdateSensor updates one of the caller's sensors. PUT replaces the whole
// resource (absent tag references clear the link), PATCH changes only the
// provided fields; a nested tag set to null clears the link either way.
func (h *Handler) UpdateSensor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.SensorWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if c.Request.Method == http.MethodPut {
		if req.Name == nil || *req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"name": "this field is required"})
			return
		}
		if req.Description == nil {
			empty := ""
			req.Description = &empty
		}
		// Full update: an absent reference means "no reference".
		req.SensorType.Set = true
		req.Location.Set = true
	}
	if !validateTagRefs(c, &req) {
		return
	}

	user := auth.CurrentUser(c)
	sensorTypeID, locationID, ok := h.resolveTagRefs(c, user.ID, &req)
	if !ok {
		return
	}
	sensor, err := h.db.UpdateSensor(c.Request.Context(), user.ID, id, database.SensorUpdate{
		Name:          req.Name,
		Description:   req.Description,
		SetSensorType: req.SensorType.Set,
		SensorTypeID:  sensorTypeID,
		SetLocation:   req.Location.Set,
		LocationID:    locationID,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToSensorDetail(sensor))
}

// DeleteSensor deletes one of the caller's sensors and all of its
// measurements.
func (h *Handler) DeleteSensor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	if err := h.db.DeleteSensor(c.Request.Context(), user.ID, id); err != nil {
		respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
