package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meteohub/weatherstation/api/auth"
	"github.com/meteohub/weatherstation/api/models"
	"github.com/meteohub/weatherstation/database"
)

func tagFilterFromQuery(c *gin.Context) (database.TagFilter, bool) {
	assignedOnly, err := boolParam(c.DefaultQuery("assigned_only", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "The 'assigned_only' parameter must be an integer."})
		return database.TagFilter{}, false
	}
	return database.TagFilter{AssignedOnly: assignedOnly}, true
}

// ListLocations returns the caller's locations, optionally restricted to
// the ones assigned to a sensor.
func (h *Handler) ListLocations(c *gin.Context) {
	filter, ok := tagFilterFromQuery(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	locations, err := h.db.ListLocations(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

// CreateLocation creates a location owned by the caller.
func (h *Handler) CreateLocation(c *gin.Context) {
	var req models.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := auth.CurrentUser(c)
	location, err := h.db.CreateLocation(c.Request.Context(), user.ID, req.Name)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, location)
}

// GetLocation returns one of the caller's locations.
func (h *Handler) GetLocation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	location, err := h.db.GetLocation(c.Request.Context(), user.ID, id)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

// UpdateLocation renames one of the caller's locations. PUT and PATCH are
// equivalent here since name is the only writable field.
func (h *Handler) UpdateLocation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := auth.CurrentUser(c)
	location, err := h.db.UpdateLocation(c.Request.Context(), user.ID, id, req.Name)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, location)
}

// DeleteLocation deletes one of the caller's locations; sensors referencing
// it are detached, not deleted.
func (h *Handler) DeleteLocation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	if err := h.db.DeleteLocation(c.Request.Context(), user.ID, id); err != nil {
		respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSensorTypes returns the caller's sensor types, optionally restricted
// to the ones assigned to a sensor.
func (h *Handler) ListSensorTypes(c *gin.Context) {
	filter, ok := tagFilterFromQuery(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	sensorTypes, err := h.db.ListSensorTypes(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sensorTypes)
}

// CreateSensorType creates a sensor type owned by the caller.
func (h *Handler) CreateSensorType(c *gin.Context) {
	var req models.SensorTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := auth.CurrentUser(c)
	sensorType, err := h.db.CreateSensorType(c.Request.Context(), user.ID, req.Name, req.Unit)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sensorType)
}

// GetSensorType returns one of the caller's sensor types.
func (h *Handler) GetSensorType(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	sensorType, err := h.db.GetSensorType(c.Request.Context(), user.ID, id)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sensorType)
}

// UpdateSensorType updates one of the caller's sensor types. PUT requires
// the name, PATCH applies only the provided fields.
func (h *Handler) UpdateSensorType(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.SensorTypeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if c.Request.Method == http.MethodPut {
		if req.Name == nil {
			c.JSON(http.StatusBadRequest, gin.H{"name": "this field is required"})
			return
		}
		if req.Unit == nil {
			empty := ""
			req.Unit = &empty
		}
	}
	user := auth.CurrentUser(c)
	sensorType, err := h.db.UpdateSensorType(c.Request.Context(), user.ID, id, database.SensorTypeUpdate{
		Name: req.Name,
		Unit: req.Unit,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sensorType)
}

// DeleteSensorType deletes one of the caller's sensor types; sensors
// referencing it are detached, not deleted.
func (h *Handler) DeleteSensorType(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	if err := h.db.DeleteSensorType(c.Request.Context(), user.ID, id); err != nil {
		respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
