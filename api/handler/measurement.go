package handler

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meteohub/weatherstation/api/auth"
	"github.com/meteohub/weatherstation/api/models"
	"github.com/meteohub/weatherstation/database"
)

// maxMeasurementValue bounds readings to the stored decimal(10,2) range:
// 8 integer digits and 2 fraction digits.
const maxMeasurementValue = 1e8

func measurementFilterFromQuery(c *gin.Context) (database.MeasurementFilter, bool) {
	var filter database.MeasurementFilter
	if raw := c.Query("sensors"); raw != "" {
		ids, err := paramToUints(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "All parameters need to be integers."})
			return filter, false
		}
		filter.SensorIDs = ids
	}
	if raw := c.Query("start_date"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "The 'start_date' parameter must be a date or datetime."})
			return filter, false
		}
		filter.StartDate = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "The 'end_date' parameter must be a date or datetime."})
			return filter, false
		}
		filter.EndDate = &t
	}
	latest, err := boolParam(c.DefaultQuery("latest", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "The 'latest' parameter must be an integer."})
		return filter, false
	}
	filter.Latest = latest
	return filter, true
}

func validMeasurementValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) < maxMeasurementValue
}

// ListMeasurements returns the caller's measurements in the compact list
// projection, filtered by sensors, date bounds and the latest switch.
func (h *Handler) ListMeasurements(c *gin.Context) {
	filter, ok := measurementFilterFromQuery(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	measurements, err := h.db.ListMeasurements(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToMeasurementListItems(measurements))
}

// CreateMeasurement records a reading. The timestamp is assigned by the
// server; a sensor id owned by a different user is a validation error.
func (h *Handler) CreateMeasurement(c *gin.Context) {
	var req models.MeasurementWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Value == nil {
		c.JSON(http.StatusBadRequest, gin.H{"value": "this field is required"})
		return
	}
	if req.Sensor == nil {
		c.JSON(http.StatusBadRequest, gin.H{"sensor": "this field is required"})
		return
	}
	if !validMeasurementValue(*req.Value) {
		c.JSON(http.StatusBadRequest, gin.H{"value": "ensure the value fits 10 digits with 2 decimal places"})
		return
	}

	user := auth.CurrentUser(c)
	measurement, err := h.db.CreateMeasurement(c.Request.Context(), user.ID, *req.Value, *req.Sensor)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.ToMeasurementDetail(measurement))
}

// GetMeasurement returns one of the caller's measurements in the full
// projection.
func (h *Handler) GetMeasurement(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	measurement, err := h.db.GetMeasurement(c.Request.Context(), user.ID, id)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToMeasurementDetail(measurement))
}

// UpdateMeasurement updates one of the caller's measurements. PUT requires
// value and sensor, PATCH changes only the provided fields. The timestamp
// is immutable and reassigning to another user's sensor fails validation
// without touching the row.
func (h *Handler) UpdateMeasurement(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.MeasurementWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if c.Request.Method == http.MethodPut {
		if req.Value == nil {
			c.JSON(http.StatusBadRequest, gin.H{"value": "this field is required"})
			return
		}
		if req.Sensor == nil {
			c.JSON(http.StatusBadRequest, gin.H{"sensor": "this field is required"})
			return
		}
	}
	if req.Value != nil && !validMeasurementValue(*req.Value) {
		c.JSON(http.StatusBadRequest, gin.H{"value": "ensure the value fits 10 digits with 2 decimal places"})
		return
	}

	user := auth.CurrentUser(c)
	measurement, err := h.db.UpdateMeasurement(c.Request.Context(), user.ID, id, database.MeasurementUpdate{
		Value:    req.Value,
		SensorID: req.Sensor,
	})
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToMeasurementDetail(measurement))
}

// DeleteMeasurement deletes one of the caller's measurements.
func (h *Handler) DeleteMeasurement(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	user := auth.CurrentUser(c)
	if err := h.db.DeleteMeasurement(c.Request.Context(), user.ID, id); err != nil {
		respondStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
