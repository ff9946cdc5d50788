// Package handler implements the request handlers of the weatherstation
// API. Every handler receives the acting user from the auth middleware and
// passes it explicitly into the store; rows owned by other users are
// reported as not found, never as forbidden.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/gin-gonic/gin"
	"github.com/meteohub/weatherstation/database"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type Handler struct {
	db *database.Client
}

func New(db *database.Client) *Handler {
	return &Handler{db: db}
}

// idParam parses the :id path segment. Anything that is not a positive
// integer maps to not-found, matching the behavior of an unknown id.
func idParam(c *gin.Context) (uint, bool) {
	raw := strings.TrimSuffix(c.Param("id"), "/")
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err == nil {
		if id, castErr := safecast.ToUint(parsed); castErr == nil {
			return id, true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	return 0, false
}

// paramToUints converts a comma separated list of ids into a deduplicated
// uint slice.
func paramToUints(value string) ([]uint, error) {
	parts := strings.Split(value, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		parsed, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("all parameters need to be integers")
		}
		id, err := safecast.ToUint(parsed)
		if err != nil {
			return nil, fmt.Errorf("all parameters need to be integers")
		}
		ids = append(ids, id)
	}
	return lo.Uniq(ids), nil
}

// boolParam parses a 0/1 query parameter the way the filter contract
// defines it: any digit string is accepted and coerced, everything else is
// a validation error.
func boolParam(value string) (bool, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return false, fmt.Errorf("must be an integer")
	}
	return n != 0, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDateParam accepts a date or datetime string for the measurement
// range bounds.
func parseDateParam(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date or datetime")
}

// respondStoreError maps store errors to the API error taxonomy: missing or
// unowned rows are 404, cross-user references are a validation error on the
// sensor field, anything else is a server error.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, database.ErrCrossUserReference):
		c.JSON(http.StatusBadRequest, gin.H{"sensor": "invalid id - object does not exist"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
