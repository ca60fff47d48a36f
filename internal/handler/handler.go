// Package handler holds the helpers shared by the HTTP handlers
package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/frontdesk-scheduler/internal/model"
	"github.com/jwalitptl/frontdesk-scheduler/internal/repository"
	apperrors "github.com/jwalitptl/frontdesk-scheduler/pkg/errors"
)

// Fail attaches err to the request and stops the chain. The error
// middleware writes the response.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// BindQuery binds the query string into dst, failing the request with a
// bad request error when binding or validation fails
func BindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		Fail(c, apperrors.BadRequest("invalid query parameters", err))
		return false
	}
	return true
}

// ParseDate parses an optional YYYY-MM-DD query value in loc. An empty
// value yields the zero time.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := model.ParseDate(value, loc)
	if err != nil {
		return time.Time{}, apperrors.BadRequest(err.Error(), nil)
	}
	return date, nil
}

// Today is the start of the current day of now in loc
func Today(now time.Time, loc *time.Location) time.Time {
	start, _ := repository.DayBounds(now.In(loc))
	return start
}
