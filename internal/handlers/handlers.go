// Package handlers exposes the HTTP and websocket surface of the API
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unionhub/unionhub-api/internal/response"
	"github.com/unionhub/unionhub-api/internal/validation"
)

// uuidParam parses the named path parameter, answering 400 when it is not a UUID
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := validation.ParseUUID(c.Param(name), name)
	if err != nil {
		response.BadRequestError(c, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// statusFor maps a domain error onto a response, returning false when err is unknown
func statusFor(c *gin.Context, err error, known map[error]func(*gin.Context, string)) bool {
	for target, send := range known {
		if errors.Is(err, target) {
			send(c, err.Error())
			return true
		}
	}
	return false
}
