// Package server provides the HTTP REST API for the career compass service.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/roadmap"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrResumeNotFound indicates the requested resume analysis does not exist
type ErrResumeNotFound struct {
	ResumeID uuid.UUID
}

func (e *ErrResumeNotFound) Error() string {
	return fmt.Sprintf("resume not found: %s", e.ResumeID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		outOfRange *roadmap.ErrWeekOutOfRange
		notFound   *roadmap.ErrRoadmapNotFound
	)
	switch {
	case errors.As(err, &outOfRange):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	}

	switch err.(type) {
	case *ErrValidation:
		return http.StatusBadRequest
	case *ErrResumeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
