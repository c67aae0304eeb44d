package problem

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultType is used when a problem carries no more specific type URI.
	DefaultType = "about:blank"

	defaultTitle  = "Bad preferences error"
	defaultStatus = http.StatusBadRequest
)

// Problem is the uniform error body returned on every failure path.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func (p *Problem) Error() string {
	if p.Detail != "" {
		return p.Title + ": " + p.Detail
	}
	return p.Title
}

// New returns a problem with the service defaults (400, "Bad preferences error").
func New(detail string) *Problem {
	return &Problem{
		Type:   DefaultType,
		Title:  defaultTitle,
		Status: defaultStatus,
		Detail: detail,
	}
}

// Unauthenticated signals that no verified identity is present on the request.
func Unauthenticated(detail string) *Problem {
	return &Problem{
		Type:   DefaultType,
		Title:  "Unauthenticated",
		Status: http.StatusUnauthorized,
		Detail: detail,
	}
}

// Forbidden signals that credentials were supplied but could not be accepted.
func Forbidden(detail string) *Problem {
	return &Problem{
		Type:   DefaultType,
		Title:  "Forbidden",
		Status: http.StatusForbidden,
		Detail: detail,
	}
}

// Validation signals a malformed request body.
func Validation(detail string) *Problem {
	return &Problem{
		Type:   DefaultType,
		Title:  "Invalid preferences payload",
		Status: http.StatusBadRequest,
		Detail: detail,
	}
}

// Persistence signals a repository read or write failure.
func Persistence(detail string) *Problem {
	return &Problem{
		Type:   DefaultType,
		Title:  defaultTitle,
		Status: defaultStatus,
		Detail: detail,
	}
}

// Abort writes err as a problem document and stops the handler chain.
// Errors that are not problems are rendered with the defaults so internal
// detail never reaches the client.
func Abort(c *gin.Context, err error) {
	var p *Problem
	if !errors.As(err, &p) {
		p = New("")
	}
	c.AbortWithStatusJSON(p.Status, p)
}
