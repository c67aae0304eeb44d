package domain

import (
	"encoding/json"
	"time"
)

// Preferences is the preference document owned by a single user. Properties
// is opaque JSON: the service stores and returns it without inspecting it.
type Preferences struct {
	UserID     string
	Properties json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
