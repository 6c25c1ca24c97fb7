package models

import (
	"time"

	"gorm.io/gorm"
)

// Dashboard is a named arrangement of chart widgets. Layout stores the
// JSON-encoded widget grid as the frontend submits it; the server treats it
// as opaque.
type Dashboard struct {
	gorm.Model
	Name                 string `gorm:"size:100;not null" json:"name"`
	Description          string `gorm:"type:text" json:"description"`
	Layout               string `gorm:"type:text" json:"-"`
	IsPublic             bool   `json:"is_public"`
	PublicToken          string `gorm:"size:64;index" json:"public_token,omitempty"`
	PublicTokenExpiresAt *time.Time
	PublicAccessCount    int
	OwnerID              uint `gorm:"index;not null"`
}

// ShareActive reports whether the dashboard currently has a usable public
// share token.
func (d *Dashboard) ShareActive(now time.Time) bool {
	if !d.IsPublic || d.PublicToken == "" {
		return false
	}
	return d.PublicTokenExpiresAt == nil || d.PublicTokenExpiresAt.After(now)
}
