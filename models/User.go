package models

import "gorm.io/gorm"

// User represents an account that can authenticate with the platform.
// ThemePreference holds the selected theme name; CustomThemeColors carries
// the JSON-encoded palette when the preference is "custom", and is empty
// otherwise.
type User struct {
	gorm.Model
	Email             string `gorm:"uniqueIndex;not null"`
	PasswordHash      string `gorm:"not null"`
	Name              string
	ThemePreference   string `gorm:"type:varchar(20);default:light"`
	CustomThemeColors string `gorm:"type:text"`
}
