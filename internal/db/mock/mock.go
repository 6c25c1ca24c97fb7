package mock

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "kaleido/internal/log"
	"kaleido/internal/theme"
	"kaleido/models"
)

// New returns an in-memory sqlite database seeded with representative
// analytics-workspace data. Used when the server runs without a configured
// PostgreSQL instance.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	db, err := gorm.Open(sqlite.Open("file:kaleido-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Dashboard{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte("insights"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	analyst := &models.User{
		Name:            "Robin Vale",
		Email:           "robin@kaleido.app",
		PasswordHash:    string(password),
		ThemePreference: string(theme.Dark),
	}
	if err := db.WithContext(ctx).Create(analyst).Error; err != nil {
		return err
	}

	customColors := theme.Colors{
		BgPrimary:       "#11131a",
		BgSecondary:     "#1b1e29",
		BgTertiary:      "#262a38",
		TextPrimary:     "#f2f4f8",
		TextSecondary:   "#c3c9d6",
		TextMuted:       "#7b8394",
		AccentPrimary:   "#7c6cf2",
		AccentSecondary: "#9b8ef7",
		AccentHover:     "#b6acfa",
		BorderPrimary:   "#2e3342",
		BorderSecondary: "#3c4254",
		Success:         "#45d483",
		Warning:         "#f5b54a",
		Error:           "#ef6767",
		Info:            "#4cb8f0",
	}
	encoded, err := json.Marshal(customColors)
	if err != nil {
		return err
	}

	designer := &models.User{
		Name:              "Sam Okafor",
		Email:             "sam@kaleido.app",
		PasswordHash:      string(password),
		ThemePreference:   string(theme.Custom),
		CustomThemeColors: string(encoded),
	}
	if err := db.WithContext(ctx).Create(designer).Error; err != nil {
		return err
	}

	dashboards := []models.Dashboard{
		{
			Name:        "Revenue Overview",
			Description: "Monthly recurring revenue with regional breakdown.",
			Layout:      `{"widgets":[{"id":"w1","chart":"line","x":0,"y":0,"w":8,"h":4},{"id":"w2","chart":"pie","x":8,"y":0,"w":4,"h":4}]}`,
			OwnerID:     analyst.ID,
		},
		{
			Name:        "Signup Funnel",
			Description: "Acquisition funnel from visit to activation.",
			Layout:      `{"widgets":[{"id":"w1","chart":"bar","x":0,"y":0,"w":12,"h":5}]}`,
			OwnerID:     analyst.ID,
		},
	}
	for i := range dashboards {
		if err := db.WithContext(ctx).Create(&dashboards[i]).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded",
		"users", 2,
		"dashboards", len(dashboards),
	)
	return nil
}
