package store

import (
	"context"
	"errors"
	"time"

	"github.com/centum-academy/portal-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormBackend keeps session storage in the portal_sessions table, one row per
// browser session with the keys in a jsonb column.
type GormBackend struct {
	DB  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewGormStore(databaseURL string, ttl time.Duration) (*GormBackend, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	db, err := gorm.Open(postgres.Open(databaseURL), gormCfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.PortalSession{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Pooling sensible defaults for small VPS (tune later)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return NewGormBackend(db, ttl), nil
}

// NewGormBackend wraps an already opened connection. Migrations are the
// caller's job.
func NewGormBackend(db *gorm.DB, ttl time.Duration) *GormBackend {
	return &GormBackend{DB: db, ttl: ttl, now: time.Now}
}

func (g *GormBackend) expiry() time.Time {
	if g.ttl <= 0 {
		return g.now().Add(100 * 365 * 24 * time.Hour)
	}
	return g.now().Add(g.ttl)
}

func (g *GormBackend) Get(ctx context.Context, sid, key string) (string, error) {
	var row models.PortalSession
	err := g.DB.WithContext(ctx).Where("id = ? AND expires_at > ?", sid, g.now()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	v, ok := row.Data[key]
	if !ok {
		return "", ErrNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrCorruptValue
	}
	return s, nil
}

// Set upserts the row and merges key into the jsonb document.
func (g *GormBackend) Set(ctx context.Context, sid, key, value string) error {
	row := models.PortalSession{
		ID:        sid,
		Data:      datatypes.JSONMap{key: value},
		ExpiresAt: g.expiry(),
		UpdatedAt: g.now(),
	}
	return g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "data"}, Value: gorm.Expr("portal_sessions.data || EXCLUDED.data")},
			{Column: clause.Column{Name: "expires_at"}, Value: gorm.Expr("EXCLUDED.expires_at")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("EXCLUDED.updated_at")},
		},
	}).Create(&row).Error
}

func (g *GormBackend) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			if err := tx.Model(&models.PortalSession{}).Where("id = ?", sid).
				Update("data", gorm.Expr("data - ?", k)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteExpired drops rows whose TTL has passed.
func (g *GormBackend) DeleteExpired(ctx context.Context) (int64, error) {
	res := g.DB.WithContext(ctx).Where("expires_at < ?", g.now()).Delete(&models.PortalSession{})
	return res.RowsAffected, res.Error
}

func (g *GormBackend) Ping(ctx context.Context) error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (g *GormBackend) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
