package models

import (
	"time"

	"gorm.io/datatypes"
)

// PortalSession is one browser's storage namespace when sessions are kept in
// Postgres. Data maps storage keys (authToken, user, isFirstLogin) to values.
type PortalSession struct {
	ID        string            `gorm:"primaryKey;size:64" json:"id"`
	Data      datatypes.JSONMap `gorm:"type:jsonb;not null" json:"-"`
	ExpiresAt time.Time         `gorm:"index" json:"expires_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (PortalSession) TableName() string { return "portal_sessions" }
