// Package logging builds the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"

	"github.com/centum-academy/portal-api/internal/config"
)

// New returns a JSON logger in production (or when LOG_FORMAT=json) and a
// console logger otherwise.
func New(cfg *config.Config) (*zap.Logger, error) {
	format := cfg.LogFormat
	if format == "" {
		format = "console"
		if cfg.IsProduction() {
			format = "json"
		}
	}
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Encoding = format
	return zc.Build(zap.Fields(zap.String("service", "centum-portal")))
}
