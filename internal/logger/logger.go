package logger

import (
	"go-expense/internal/config"

	"go.uber.org/zap"
)

// NewLogger builds the process-wide zap logger. Development gets the console
// encoder, everything else gets production JSON.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.EncoderConfig.FunctionKey = "func"

	return zapConfig.Build(zap.AddCaller())
}
