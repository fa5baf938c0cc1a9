package logger

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RayIDKey is the fiber.Ctx local holding the request id.
const RayIDKey = "ray_id"

// New builds a zap logger from cfg. Level "debug" selects the development
// preset; anything else starts from the production preset.
func New(cfg *Config) (*zap.Logger, error) {
	level := strings.ToLower(strings.TrimSpace(cfg.Level))

	zc := zap.NewProductionConfig()
	if level == "debug" {
		zc = zap.NewDevelopmentConfig()
	} else if lvl, err := zapcore.ParseLevel(level); err == nil && level != "" {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	zc.Encoding = "json"
	zc.EncoderConfig = encoderConfig(zc.EncoderConfig)
	if strings.EqualFold(cfg.Format, "console") {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	}

	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	if cfg.Service != "" {
		l = l.With(zap.String("service", cfg.Service))
	}
	return l, nil
}

func encoderConfig(ec zapcore.EncoderConfig) zapcore.EncoderConfig {
	ec.LevelKey = "level"
	ec.TimeKey = "time"
	ec.MessageKey = "message"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder
	return ec
}

// WithRayID returns l annotated with the request's ray id, if it has one.
func WithRayID(l *zap.Logger, c *fiber.Ctx) *zap.Logger {
	if rid, ok := c.Locals(RayIDKey).(string); ok && rid != "" {
		return l.With(zap.String(RayIDKey, rid))
	}
	return l
}
