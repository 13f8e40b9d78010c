package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger is the package-level zerolog logger used throughout the application.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// InitLogger sets up the global logger with structured JSON output on stdout.
// Level is parsed from the given string ("debug", "info", "warn", "error").
func InitLogger(level, service string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true

	Logger = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// hashIPForLog keeps a short irreversible prefix so requests can be
// correlated without writing raw addresses.
func hashIPForLog(ip string) string {
	h := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(h[:])[:12]
}

// RequestLogger logs each request as one structured line. The route
// template is logged rather than the raw path.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		evt := Logger.Info()
		if status >= 500 {
			evt = Logger.Error()
		} else if status >= 400 {
			evt = Logger.Warn()
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		evt.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration_ms", time.Since(start)).
			Str("ip_hash", hashIPForLog(c.ClientIP())).
			Int("bytes_sent", c.Writer.Size()).
			Msg("request")
	}
}
