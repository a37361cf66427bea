package handlers

import (
	"time"

	"github.com/pocketbase/pocketbase/core"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs every API request with its outcome. Failed requests are
// logged at warn level, the rest at debug.
func RequestLogger(logger *log.Logger) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		start := time.Now()
		err := e.Next()

		fields := log.Fields{
			"method":   e.Request.Method,
			"path":     e.Request.URL.Path,
			"status":   e.Status(),
			"duration": time.Since(start).String(),
		}
		if e.Auth != nil {
			fields["owner"] = e.Auth.Id
		}
		entry := logger.WithFields(fields)
		switch {
		case err != nil:
			entry.WithError(err).Warn("request failed")
		case e.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Debug("request")
		}
		return err
	}
}
