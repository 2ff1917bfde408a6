package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/parkpass/ticketing/internal/ticketing"
)

const actorKey = "actor"

// TokenParser turns a bearer token into the actor it names.
type TokenParser interface {
	ParseToken(token string) (ticketing.Actor, error)
}

// RequestLogger logs one line per request.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// AuthRequired resolves the bearer token and stores the actor on the context.
func AuthRequired(parser TokenParser, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			RespondWithError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization token missing.")
			return
		}

		actor, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			log.WithError(err).Debug("rejected bearer token")
			writeError(c, log, err)
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// actorFrom returns the actor stored by AuthRequired.
func actorFrom(c *gin.Context) ticketing.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return ticketing.Actor{}
	}
	actor, _ := v.(ticketing.Actor)
	return actor
}
