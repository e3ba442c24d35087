package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qa-board/internal/auth"
	"qa-board/internal/cache"
	"qa-board/internal/domain"
)

// subjectKey is where the auth gate stores the verified user id in the gin
// context. Downstream code reads it, never re-verifies.
const subjectKey = "auth.subject"

// SubjectFrom returns the authenticated user id attached by RequireAuth.
func SubjectFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(subjectKey)
	if !ok {
		return "", false
	}
	subject, ok := v.(string)
	return subject, ok && subject != ""
}

// RequireAuth rejects requests without a valid bearer token before any
// handler runs. On success it attaches the token's subject to the context.
func RequireAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must use the Bearer scheme"})
			return
		}

		subject, err := tokens.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(subjectKey, subject)
		c.Next()
	}
}

// OwnerResolver resolves the owning user id of a live resource.
// Soft-deleted resources resolve to domain.ErrNotFound.
type OwnerResolver interface {
	Owner(ctx context.Context, id string) (string, error)
}

// RequireOwnership guards mutating routes on owned resources. It must run
// after RequireAuth; the resource id is read from the named path parameter.
func RequireOwnership(resolver OwnerResolver, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := SubjectFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		id := c.Param(idParam)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}

		owner, err := resolver.Owner(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "resource not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if owner != subject {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you do not own this resource"})
			return
		}

		c.Next()
	}
}

// RequireFeature hides a route behind a feature flag. A disabled feature
// answers 404 so the endpoint appears not to exist.
func RequireFeature(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "cannot find the requested resource"})
			return
		}
		c.Next()
	}
}

// cachedResponse holds a serialized response for cache storage.
type cachedResponse struct {
	StatusCode  int    `json:"statusCode"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type cacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cacheWriter) Write(p []byte) (int, error) {
	w.body.Write(p)
	return w.ResponseWriter.Write(p)
}

func (w *cacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheResponses serves GET responses from the cache, keyed by method, path
// and sorted query. Only 2xx responses are stored. Mutating handlers evict
// entries through cache.Invalidator.
func CacheResponses(store cache.Cache, ttl time.Duration, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cache.RequestKey(c.Request.Method, c.Request.URL.Path, c.Request.URL.Query())

		if data, err := store.Get(c.Request.Context(), key); err == nil {
			var cached cachedResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				c.Header("X-Cache", "HIT")
				c.Data(cached.StatusCode, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
			// undecodable entry, treat as a miss
		}

		writer := &cacheWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		serialized, err := json.Marshal(cachedResponse{
			StatusCode:  status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		})
		if err != nil {
			return
		}
		if err := store.Set(c.Request.Context(), key, serialized, ttl); err != nil {
			logger.WithError(err).WithField("key", key).Warn("cache store failed")
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
