package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"finsight/internal/logger"
)

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Replace(zap.New(core).Sugar())
	t.Cleanup(func() { logger.Replace(zap.NewNop().Sugar()) })

	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/items/:id", func(c *gin.Context) {
		c.Set(UserIDKey, uint(7))
		c.Status(http.StatusNoContent)
	})

	t.Run("generates_request_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/1", http.NoBody))

		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatal("expected X-Request-ID header")
		}
		entries := logs.TakeAll()
		if len(entries) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(entries))
		}
		fields := entries[0].ContextMap()
		if fields["path"] != "/items/:id" {
			t.Errorf("expected route template path, got %v", fields["path"])
		}
		if fields["user_id"] != uint64(7) {
			t.Errorf("expected user_id 7, got %v (%T)", fields["user_id"], fields["user_id"])
		}
	})

	t.Run("reuses_valid_request_id", func(t *testing.T) {
		id := "0190b8a4-5b3e-7c1a-9f00-1234567890ab"
		req := httptest.NewRequest(http.MethodGet, "/items/1", http.NoBody)
		req.Header.Set("X-Request-ID", id)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != id {
			t.Errorf("expected %s, got %s", id, got)
		}
		logs.TakeAll()
	})
}
