package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGinMiddlewareRecordsDuration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/bills", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bills", nil))

	count := testutil.CollectAndCount(m.httpDuration)
	if count == 0 {
		t.Fatal("expected request duration to be observed")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	if got := normalizeEndpoint(""); got != "unmatched" {
		t.Fatalf("expected unmatched, got %q", got)
	}
	if got := normalizeEndpoint("/api/bills/:id"); got != "/api/bills/:id" {
		t.Fatalf("unexpected route %q", got)
	}
}
