package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestEnrichContextPrefersIncomingTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var traceID string
	router := gin.New()
	router.Use(Tracing("casting-agency"), EnrichContext())
	router.GET("/healthz", func(c *gin.Context) {
		traceID = GetTraceID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(TraceIDHeader, "trace-from-client")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if traceID != "trace-from-client" {
		t.Fatalf("expected client trace id, got %q", traceID)
	}
	if got := rr.Header().Get(TraceIDHeader); got != "trace-from-client" {
		t.Fatalf("expected trace id echoed, got %q", got)
	}
}

func TestRequestIDGeneratedWhenOversized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	got := rr.Header().Get(requestIDHeader)
	if got == "" || len(got) > maxRequestIDLength {
		t.Fatalf("expected a generated request id, got %q", got)
	}
}
