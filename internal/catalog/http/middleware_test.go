package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"product-catalog/internal/auth"
	authhttp "product-catalog/internal/auth/http"

	"github.com/gin-gonic/gin"
)

type stubVerifier struct{ claims auth.Claims }

func (s stubVerifier) VerifyToken(string) (auth.Claims, error) { return s.claims, nil }

func accessLogRouter(logs *bytes.Buffer, gate gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), AccessLogMiddleware(slog.New(slog.NewJSONHandler(logs, nil))))
	handlers := []gin.HandlerFunc{}
	if gate != nil {
		handlers = append(handlers, gate)
	}
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/things/:id", handlers...)
	return r
}

func decodeLogLine(t *testing.T, logs *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	if err := json.Unmarshal(logs.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, logs.String())
	}
	return line
}

func TestAccessLog_AuthenticatedRequest(t *testing.T) {
	var logs bytes.Buffer
	gate := authhttp.RequireAuth(stubVerifier{claims: auth.Claims{UserID: "u-1", Role: auth.RoleAdmin}})
	r := accessLogRouter(&logs, gate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/things/42", nil)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-Request-ID", "req-7")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req-7" {
		t.Fatalf("want caller request id echoed, got %q", got)
	}

	line := decodeLogLine(t, &logs)
	if line["route"] != "/things/:id" {
		t.Fatalf("want route template, got %v", line["route"])
	}
	if line["path"] != "/things/42" {
		t.Fatalf("want raw path, got %v", line["path"])
	}
	if line["request_id"] != "req-7" {
		t.Fatalf("want request id in log, got %v", line["request_id"])
	}
	if line["user_id"] != "u-1" || line["role"] != auth.RoleAdmin {
		t.Fatalf("want authenticated user in log, got %+v", line)
	}
	if line["status"] != float64(http.StatusNoContent) {
		t.Fatalf("want status %d, got %v", http.StatusNoContent, line["status"])
	}
}

func TestAccessLog_AnonymousRequest(t *testing.T) {
	var logs bytes.Buffer
	r := accessLogRouter(&logs, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/42", nil))

	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("want minted request id on response")
	}

	line := decodeLogLine(t, &logs)
	if _, ok := line["user_id"]; ok {
		t.Fatalf("anonymous request must not log a user: %+v", line)
	}
	if line["request_id"] == "" {
		t.Fatalf("want minted request id in log, got %+v", line)
	}
}
