package status

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var resp Response
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestServer_Health(t *testing.T) {
	var healthErr error
	s := New(WithMode(gin.TestMode), WithHealth(func() error { return healthErr }))

	w, resp := get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", resp.Message)

	healthErr = errors.New("gateway disconnected")
	w, resp = get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "gateway disconnected", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestServer_Stats(t *testing.T) {
	s := New(WithMode(gin.TestMode), WithStats(func() any {
		return map[string]int{"servers": 3}
	}))

	w, resp := get(t, s.Handler(), "/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"servers": float64(3)}, resp.Data)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_events_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Add(2)

	s := New(WithMode(gin.TestMode), WithGatherer(reg))
	w, _ := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_events_total 2")
}

func TestServer_NotFound(t *testing.T) {
	s := New(WithMode(gin.TestMode))
	w, resp := get(t, s.Handler(), "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestServer_TracingSetsTraceID(t *testing.T) {
	s := New(WithMode(gin.TestMode), WithTracing(true))
	_, resp := get(t, s.Handler(), "/healthz")
	// 未安装 Provider 时 TraceID 为全零
	assert.NotEmpty(t, resp.TraceID)
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(WithMode(gin.TestMode), WithShutdownTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
