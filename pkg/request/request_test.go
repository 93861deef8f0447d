package request

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/guilded/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	base := []Option{
		WithBaseURL(srv.URL),
		WithToken("tok"),
		WithRetry(&RetryConfig{MaxAttempts: 4, MinDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}),
	}
	return New(append(base, opts...)...)
}

func TestRequestSendsAuthAndJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["content"])
		writeJSON(w, http.StatusCreated, map[string]any{"message": map[string]string{"id": "m1"}})
	}))
	defer srv.Close()

	type message struct {
		ID string `json:"id"`
	}
	msg, err := DoField[message](newTestClient(srv).Post("/channels/c1/messages").
		SetBody(map[string]string{"content": "hello"}), "message")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
}

func TestRequestExplicitToken(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	_, err := c.Get("/users/@me").SetToken("abc").Do()
	require.NoError(t, err)
	_, err = c.Get("/users/@me").SetToken("Bearer xyz").Do()
	require.NoError(t, err)
	_, err = c.Get("/users/@me").SetAuth(false).Do()
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer abc", "Bearer xyz", ""}, seen)
}

func TestRequestInvalidMethod(t *testing.T) {
	c := New()
	_, err := c.Request(context.Background(), Options{Method: "HEAD", Endpoint: "/x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMethod))
	assert.Equal(t, `Invalid Method "HEAD"`, err.Error())
}

func TestRequestWithoutTokenOmitsAuthorization(t *testing.T) {
	var mu sync.Mutex
	var header []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		header = r.Header.Values("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":"Unauthorized","message":"missing token"}`)
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	_, err := c.Get("/users/@me").Do()
	require.Error(t, err)
	mu.Lock()
	assert.Empty(t, header)
	mu.Unlock()

	var rerr *errors.RESTError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusUnauthorized, rerr.Status)
}

func TestResponseBodyParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		case "/text":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, "pong")
		case "/broken":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, "{not json")
		}
	}))
	defer srv.Close()

	var reported atomic.Int32
	c := newTestClient(srv, WithOnError(func(error) { reported.Add(1) }))

	resp, err := c.Get("/empty").Do()
	require.NoError(t, err)
	assert.Nil(t, resp.Data)

	resp, err = c.Get("/text").Do()
	require.NoError(t, err)
	assert.Equal(t, []byte("pong"), resp.Data)

	resp, err = c.Get("/broken").Do()
	require.NoError(t, err)
	assert.Equal(t, "{not json", resp.Data)
	assert.Equal(t, int32(1), reported.Load())
}

func TestRateLimitedRequestIsRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("x-ratelimit-reset-after", "0.2")
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"code": "TooManyRequests"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}))
	defer srv.Close()

	start := time.Now()
	resp, err := newTestClient(srv).Get("/limited").Do()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), hits.Load())
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestSharedScopeUsesBodyRetryAfter(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("x-ratelimit-scope", "shared")
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"retry_after": 0.1})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	start := time.Now()
	_, err := newTestClient(srv).Delete("/channels/c1").Do()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestBadGatewayRetryIsBounded(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Get("/down").Do()
	require.Error(t, err)
	var httpErr *errors.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.Status)
	assert.Equal(t, int32(4), hits.Load())
}

func TestBadGatewayRecovers(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).Get("/flaky").Do()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestErrorResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest":
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": "BadRequest", "message": "bad input"})
		default:
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)

	_, err := c.Post("/rest").SetBody(map[string]string{}).Do()
	var restErr *errors.RESTError
	require.True(t, errors.As(err, &restErr))
	assert.Equal(t, http.StatusBadRequest, restErr.Status)
	assert.Equal(t, "bad input on POST /rest", restErr.Error())

	_, err = c.Get("/missing").Do()
	var httpErr *errors.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := newTestClient(srv, WithTimeout(50*time.Millisecond)).Get("/slow").Do()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, "Request Timed Out (>50ms) on GET /slow", err.Error())
}

func TestMultipartPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.JSONEq(t, `{"content":"see attached"}`, r.FormValue("payload_json"))
		files := r.MultipartForm.File["files[0]"]
		require.Len(t, files, 1)
		assert.Equal(t, "a.txt", files[0].Filename)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Post("/upload").
		SetBody(map[string]string{"content": "see attached"}).
		SetFile("a.txt", []byte("data")).
		Do()
	require.NoError(t, err)
}

func TestSameRouteIsSerialized(t *testing.T) {
	var inflight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inflight.Add(-1)
		w.Header().Set("x-ratelimit-limit", "5")
		w.Header().Set("x-ratelimit-remaining", "5")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(srv)
	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get("/same").Do()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), peak.Load())
	limit, _, _ := c.Bucket(srv.URL + "/same").State()
	assert.Equal(t, 5, limit)
}

func TestGlobalBlockReleasesInOrder(t *testing.T) {
	var first atomic.Bool
	var mu sync.Mutex
	var order []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/a" {
			if first.CompareAndSwap(false, true) {
				w.Header().Set("x-ratelimit-global", "true")
				w.Header().Set("x-ratelimit-reset-after", "0.3")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		mu.Lock()
		order = append(order, r.URL.Query().Get("n"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	mock := clock.NewMock()
	c := newTestClient(srv, WithClock(mock))

	errs := make(chan error, 4)
	go func() {
		_, err := c.Get("/a").Do()
		errs <- err
	}()
	require.Eventually(t, c.GlobalBlocked, time.Second, 5*time.Millisecond)

	readyLen := func() int {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.readyQueue)
	}
	send := func(name string, priority bool, want int) {
		go func() {
			_, err := c.Get("/x").SetRoute("x").SetQuery("n", name).SetPriority(priority).Do()
			errs <- err
		}()
		require.Eventually(t, func() bool { return readyLen() == want }, time.Second, 5*time.Millisecond)
	}
	send("B", false, 1)
	send("C", false, 2)
	send("D", true, 3)

	mock.Add(300 * time.Millisecond)

	for range 4 {
		select {
		case err := <-errs:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("requests did not complete after global unblock")
		}
	}
	assert.False(t, c.GlobalBlocked())
	assert.Equal(t, []string{"D", "B", "C"}, order)
}

func TestInterceptorSeesRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(srv, WithInterceptor(HeaderFunc(func(ctx context.Context) map[string]string {
		return map[string]string{"X-Request-Id": RequestIDFromContext(ctx)}
	})))
	_, err := c.Get("/ping").Do()
	require.NoError(t, err)
}

func TestCancelledContextReleasesBucket(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/hold" {
			<-release
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(srv, WithTimeout(0))
	go func() { _, _ = c.Get("/hold").SetRoute("shared").Do() }()
	require.Eventually(t, func() bool {
		_, remaining, _ := c.Bucket("shared").State()
		return remaining == 0
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get("/other").SetRoute("shared").SetContext(ctx).Do()
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	_, err = c.Get("/other").SetRoute("shared").Do()
	require.NoError(t, err)
}
