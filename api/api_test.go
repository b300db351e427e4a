package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"chartanim/animator"
	"chartanim/config"
	"chartanim/define"
	"chartanim/render"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubScheduler 记录定时器但从不自动触发
type stubScheduler struct {
	mu        sync.Mutex
	intervals []time.Duration
	fns       []func()
	stopped   []bool
}

type stubTimer struct {
	s   *stubScheduler
	idx int
}

func (s *stubScheduler) Every(interval time.Duration, fn func()) animator.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intervals = append(s.intervals, interval)
	s.fns = append(s.fns, fn)
	s.stopped = append(s.stopped, false)
	return &stubTimer{s: s, idx: len(s.fns) - 1}
}

func (t *stubTimer) Stop() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.stopped[t.idx] = true
}

func (s *stubScheduler) lastInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intervals[len(s.intervals)-1]
}

func (s *stubScheduler) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, stopped := range s.stopped {
		if !stopped {
			n++
		}
	}
	return n
}

type testEnv struct {
	router    *gin.Engine
	animator  *animator.Animator
	hub       *render.Hub
	scheduler *stubScheduler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, define.DefaultConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg *define.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := render.NewHub(cfg.DatasetLabel)
	sched := &stubScheduler{}
	anim := animator.New(hub, animator.WithScheduler(sched), animator.WithPalette(cfg.Palette))
	require.NoError(t, anim.Initialize())

	r := gin.New()
	NewServer(anim, hub, cfg, "test").SetupRoutes(r)

	return &testEnv{router: r, animator: anim, hub: hub, scheduler: sched}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `id="startBtn"`)
	assert.Contains(t, w.Body.String(), "/api/v1/chart/stream")
}

func TestStartAnimationWithStringSpeed(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/animation/start", `{"mode":"bar","speed":"250"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, 250*time.Millisecond, env.scheduler.lastInterval())
	status := env.animator.Status()
	assert.True(t, status.IsRunning)
	assert.Equal(t, define.ModeBar, status.Mode)

	frame := env.hub.Snapshot()
	assert.Equal(t, define.ModeBar, frame.Mode)
	assert.Equal(t, "#FF5733aa", frame.Style.Stroke)
	assert.Equal(t, "#FF5733aa", frame.Style.Fill)

	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "bar", data["mode"])
	assert.Equal(t, float64(250), data["intervalMs"])
}

func TestStartAnimationSpeedFallback(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"mode":"line","speed":"abc"}`,
		`{"mode":"line","speed":0}`,
		`{"mode":"line"}`,
		`{"mode":"line","speed":null}`,
	} {
		w := env.do(http.MethodPost, "/api/v1/animation/start", body)
		require.Equal(t, http.StatusOK, w.Code, body)
		assert.Equal(t, 100*time.Millisecond, env.scheduler.lastInterval(), body)
	}

	// 连续启动只保留一个定时器
	assert.Equal(t, 1, env.scheduler.active())
}

func TestStartAnimationNumericSpeed(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/animation/start", `{"mode":"line","speed":40}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40*time.Millisecond, env.scheduler.lastInterval())
}

func TestStartAnimationRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/animation/start", `{"mode":"pie"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decodeResponse(t, w)["status"])

	w = env.do(http.MethodPost, "/api/v1/animation/start", `{"speed":"100"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/v1/animation/start", `{"mode":"line","frames":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.False(t, env.animator.IsRunning())
}

func TestStopAnimation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/animation/stop", "")
	require.Equal(t, http.StatusOK, w.Code)

	env.do(http.MethodPost, "/api/v1/animation/start", `{"mode":"line"}`)
	require.True(t, env.animator.IsRunning())

	w = env.do(http.MethodPost, "/api/v1/animation/stop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.animator.IsRunning())
	assert.Equal(t, 0, env.scheduler.active())
}

func TestAnimationStatus(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/animation/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, false, data["isRunning"])
	assert.Equal(t, "line", data["mode"])
	assert.Equal(t, float64(100), data["defaultSpeedMs"])
}

func TestSetPalette(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPut, "/api/v1/animation/palette", `{"line":"#112233"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "#112233", env.animator.Palette().Line)
	assert.Equal(t, "#FF5733aa", env.animator.Palette().Bar)

	w = env.do(http.MethodPut, "/api/v1/animation/palette", `{"bar":"orange"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, "/api/v1/animation/palette", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, "/api/v1/animation/palette", `{"background":"#102030","axis":"#c0ffee"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "#102030", env.animator.Palette().Background)
	assert.Equal(t, "#c0ffee", env.animator.Palette().Axis)

	w = env.do(http.MethodPut, "/api/v1/animation/palette", `{"axis":"black"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPalettePersistsToConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: Kept\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	env := newTestEnvWithConfig(t, cfg)

	w := env.do(http.MethodPut, "/api/v1/animation/palette", `{"line":"#112233","background":"#000000"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	saved, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Kept", saved.Title)
	assert.Equal(t, "#112233", saved.Palette.Line)
	assert.Equal(t, "#000000", saved.Palette.Background)
	assert.Equal(t, define.DefaultBarColor, saved.Palette.Bar)
}

func TestGetFrameAfterTick(t *testing.T) {
	env := newTestEnv(t)

	env.do(http.MethodPost, "/api/v1/animation/start", `{"mode":"line","speed":"50"}`)
	require.NoError(t, env.animator.Tick())

	w := env.do(http.MethodGet, "/api/v1/chart", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]any)
	values := data["values"].([]any)
	require.Len(t, values, 30)
	for i, v := range values {
		assert.InDelta(t, math.Sin(float64(i+1)/4+0.08), v.(float64), 1e-9)
	}
}

func TestGetOption(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/chart/option", "")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, false, data["animation"])
	series := data["series"].([]any)
	assert.Equal(t, "line", series[0].(map[string]any)["type"])
}

func TestGetSnapshot(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/chart/snapshot.png", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestSystemEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/system/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "healthy", data["status"])

	w = env.do(http.MethodGet, "/api/v1/system/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "test", data["version"])
	assert.Equal(t, float64(1), data["frameSeq"])
}

func TestHealthBeforeFirstFrame(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := define.DefaultConfig()
	hub := render.NewHub(cfg.DatasetLabel)
	anim := animator.New(hub, animator.WithScheduler(&stubScheduler{}))

	r := gin.New()
	NewServer(anim, hub, cfg, "test").SetupRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "error", resp["status"])
	assert.NotEmpty(t, resp["error"])
	assert.Equal(t, "unhealthy", resp["data"].(map[string]any)["status"])
}

func TestMetricsTrackSelfStop(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/animation/start", `{"mode":"line","speed":"70","frames":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, env.do(http.MethodGet, "/metrics", "").Body.String(), "chartanim_tick_interval_ms 70")

	env.scheduler.mu.Lock()
	fire := env.scheduler.fns[len(env.scheduler.fns)-1]
	env.scheduler.mu.Unlock()
	fire()

	require.False(t, env.animator.IsRunning())
	assert.Contains(t, env.do(http.MethodGet, "/metrics", "").Body.String(), "chartanim_tick_interval_ms 0")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/api/v1/animation/start", `{"mode":"bar"}`)

	w := env.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chartanim_frames_total")
	assert.Contains(t, w.Body.String(), `chartanim_animation_starts_total{mode="bar"}`)
}

func TestChartStream(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/chart/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	frames := make(chan render.Frame, 4)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			frame, err := render.DecodeFrame([]byte(strings.TrimPrefix(line, "data:")))
			if err == nil {
				frames <- frame
			}
		}
	}()

	// 连接后先收到初始帧
	select {
	case f := <-frames:
		assert.Equal(t, uint64(1), f.Seq)
	case <-ctx.Done():
		t.Fatal("initial frame not streamed")
	}

	require.NoError(t, env.animator.Tick())

	select {
	case f := <-frames:
		assert.Equal(t, uint64(2), f.Seq)
		assert.Len(t, f.Values, 30)
	case <-ctx.Done():
		t.Fatal("tick frame not streamed")
	}
}
