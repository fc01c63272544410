package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardotrapani/lyricsync/internal/config"
	"github.com/leonardotrapani/lyricsync/internal/pipeline"
	"github.com/leonardotrapani/lyricsync/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticSource struct{ cfg *config.Config }

func (s staticSource) GetConfig() *config.Config { return s.cfg.Clone() }

type fakeRunner struct {
	run func(ctx context.Context, req pipeline.Request) (*pipeline.Report, error)

	mu   sync.Mutex
	reqs []pipeline.Request
}

func (f *fakeRunner) Run(ctx context.Context, req pipeline.Request) (*pipeline.Report, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.run(ctx, req)
}

func (f *fakeRunner) requests() []pipeline.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pipeline.Request(nil), f.reqs...)
}

// writingRunner persists a one line document and succeeds
func writingRunner() *fakeRunner {
	return &fakeRunner{run: func(_ context.Context, req pipeline.Request) (*pipeline.Report, error) {
		if err := os.MkdirAll(filepath.Dir(req.Output), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(req.Output, []byte("[00:00.00] la la la\n"), 0644); err != nil {
			return nil, err
		}
		return &pipeline.Report{RequestID: req.ID, OutputPath: req.Output, Lines: 1}, nil
	}}
}

func newTestServer(t *testing.T, runner Runner, mutate func(*config.Config)) (*Server, *config.Config) {
	t.Helper()

	cfg := testutil.TestConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, os.MkdirAll(cfg.Storage.UploadDir, 0755))

	srv := New(staticSource{cfg}, WithBuilder(func(*config.Config) (Runner, error) {
		return runner, nil
	}))
	return srv, cfg
}

func addUpload(t *testing.T, cfg *config.Config, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Storage.UploadDir, name), []byte("audio"), 0644))
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) {
		_, ok := c.Get(requestIDKey)
		assert.True(t, ok, "request_id not set in context")
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, writingRunner(), nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, writingRunner(), nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lyricsync_inflight_requests")
}

func TestUploadFile_Success(t *testing.T) {
	runner := writingRunner()
	srv, cfg := newTestServer(t, runner, nil)
	addUpload(t, cfg, "song.mp3")

	w := postJSON(t, srv.Handler(), "/uploadfile", map[string]string{"fileName": "song.mp3"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Audio processed successfully","lrc_file":"/lrc/song.mp3.lrc"}`, w.Body.String())

	reqs := runner.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, filepath.Join(cfg.Storage.UploadDir, "song.mp3"), reqs[0].Source)
	assert.Equal(t, filepath.Join(cfg.Storage.OutputDir, "song.mp3.lrc"), reqs[0].Output)
	assert.Equal(t, w.Header().Get(requestIDHeader), reqs[0].ID)

	get := httptest.NewRecorder()
	srv.Handler().ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/lrc/song.mp3.lrc", nil))
	assert.Equal(t, http.StatusOK, get.Code)
	assert.Equal(t, "[00:00.00] la la la\n", get.Body.String())
}

func TestUploadFile_SameBaseNameDistinctDocuments(t *testing.T) {
	runner := &fakeRunner{run: func(_ context.Context, req pipeline.Request) (*pipeline.Report, error) {
		if err := os.MkdirAll(filepath.Dir(req.Output), 0755); err != nil {
			return nil, err
		}
		// lyrics name the source they came from
		if err := os.WriteFile(req.Output, []byte("[00:00.00] "+filepath.Base(req.Source)+"\n"), 0644); err != nil {
			return nil, err
		}
		return &pipeline.Report{RequestID: req.ID, OutputPath: req.Output, Lines: 1}, nil
	}}
	srv, cfg := newTestServer(t, runner, func(c *config.Config) { c.Server.MaxConcurrent = 2 })
	addUpload(t, cfg, "song.mp3")
	addUpload(t, cfg, "song.wav")

	names := []string{"song.mp3", "song.wav"}
	bodies := make([]map[string]any, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := postJSON(t, srv.Handler(), "/uploadfile", map[string]string{"fileName": name})
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var body map[string]any
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			bodies[i] = body
		}()
	}
	wg.Wait()

	require.NotEqual(t, bodies[0]["lrc_file"], bodies[1]["lrc_file"])
	for i, name := range names {
		lrc, _ := bodies[i]["lrc_file"].(string)
		get := httptest.NewRecorder()
		srv.Handler().ServeHTTP(get, httptest.NewRequest(http.MethodGet, lrc, nil))
		assert.Equal(t, http.StatusOK, get.Code)
		assert.Equal(t, "[00:00.00] "+name+"\n", get.Body.String())
	}
}

func TestUploadFile_StatFailureIsInternal(t *testing.T) {
	srv, _ := newTestServer(t, writingRunner(), nil)

	// longer than NAME_MAX, stat fails with something other than not-exist
	w := postJSON(t, srv.Handler(), "/uploadfile", map[string]string{"fileName": strings.Repeat("a", 300) + ".mp3"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal", decode(t, w)["kind"])
}

func TestUploadFile_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, writingRunner(), nil)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing field", map[string]string{}, http.StatusBadRequest},
		{"empty name", map[string]string{"fileName": "  "}, http.StatusBadRequest},
		{"traversal", map[string]string{"fileName": "../etc/passwd"}, http.StatusBadRequest},
		{"nested", map[string]string{"fileName": "a/b.mp3"}, http.StatusBadRequest},
		{"not uploaded", map[string]string{"fileName": "ghost.mp3"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, srv.Handler(), "/uploadfile", tt.body)
			assert.Equal(t, tt.want, w.Code)

			body := decode(t, w)
			assert.NotEmpty(t, body["error"])
			assert.NotEmpty(t, body["kind"])
			assert.Equal(t, w.Header().Get(requestIDHeader), body["request_id"])
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/uploadfile", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadFile_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
		stage  string
	}{
		{"conversion", &pipeline.StageError{Stage: pipeline.StageConvert, Kind: pipeline.ErrConversion, Err: errors.New("exit 1")}, http.StatusBadGateway, "conversion", "convert"},
		{"isolation", &pipeline.StageError{Stage: pipeline.StageIsolate, Kind: pipeline.ErrIsolation, Err: errors.New("exit 1")}, http.StatusBadGateway, "isolation", "isolate"},
		{"source vanished", &pipeline.StageError{Stage: pipeline.StageConvert, Kind: pipeline.ErrSourceNotFound, Err: os.ErrNotExist}, http.StatusNotFound, "source_not_found", "convert"},
		{"unreadable", &pipeline.StageError{Stage: pipeline.StageSegment, Kind: pipeline.ErrUnreadableAudio, Err: errors.New("bad header")}, http.StatusInternalServerError, "unreadable_audio", "segment"},
		{"window", &pipeline.StageError{Stage: pipeline.StageSegment, Kind: pipeline.ErrInvalidWindow, Err: errors.New("0")}, http.StatusInternalServerError, "invalid_window", "segment"},
		{"persist", &pipeline.StageError{Stage: pipeline.StagePersist, Kind: pipeline.ErrPersistence, Err: errors.New("disk full")}, http.StatusInternalServerError, "persistence", "persist"},
		{"deadline", &pipeline.StageError{Stage: pipeline.StageIsolate, Kind: context.DeadlineExceeded, Err: context.DeadlineExceeded}, http.StatusGatewayTimeout, "timeout", "isolate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{run: func(_ context.Context, req pipeline.Request) (*pipeline.Report, error) {
				return &pipeline.Report{RequestID: req.ID}, tt.err
			}}
			srv, cfg := newTestServer(t, runner, nil)
			addUpload(t, cfg, "song.mp3")

			w := postJSON(t, srv.Handler(), "/uploadfile", map[string]string{"fileName": "song.mp3"})
			assert.Equal(t, tt.status, w.Code)

			body := decode(t, w)
			assert.Equal(t, tt.kind, body["kind"])
			assert.Equal(t, tt.stage, body["stage"])
			assert.NotContains(t, body, "partial_lrc_file")
		})
	}
}

func TestUploadFile_PartialDocument(t *testing.T) {
	runner := &fakeRunner{run: func(_ context.Context, req pipeline.Request) (*pipeline.Report, error) {
		return &pipeline.Report{RequestID: req.ID, OutputPath: req.Output},
			&pipeline.StageError{Stage: pipeline.StageTranscribe, Kind: pipeline.ErrRecognitionService, Err: errors.New("segment 2 failed")}
	}}
	srv, cfg := newTestServer(t, runner, nil)
	addUpload(t, cfg, "track.wav")

	w := postJSON(t, srv.Handler(), "/uploadfile", map[string]string{"fileName": "track.wav"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	body := decode(t, w)
	assert.Equal(t, "recognition_service", body["kind"])
	assert.Equal(t, "transcribe", body["stage"])
	assert.Equal(t, "/lrc/track.wav.lrc", body["partial_lrc_file"])
}

func TestUploadFile_RequestTimeout(t *testing.T) {
	runner := &fakeRunner{run: func(ctx context.Context, _ pipeline.Request) (*pipeline.Report, error) {
		<-ctx.Done()
		return &pipeline.Report{}, &pipeline.StageError{Stage: pipeline.StageTranscribe, Kind: ctx.Err(), Err: ctx.Err()}
	}}
	srv, cfg := newTestServer(t, runner, func(cfg *config.Config) {
		cfg.Server.RequestTimeout = 20 * time.Millisecond
	})
	addUpload(t, cfg, "song.mp3")

	w := postJSON(t, srv.Handler(), "/uploadfile", map[string]string{"fileName": "song.mp3"})
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestUploadFile_Busy(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	inner := writingRunner()
	runner := &fakeRunner{run: func(ctx context.Context, req pipeline.Request) (*pipeline.Report, error) {
		close(entered)
		<-release
		return inner.run(ctx, req)
	}}

	srv, cfg := newTestServer(t, runner, func(cfg *config.Config) {
		cfg.Server.MaxConcurrent = 1
		cfg.Server.QueueTimeout = 20 * time.Millisecond
	})
	addUpload(t, cfg, "song.mp3")

	first := make(chan int, 1)
	go func() {
		w := postJSON(t, srv.Handler(), "/uploadfile", map[string]string{"fileName": "song.mp3"})
		first <- w.Code
	}()
	<-entered

	w := postJSON(t, srv.Handler(), "/uploadfile", map[string]string{"fileName": "song.mp3"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "busy", decode(t, w)["kind"])

	close(release)
	assert.Equal(t, http.StatusOK, <-first)
}

func TestUploadFile_BuildError(t *testing.T) {
	cfg := testutil.TestConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Storage.UploadDir, 0755))
	addUpload(t, cfg, "song.mp3")

	srv := New(staticSource{cfg}, WithBuilder(func(*config.Config) (Runner, error) {
		return nil, errors.New("no api key")
	}))

	w := postJSON(t, srv.Handler(), "/uploadfile", map[string]string{"fileName": "song.mp3"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode(t, w)["error"], "no api key")
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	srv, cfg := newTestServer(t, writingRunner(), nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, multipartUpload(t, "file", "My Song.MP3", []byte("id3")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"fileName":"my song.mp3"}`, w.Body.String())

	data, err := os.ReadFile(filepath.Join(cfg.Storage.UploadDir, "my song.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "id3", string(data))
}

func TestUpload_Rejected(t *testing.T) {
	srv, _ := newTestServer(t, writingRunner(), nil)

	tests := []struct {
		name  string
		field string
		file  string
	}{
		{"wrong extension", "file", "notes.txt"},
		{"no extension", "file", "song"},
		{"wrong field", "audio", "song.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, multipartUpload(t, tt.field, tt.file, []byte("x")))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLRC_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, writingRunner(), nil)

	for path, want := range map[string]int{
		"/lrc/missing.lrc": http.StatusNotFound,
		"/lrc/song.mp3":    http.StatusBadRequest,
	} {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&pipeline.StageError{Stage: pipeline.StageConvert, Kind: pipeline.ErrInvalidRequest}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("other")))

	// a per-call timeout inside a recognition failure is still a bad gateway
	nested := &pipeline.StageError{
		Stage: pipeline.StageTranscribe,
		Kind:  pipeline.ErrRecognitionService,
		Err:   context.DeadlineExceeded,
	}
	assert.Equal(t, http.StatusBadGateway, statusFor(nested))
}

func TestRun_Shutdown(t *testing.T) {
	cfg := testutil.TestConfig(t)
	cfg.Server.Address = "127.0.0.1:0"
	pidPath := filepath.Join(t.TempDir(), PidName)

	srv := New(staticSource{cfg}, WithPidFile(pidPath))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	testutil.WaitForCondition(t, func() bool {
		_, err := os.Stat(pidPath)
		return err == nil
	}, 2*time.Second)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err := os.Stat(pidPath)
	assert.True(t, os.IsNotExist(err), "pid file must be removed")
}

func TestRun_ListenError(t *testing.T) {
	cfg := testutil.TestConfig(t)
	cfg.Server.Address = "not-an-address"

	err := New(staticSource{cfg}).Run(context.Background())
	assert.Error(t, err)
}

func TestPidFile(t *testing.T) {
	p := PidFile{Path: filepath.Join(t.TempDir(), "run", PidName)}

	assert.NoError(t, p.CheckExisting(), "missing file is not a conflict")

	require.NoError(t, p.Create())
	data, err := os.ReadFile(p.Path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
	assert.NoError(t, p.CheckExisting(), "own pid is not a conflict")

	require.NoError(t, os.WriteFile(p.Path, []byte(strconv.Itoa(os.Getppid())), 0600))
	assert.Error(t, p.CheckExisting(), "live parent process must conflict")

	require.NoError(t, os.WriteFile(p.Path, []byte("garbage"), 0600))
	assert.NoError(t, p.CheckExisting())

	require.NoError(t, p.Remove())
	require.NoError(t, p.Remove(), "removing twice is fine")
}
