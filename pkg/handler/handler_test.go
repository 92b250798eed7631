package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nasapuff"
	"nasapuff/pkg/apod"
	"nasapuff/pkg/config"
	"nasapuff/pkg/repository"
	srvc "nasapuff/pkg/service"
	"nasapuff/pkg/state"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

// fakeApod plays the remote APOD API, answering with the current body and status.
type fakeApod struct {
	mu     sync.Mutex
	status int
	body   string
	calls  int32
}

func (f *fakeApod) set(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *fakeApod) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.calls, 1)

	f.mu.Lock()
	status, body := f.status, f.body
	f.mu.Unlock()

	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (f *fakeApod) Calls() int {
	return int(atomic.LoadInt32(&f.calls))
}

type testApp struct {
	remote    *fakeApod
	state     *state.Image
	refresher *srvc.Refresher
	server    *httptest.Server
}

func newTestApp(t *testing.T, repos *repository.Repository) *testApp {
	t.Helper()

	remote := &fakeApod{status: http.StatusOK}
	remoteSrv := httptest.NewServer(remote)
	t.Cleanup(remoteSrv.Close)

	client := apod.NewClient(remoteSrv.Client(), remoteSrv.URL+"/planetary/apod", "key")
	st := state.New()
	logger, _ := test.NewNullLogger()

	if repos == nil {
		repos = repository.NewRepository(nil)
	}

	h := NewHandler(srvc.NewService(repos, client, st))
	srv := httptest.NewServer(h.InitRoutes())
	t.Cleanup(srv.Close)

	return &testApp{
		remote:    remote,
		state:     st,
		refresher: srvc.NewRefresher(client, st, repos.Picture, logger, time.Hour),
		server:    srv,
	}
}

func (a *testApp) get(t *testing.T, path string) (int, string) {
	t.Helper()

	resp, err := http.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestPageColdStartThenRefresh(t *testing.T) {

	app := newTestApp(t, nil)

	app.remote.set(http.StatusOK, `{"url": "https://img/a.jpg"}`)
	code, body := app.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "https://img/a.jpg")
	require.Equal(t, 1, app.remote.Calls())

	_, ok := app.state.Get()
	require.False(t, ok)

	app.remote.set(http.StatusOK, `{"url": "https://img/b.jpg"}`)
	require.NoError(t, app.refresher.Update(context.Background()))
	require.Equal(t, 2, app.remote.Calls())

	code, body = app.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "https://img/b.jpg")
	require.Equal(t, 2, app.remote.Calls())
}

func TestPageWarmDoesNotFetch(t *testing.T) {

	app := newTestApp(t, nil)
	app.state.Swap("https://img/v.jpg")

	code, body := app.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `src="https://img/v.jpg"`)
	require.Equal(t, 0, app.remote.Calls())
}

func TestPageColdStartRendersFullRecord(t *testing.T) {

	app := newTestApp(t, nil)
	app.remote.set(http.StatusOK, `{"date":"2022-01-01","title":"The Full Moon of 2021","media_type":"image","url":"https://img/moon.jpg","explanation":"Every Full Moon of 2021."}`)

	code, body := app.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "<title>The Full Moon of 2021</title>")
	require.Contains(t, body, "Every Full Moon of 2021.")
	require.Contains(t, body, `src="https://img/moon.jpg"`)
}

func TestPageVideoRendersLink(t *testing.T) {

	app := newTestApp(t, nil)
	app.remote.set(http.StatusOK, `{"media_type":"video","url":"https://www.youtube.com/embed/rJzKDbnXyH0"}`)

	_, body := app.get(t, "/")
	require.Contains(t, body, `<a href="https://www.youtube.com/embed/rJzKDbnXyH0">`)
	require.NotContains(t, body, "<img")
}

func TestPageColdStartFailure(t *testing.T) {

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":"API_KEY_INVALID"}`},
		{name: "unavailable", status: http.StatusServiceUnavailable, body: ``},
		{name: "not json", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			app := newTestApp(t, nil)
			app.remote.set(tt.status, tt.body)

			code, body := app.get(t, "/")
			require.Equal(t, http.StatusInternalServerError, code)
			require.NotContains(t, body, "<img")
		})
	}
}

func TestTodaysPicture(t *testing.T) {

	app := newTestApp(t, nil)
	app.remote.set(http.StatusOK, `{"url": "https://img/a.jpg"}`)

	code, body := app.get(t, "/v1/picday")
	require.Equal(t, http.StatusOK, code)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Equal(t, Response{Message: "ok", Urls: []string{"https://img/a.jpg"}}, resp)

	app.remote.set(http.StatusInternalServerError, ``)
	code, _ = app.get(t, "/v1/picday")
	require.Equal(t, http.StatusInternalServerError, code)
}

func TestMethodNotAllowed(t *testing.T) {

	app := newTestApp(t, nil)

	resp, err := http.Post(app.server.URL+"/", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, 0, app.remote.Calls())
}

func TestPicturesFromStorageDisabled(t *testing.T) {

	app := newTestApp(t, nil)

	code, _ := app.get(t, "/v1/stored?date=2022-01-01")
	require.Equal(t, http.StatusServiceUnavailable, code)
}

func TestPicturesFromStorage(t *testing.T) {

	db, err := repository.Open(context.Background(), config.DB{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repos := repository.NewRepository(db)
	for _, d := range []string{"2022-01-01", "2022-01-02", "2022-02-01"} {
		_, err := repos.InsertOne(context.Background(), &nasapuff.ApodModel{Date: d, URL: "https://img/" + d + ".jpg"})
		require.NoError(t, err)
	}

	app := newTestApp(t, repos)

	tests := []struct {
		name     string
		query    string
		status   int
		expected Response
	}{
		{
			name:     "by date",
			query:    "?date=2022-01-02",
			status:   http.StatusOK,
			expected: Response{Message: "ok", Urls: []string{"https://img/2022-01-02.jpg"}},
		}, {
			name:     "missing date",
			query:    "?date=2021-01-02",
			status:   http.StatusNotFound,
			expected: Response{Message: "not found"},
		}, {
			name:     "range",
			query:    "?start_date=2022-01-01&end_date=2022-01-31",
			status:   http.StatusOK,
			expected: Response{Message: "ok", Urls: []string{"https://img/2022-01-01.jpg", "https://img/2022-01-02.jpg"}},
		}, {
			name:     "empty range",
			query:    "?start_date=2023-01-01&end_date=2023-01-31",
			status:   http.StatusOK,
			expected: Response{Message: "ok", Urls: []string{}},
		}, {
			name:     "reversed range",
			query:    "?start_date=2022-02-01&end_date=2022-01-01",
			status:   http.StatusBadRequest,
			expected: Response{Message: "end_date is before start_date"},
		}, {
			name:     "no params",
			query:    "",
			status:   http.StatusBadRequest,
			expected: Response{Message: "invalid request params"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			code, body := app.get(t, "/v1/stored"+tt.query)
			require.Equal(t, tt.status, code)

			var resp Response
			require.NoError(t, json.Unmarshal([]byte(body), &resp))
			require.Equal(t, tt.expected, resp)
		})
	}
}

func TestRefreshRecordsHistory(t *testing.T) {

	db, err := repository.Open(context.Background(), config.DB{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	app := newTestApp(t, repository.NewRepository(db))
	app.remote.set(http.StatusOK, `{"date":"2022-03-01","url":"https://img/a.jpg"}`)

	require.NoError(t, app.refresher.Update(context.Background()))

	code, body := app.get(t, "/v1/stored?date=2022-03-01")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "https://img/a.jpg")
}

func TestRefreshWithoutURLKeepsStateAbsent(t *testing.T) {

	app := newTestApp(t, nil)

	app.remote.set(http.StatusOK, `{"title":"no url"}`)
	err := app.refresher.Update(context.Background())
	require.ErrorIs(t, err, apod.ErrNoURL)

	_, ok := app.state.Get()
	require.False(t, ok)

	code, _ := app.get(t, "/")
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, 2, app.remote.Calls())

	app.remote.set(http.StatusOK, `{"url": "https://img/a.jpg"}`)
	code, body := app.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "https://img/a.jpg")
	require.Equal(t, 3, app.remote.Calls())
}

func TestPageWarmVideoRendersLink(t *testing.T) {

	app := newTestApp(t, nil)
	app.state.Swap("https://www.youtube.com/embed/rJzKDbnXyH0?rel=0")

	code, body := app.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, `<a href="https://www.youtube.com/embed/rJzKDbnXyH0?rel=0">`)
	require.NotContains(t, body, "<img")
	require.Equal(t, 0, app.remote.Calls())
}

func (a *testApp) delete(t *testing.T, path string) (int, Response) {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, a.server.URL+path, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return resp.StatusCode, out
}

func TestDeletePicture(t *testing.T) {

	db, err := repository.Open(context.Background(), config.DB{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repos := repository.NewRepository(db)
	_, err = repos.InsertOne(context.Background(), &nasapuff.ApodModel{Date: "2022-01-01", URL: "https://img/a.jpg"})
	require.NoError(t, err)

	app := newTestApp(t, repos)

	code, resp := app.delete(t, "/v1/stored")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid request params", resp.Message)

	code, resp = app.delete(t, "/v1/stored?date=2022-01-01")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "deleted", resp.Message)

	code, resp = app.delete(t, "/v1/stored?date=2022-01-01")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "not found", resp.Message)

	code, _ = app.get(t, "/v1/stored?date=2022-01-01")
	require.Equal(t, http.StatusNotFound, code)
}

func TestDeletePictureDisabled(t *testing.T) {

	app := newTestApp(t, nil)

	code, _ := app.delete(t, "/v1/stored?date=2022-01-01")
	require.Equal(t, http.StatusServiceUnavailable, code)
}
