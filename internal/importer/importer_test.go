package importer_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/importer"
	"todo/internal/store"
	"todo/internal/task"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImportOnce_SeedsStore(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"todos":[
		{"id":1,"todo":"Task A","completed":false,"userId":5},
		{"id":2,"todo":"Task B","completed":true,"userId":7}
	],"total":2,"skip":0,"limit":30}`)

	ctx := context.Background()
	st := store.NewMemory()
	imp := importer.New(importer.NewDummyJSONSource(srv.URL, srv.Client()), st, 0, nil)
	now := time.Date(2024, 9, 5, 12, 0, 0, 0, time.UTC)
	imp.SetClock(func() time.Time { return now })

	tasks, err := imp.ImportOnce(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "Task A", tasks[0].Title)
	assert.Equal(t, "", tasks[0].Details)
	assert.False(t, tasks[0].IsCompleted)
	assert.Nil(t, tasks[0].StartTime)
	assert.Nil(t, tasks[0].EndTime)
	assert.True(t, tasks[0].CreatedAt.Equal(now))
	assert.NotEmpty(t, tasks[0].ID)
	assert.True(t, tasks[1].IsCompleted)
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)

	assert.Len(t, st.ListAll(ctx), 2)
}

func TestImportOnce_SkipsExistingTitles(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"todos":[{"id":1,"todo":"Buy milk","completed":true}]}`)

	ctx := context.Background()
	st := store.NewMemory()
	_, err := st.Insert(ctx, "Buy milk", "local", nil, nil)
	require.NoError(t, err)

	imp := importer.New(importer.NewDummyJSONSource(srv.URL, srv.Client()), st, 0, nil)
	tasks, err := imp.ImportOnce(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	list := st.ListAll(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "local", list[0].Details)
	assert.False(t, list[0].IsCompleted)
}

func TestImportOnce_FailuresDegradeToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, importer.ErrNetwork},
		{"not found", http.StatusNotFound, ``, importer.ErrNetwork},
		{"malformed json", http.StatusOK, `{"todos":[{"id":`, importer.ErrDecode},
		{"wrong shape", http.StatusOK, `{"items":[]}`, importer.ErrDecode},
		{"wrong field type", http.StatusOK, `{"todos":[{"id":"x","todo":1}]}`, importer.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			ctx := context.Background()
			st := store.NewMemory()

			imp := importer.New(importer.NewDummyJSONSource(srv.URL, srv.Client()), st, 0, nil)
			tasks, err := imp.ImportOnce(ctx)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, tasks)
			assert.Empty(t, st.ListAll(ctx))
		})
	}
}

func TestImportOnce_Unreachable(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"todos":[]}`)
	url := srv.URL
	srv.Close()

	imp := importer.New(importer.NewDummyJSONSource(url, nil), store.NewMemory(), 0, nil)
	tasks, err := imp.ImportOnce(context.Background())

	assert.ErrorIs(t, err, importer.ErrNetwork)
	assert.Empty(t, tasks)
}

func TestImportOnce_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	imp := importer.New(importer.NewDummyJSONSource(srv.URL, srv.Client()), store.NewMemory(), 50*time.Millisecond, nil)
	tasks, err := imp.ImportOnce(context.Background())

	assert.ErrorIs(t, err, importer.ErrNetwork)
	assert.Empty(t, tasks)
}

type failingSeeder struct{}

func (failingSeeder) BulkInsertIfAbsent(ctx context.Context, tasks []task.Task) (int, error) {
	return 0, errors.New("disk full")
}

func TestImportOnce_StoreFailureIsReported(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"todos":[{"id":1,"todo":"Task A","completed":false}]}`)

	imp := importer.New(importer.NewDummyJSONSource(srv.URL, srv.Client()), failingSeeder{}, 0, nil)
	tasks, err := imp.ImportOnce(context.Background())

	require.ErrorIs(t, err, importer.ErrStore)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestImportOnce_SkipsBlankTitles(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"todos":[{"id":1,"todo":"  ","completed":false},{"id":2,"todo":"Real","completed":false}]}`)

	st := store.NewMemory()
	imp := importer.New(importer.NewDummyJSONSource(srv.URL, srv.Client()), st, 0, nil)
	tasks, err := imp.ImportOnce(context.Background())

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Real", tasks[0].Title)
}
