package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitgevgelija/guide-server/internal/domain"
	domainerrors "github.com/visitgevgelija/guide-server/internal/errors"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls map[string][]error
}

func (r *recordingObserver) ObserveFetch(dataset string, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string][]error{}
	}
	r.calls[dataset] = append(r.calls[dataset], err)
}

func writeDataset(t *testing.T, dir, file, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o600))
}

func TestDefaultManifest(t *testing.T) {
	m := DefaultManifest()

	require.Len(t, m.Datasets, 12)

	var searchNames []string
	for _, ds := range m.Searchable() {
		searchNames = append(searchNames, ds.Name)
	}
	assert.Equal(t, []string{
		"accommodation", "restaurants", "shopping", "zabava", "atrakcii",
		"vinski-raj", "pomos", "ponudi", "prikazni",
	}, searchNames)

	assert.Len(t, m.Homepage(), 8)

	stories, ok := m.Lookup("prikazni")
	require.True(t, ok)
	assert.True(t, stories.Story)

	gas, ok := m.ByFile("gas-stations.json")
	require.True(t, ok)
	assert.Equal(t, "gas-station", gas.Category)
}

func TestParseManifest_Validation(t *testing.T) {
	tests := map[string]string{
		"empty":           "datasets: []",
		"duplicate":       "datasets:\n  - {name: a, file: a.json, category: x}\n  - {name: a, file: b.json, category: x}",
		"path traversal":  "datasets:\n  - {name: a, file: ../a.json, category: x}",
		"not json":        "datasets:\n  - {name: a, file: a.csv, category: x}",
		"no category":     "datasets:\n  - {name: a, file: a.json}",
		"search no route": "datasets:\n  - {name: a, file: a.json, category: x, search: true}",
		"bad yaml":        "datasets: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestDecode(t *testing.T) {
	ds := Dataset{Name: "restaurants", File: "restaurants.json", Category: "restaurant"}
	data := `[
		{"id": "r1", "title": {"en": "Kafana"}},
		{"id": "r2", "title": {"en": "Bistro"}, "category": "cafe"},
		{"title": {"en": "No id"}},
		{"id": "r1", "title": {"en": "Duplicate"}},
		"not an object"
	]`

	listings, problems, err := Decode(ds, []byte(data))
	require.NoError(t, err)

	require.Len(t, listings, 2)
	assert.Equal(t, "r1", listings[0].ID)
	assert.Equal(t, "restaurant", listings[0].Category, "inherits dataset category")
	assert.Equal(t, "cafe", listings[1].Category)

	require.Len(t, problems, 3)
	assert.Equal(t, 2, problems[0].Index)
	assert.Equal(t, "r1", problems[1].ID)
	assert.Equal(t, 4, problems[2].Index)
}

func TestDecode_NotAnArray(t *testing.T) {
	_, _, err := Decode(Dataset{File: "x.json"}, []byte(`{"id": "x"}`))
	assert.ErrorContains(t, err, "not a JSON array")
}

func TestCatalog_LoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "restaurants.json", `[{"id":"r1","package":"premium","title":{"en":"Kafana"}}]`)

	obs := &recordingObserver{}
	c := New(DefaultManifest(), NewDirSource(dir), obs, nil)

	listings, err := c.Load(context.Background(), "restaurants")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.True(t, listings[0].IsPremium())
	assert.Equal(t, []error{nil}, obs.calls["restaurants"])
}

func TestCatalog_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "shopping.json", `{broken`)
	obs := &recordingObserver{}
	c := New(DefaultManifest(), NewDirSource(dir), obs, nil)
	ctx := context.Background()

	_, err := c.Load(ctx, "nope")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	_, err = c.Load(ctx, "restaurants")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrFetchFailed), "missing file")

	_, err = c.Load(ctx, "shopping")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrFetchFailed), "malformed file")

	require.Len(t, obs.calls["shopping"], 1)
	assert.Error(t, obs.calls["shopping"][0])
}

func TestCatalog_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir, "accommodation.json", `[{"id":"a1"}]`)
	writeDataset(t, dir, "restaurants.json", `[{"id":"r1"},{"id":"r2"}]`)
	c := New(DefaultManifest(), NewDirSource(dir), nil, nil)
	m := c.Manifest()

	acc, _ := m.Lookup("accommodation")
	rest, _ := m.Lookup("restaurants")
	shop, _ := m.Lookup("shopping")

	got, err := c.LoadAll(context.Background(), []Dataset{acc, rest})
	require.NoError(t, err)
	assert.Len(t, got["accommodation"], 1)
	assert.Len(t, got["restaurants"], 2)

	_, err = c.LoadAll(context.Background(), []Dataset{acc, rest, shop})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrFetchFailed))
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/ponudi.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"o1"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, srv.Client())
	ctx := context.Background()

	body, err := src.Fetch(ctx, "ponudi.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"o1"}]`, string(body))

	_, err = src.Fetch(ctx, "missing.json")
	assert.ErrorContains(t, err, "unexpected status 404")

	assert.Equal(t, "http:"+srv.URL, src.Describe())
}

func TestHTTPSource_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPSource(srv.URL, nil).Fetch(ctx, "ponudi.json")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDirSource_RejectsPaths(t *testing.T) {
	_, err := NewDirSource(t.TempDir()).Fetch(context.Background(), "../etc/passwd")
	assert.ErrorContains(t, err, "invalid dataset file")
}

func TestFindCollisions(t *testing.T) {
	byDataset := map[string][]domain.Listing{
		"accommodation": {{ID: "1"}, {ID: "2"}},
		"restaurants":   {{ID: "2"}, {ID: "3"}},
		"prikazni":      {{ID: "2"}, {ID: "1"}},
		"shopping":      {{ID: "9"}},
	}

	got := FindCollisions(byDataset)
	assert.Equal(t, []Collision{
		{ID: "1", Datasets: []string{"accommodation", "prikazni"}},
		{ID: "2", Datasets: []string{"accommodation", "prikazni", "restaurants"}},
	}, got)

	assert.Empty(t, FindCollisions(map[string][]domain.Listing{"a": {{ID: "x"}}}))
}
