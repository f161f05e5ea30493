package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"placeplanner/internal/app/collections"
	"placeplanner/internal/store"
	"placeplanner/shared/go/models"
)

type stubPlaceService struct {
	entries   []models.CatalogEntry
	lastQuery models.CatalogQuery
}

func (s *stubPlaceService) List(_ context.Context, q models.CatalogQuery) ([]models.CatalogEntry, error) {
	s.lastQuery = q
	return s.entries, nil
}

func (s *stubPlaceService) Get(_ context.Context, id string) (models.Place, error) {
	for _, e := range s.entries {
		if e.ID == id {
			return e.Place, nil
		}
	}
	return models.Place{}, store.ErrPlaceNotFound
}

func (s *stubPlaceService) Categories(context.Context) ([]string, error) {
	return []string{"city"}, nil
}

type stubUserPlaceService struct {
	places map[string]models.UserPlace

	lastScope models.Scope
	lastPatch models.UserPlacePatch
	removed   []string
	listErr   error
}

func newStubUserPlaces() *stubUserPlaceService {
	return &stubUserPlaceService{places: map[string]models.UserPlace{}}
}

func (s *stubUserPlaceService) List(_ context.Context, scope models.Scope) ([]models.UserPlace, error) {
	s.lastScope = scope
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.UserPlace, 0, len(s.places))
	for _, up := range s.places {
		out = append(out, up)
	}
	return out, nil
}

func (s *stubUserPlaceService) Add(_ context.Context, scope models.Scope, place models.Place) (models.UserPlace, bool, error) {
	s.lastScope = scope
	if existing, ok := s.places[place.ID]; ok {
		return existing, false, nil
	}
	up := models.UserPlace{Place: place, Status: models.StatusWant}
	s.places[place.ID] = up
	return up, true, nil
}

func (s *stubUserPlaceService) update(scope models.Scope, id string, fn func(*models.UserPlace)) (models.UserPlace, error) {
	s.lastScope = scope
	up, ok := s.places[id]
	if !ok {
		return models.UserPlace{}, store.ErrUserPlaceNotFound
	}
	fn(&up)
	s.places[id] = up
	return up, nil
}

func (s *stubUserPlaceService) ToggleStatus(_ context.Context, scope models.Scope, id string) (models.UserPlace, error) {
	return s.update(scope, id, func(up *models.UserPlace) { up.Status = up.Status.Toggle() })
}

func (s *stubUserPlaceService) ToggleFavorite(_ context.Context, scope models.Scope, id string) (models.UserPlace, error) {
	return s.update(scope, id, func(up *models.UserPlace) { up.IsFavorite = !up.IsFavorite })
}

func (s *stubUserPlaceService) Patch(_ context.Context, scope models.Scope, id string, patch models.UserPlacePatch) (models.UserPlace, error) {
	s.lastPatch = patch
	return s.update(scope, id, func(up *models.UserPlace) { patch.Apply(up) })
}

func (s *stubUserPlaceService) Remove(_ context.Context, scope models.Scope, id string) error {
	s.lastScope = scope
	s.removed = append(s.removed, id)
	delete(s.places, id)
	return nil
}

type stubCollectionService struct {
	created []string
}

func (s *stubCollectionService) Create(_ context.Context, userID, name string) (models.Collection, error) {
	if name == "Taken" {
		return models.Collection{}, store.ErrCollectionExists
	}
	s.created = append(s.created, name)
	return models.Collection{ID: "c1", UserID: userID, Name: name}, nil
}

func (s *stubCollectionService) List(_ context.Context, userID string) ([]models.Collection, error) {
	return []models.Collection{{ID: models.DefaultCollection, UserID: userID, Name: "Default"}}, nil
}

func (s *stubCollectionService) Delete(_ context.Context, _ string, id string) error {
	if id == models.DefaultCollection {
		return collections.ErrDefaultCollection
	}
	return nil
}

type testServer struct {
	handler     http.Handler
	places      *stubPlaceService
	userPlaces  *stubUserPlaceService
	collections *stubCollectionService
}

func newTestServer(t *testing.T, opts ...Option) *testServer {
	t.Helper()
	ts := &testServer{
		places: &stubPlaceService{entries: []models.CatalogEntry{
			{Place: models.Place{ID: "rome", Title: "Rome", Category: "city"}},
		}},
		userPlaces:  newStubUserPlaces(),
		collections: &stubCollectionService{},
	}
	ts.handler = New(ts.places, ts.userPlaces, ts.collections, opts...).Routes()
	return ts
}

func (ts *testServer) do(method, target, user string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+user)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodePlace(t *testing.T, rec *httptest.ResponseRecorder) models.UserPlace {
	t.Helper()
	var payload struct {
		Place models.UserPlace `json:"place"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload.Place
}

func TestHealthNeedsNoAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/user-places", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/user-places", nil)
	req.Header.Set("Authorization", "Bearer")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for empty token, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid authorization header") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestParseBearerToken(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"Bearer alice":   "alice",
		"bearer  bob ":   "bob",
		"Basic xyz":      "",
		"Bearer":         "",
		"Token whatever": "",
	}
	for header, want := range tests {
		if got := parseBearerToken(header); got != want {
			t.Fatalf("parseBearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestListPlacesPassesQuery(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/places?category=city&q=ro&lat=41.9&lon=12.5", "alice", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	q := ts.places.lastQuery
	if q.Category != "city" || q.Search != "ro" || q.Near == nil || q.Near.Lat != 41.9 {
		t.Fatalf("unexpected query %+v", q)
	}

	rec = ts.do(http.MethodGet, "/places?lat=91&lon=0", "alice", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad latitude, got %d", rec.Code)
	}
	rec = ts.do(http.MethodGet, "/places?lat=10", "alice", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for missing longitude, got %d", rec.Code)
	}
}

func TestGetPlaceNotFound(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.do(http.MethodGet, "/places/rome", "alice", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/places/atlantis", "alice", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/places/categories", "alice", ""); !strings.Contains(rec.Body.String(), `"city"`) {
		t.Fatalf("expected categories, got %s", rec.Body.String())
	}
}

func TestAddUserPlace(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/user-places", "alice", `{"place":{"id":"rome","title":"Rome"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if got := decodePlace(t, rec); got.ID != "rome" || got.Status != models.StatusWant {
		t.Fatalf("unexpected place %+v", got)
	}
	if ts.userPlaces.lastScope != (models.Scope{UserID: "alice"}) {
		t.Fatalf("unexpected scope %+v", ts.userPlaces.lastScope)
	}

	rec = ts.do(http.MethodPost, "/user-places", "alice", `{"place":{"id":"rome","title":"Rome"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for duplicate, got %d", rec.Code)
	}

	rec = ts.do(http.MethodPost, "/user-places", "alice", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without place, got %d", rec.Code)
	}
	rec = ts.do(http.MethodPost, "/user-places", "alice", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestToggleAndPatch(t *testing.T) {
	ts := newTestServer(t)
	ts.userPlaces.places["rome"] = models.UserPlace{Place: models.Place{ID: "rome", Title: "Rome"}, Status: models.StatusWant}

	rec := ts.do(http.MethodPatch, "/user-places/rome/status", "alice", "")
	if rec.Code != http.StatusOK || decodePlace(t, rec).Status != models.StatusVisited {
		t.Fatalf("status toggle failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodPatch, "/user-places/rome/favorite", "alice", "")
	if rec.Code != http.StatusOK || !decodePlace(t, rec).IsFavorite {
		t.Fatalf("favorite toggle failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(http.MethodPatch, "/user-places/rome", "alice", `{"meta":{"notes":"pasta","plannedDate":"2026-06-01"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	got := decodePlace(t, rec)
	if got.Meta.Notes != "pasta" || got.Meta.PlannedDate == nil || *got.Meta.PlannedDate != "2026-06-01" {
		t.Fatalf("unexpected meta %+v", got.Meta)
	}

	rec = ts.do(http.MethodPatch, "/user-places/rome", "alice", `{"meta":{"plannedDate":null}}`)
	if got := decodePlace(t, rec); got.Meta.PlannedDate != nil || got.Meta.Notes != "pasta" {
		t.Fatalf("null should clear only the date, got %+v", got.Meta)
	}

	rec = ts.do(http.MethodPatch, "/user-places/nowhere/status", "alice", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestRemoveReturnsNoContent(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodDelete, "/user-places/rome", "alice", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	rec = ts.do(http.MethodDelete, "/user-places/rome", "alice", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected repeat delete to succeed, got %d", rec.Code)
	}
}

func TestCollectionScopedRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/collections/trip/places", "bob", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ts.userPlaces.lastScope != (models.Scope{UserID: "bob", Collection: "trip"}) {
		t.Fatalf("unexpected scope %+v", ts.userPlaces.lastScope)
	}
	if !strings.Contains(rec.Body.String(), `"places":[]`) {
		t.Fatalf("empty list should encode as an array, got %s", rec.Body.String())
	}

	ts.userPlaces.listErr = store.ErrCollectionNotFound
	rec = ts.do(http.MethodGet, "/collections/missing/places", "bob", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestCollections(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/collections", "alice", `{"name":"  Japan 2027  "}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if len(ts.collections.created) != 1 || ts.collections.created[0] != "Japan 2027" {
		t.Fatalf("expected trimmed name, got %v", ts.collections.created)
	}

	if rec := ts.do(http.MethodPost, "/collections", "alice", `{"name":"   "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for blank name, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodPost, "/collections", "alice", `{"name":"Taken"}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/collections", "alice", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodDelete, "/collections/default", "alice", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 deleting default, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodDelete, "/collections/c1", "alice", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
}

func TestImagesAndMetrics(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rome.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	ts := newTestServer(t, WithImagesDir(dir), WithMetricsHandler(metrics))

	rec := ts.do(http.MethodGet, "/images/rome.jpg", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "jpeg" {
		t.Fatalf("expected image, got %d %q", rec.Code, rec.Body.String())
	}
	rec = ts.do(http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "# metrics" {
		t.Fatalf("expected metrics, got %d %q", rec.Code, rec.Body.String())
	}
}
