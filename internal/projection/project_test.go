package projection

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"
	"time"

	"placeplanner/shared/go/models"
)

func date(s string) *string { return &s }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func place(id, title string, status models.PlaceStatus, fav bool, created string, meta models.Meta) models.UserPlace {
	up := models.UserPlace{
		Place:      models.Place{ID: id, Title: title},
		Status:     status,
		IsFavorite: fav,
		Meta:       meta,
	}
	if created != "" {
		up.CreatedAt = day(created)
	}
	return up
}

// tripFixture is the three-entry collection used across the scenarios.
func tripFixture() []models.UserPlace {
	return []models.UserPlace{
		place("1", "Rome", models.StatusWant, true, "2024-01-01", models.Meta{Notes: "Italy trip", PlannedDate: date("2026-06-01")}),
		place("2", "Paris", models.StatusVisited, false, "2023-05-01", models.Meta{Notes: "Already seen"}),
		place("3", "Berlin", models.StatusWant, false, "2025-02-01", models.Meta{}),
	}
}

func ids(places []models.UserPlace) []string {
	out := make([]string, len(places))
	for i, p := range places {
		out[i] = p.ID
	}
	return out
}

func assertIDs(t *testing.T, got []models.UserPlace, want ...string) {
	t.Helper()
	if g := ids(got); !slices.Equal(g, want) {
		t.Fatalf("expected ids %v, got %v", want, g)
	}
}

func TestProjectStatusFilterKeepsOriginalOrder(t *testing.T) {
	filter := DefaultFilter()
	filter.Status = []models.PlaceStatus{models.StatusWant}

	got := Filter(tripFixture(), filter)

	assertIDs(t, got, "1", "3")
}

func TestProjectSearchMatchesNotesCaseInsensitively(t *testing.T) {
	filter := DefaultFilter()
	filter.Search = "italy"

	got := Project(tripFixture(), filter, DefaultSort())

	assertIDs(t, got, "1")
}

func TestProjectSearchMatchesTitle(t *testing.T) {
	filter := DefaultFilter()
	filter.Search = "PAR"

	got := Project(tripFixture(), filter, DefaultSort())

	assertIDs(t, got, "2")
}

func TestProjectSearchIsNotTrimmed(t *testing.T) {
	filter := DefaultFilter()
	filter.Search = " "
	if filter.IsPassThrough() {
		t.Fatalf("a whitespace search is still a search")
	}

	got := Filter(tripFixture(), filter)

	assertIDs(t, got, "1", "2")
}

func TestProjectPlannedDateAscendingPutsUndatedLast(t *testing.T) {
	got := Project(tripFixture(), DefaultFilter(), SortState{Key: SortPlannedDate, Direction: Asc})

	assertIDs(t, got, "1", "2", "3")
}

func TestProjectPlannedDateDescendingKeepsUndatedLast(t *testing.T) {
	places := []models.UserPlace{
		place("a", "A", "", false, "", models.Meta{}),
		place("b", "B", "", false, "", models.Meta{PlannedDate: date("2025-01-01")}),
		place("c", "C", "", false, "", models.Meta{PlannedDate: date("2026-03-15")}),
		place("d", "D", "", false, "", models.Meta{PlannedDate: date("")}),
	}

	got := Project(places, DefaultFilter(), SortState{Key: SortPlannedDate, Direction: Desc})

	assertIDs(t, got, "c", "b", "a", "d")
}

func TestProjectTitleSort(t *testing.T) {
	places := []models.UserPlace{
		place("1", "zurich", "", false, "", models.Meta{}),
		place("2", "Äpfelhof", "", false, "", models.Meta{}),
		place("3", "Berlin", "", false, "", models.Meta{}),
		place("4", "amsterdam", "", false, "", models.Meta{}),
	}

	asc := Project(places, DefaultFilter(), SortState{Key: SortTitle, Direction: Asc})
	assertIDs(t, asc, "4", "2", "3", "1")

	desc := Project(places, DefaultFilter(), SortState{Key: SortTitle, Direction: Desc})
	assertIDs(t, desc, "1", "3", "2", "4")
}

func TestProjectStatusSort(t *testing.T) {
	places := []models.UserPlace{
		place("1", "A", models.StatusVisited, false, "", models.Meta{}),
		place("2", "B", "", false, "", models.Meta{}),
		place("3", "C", models.StatusWant, false, "", models.Meta{}),
		place("4", "D", models.StatusVisited, false, "", models.Meta{}),
	}

	asc := Project(places, DefaultFilter(), SortState{Key: SortStatus, Direction: Asc})
	assertIDs(t, asc, "2", "3", "1", "4")

	desc := Project(places, DefaultFilter(), SortState{Key: SortStatus, Direction: Desc})
	assertIDs(t, desc, "1", "4", "2", "3")
}

func TestProjectCreatedAtTreatsMissingAsEarliest(t *testing.T) {
	places := tripFixture()
	places = append(places, place("4", "Oslo", models.StatusWant, false, "", models.Meta{}))

	asc := Project(places, DefaultFilter(), SortState{Key: SortCreatedAt, Direction: Asc})
	assertIDs(t, asc, "4", "2", "1", "3")

	desc := Project(places, DefaultFilter(), SortState{Key: SortCreatedAt, Direction: Desc})
	assertIDs(t, desc, "3", "1", "2", "4")
}

func TestProjectMissingStatusCountsAsWant(t *testing.T) {
	places := []models.UserPlace{place("x", "X", "", false, "", models.Meta{})}
	filter := DefaultFilter()
	filter.Status = []models.PlaceStatus{models.StatusWant}

	assertIDs(t, Filter(places, filter), "x")

	filter.Status = []models.PlaceStatus{models.StatusVisited}
	assertIDs(t, Filter(places, filter))
}

func TestProjectUnknownStatusCountsAsWant(t *testing.T) {
	places := []models.UserPlace{
		place("x", "X", "someday", false, "", models.Meta{}),
		place("y", "Y", models.StatusVisited, false, "", models.Meta{}),
	}
	filter := DefaultFilter()
	filter.Status = []models.PlaceStatus{models.StatusWant}

	assertIDs(t, Filter(places, filter), "x")
	assertIDs(t, Project(places, DefaultFilter(), SortState{Key: SortStatus, Direction: Asc}), "x", "y")
}

func TestFilterPlannedDateModes(t *testing.T) {
	places := []models.UserPlace{
		place("early", "Early", "", false, "", models.Meta{PlannedDate: date("2025-01-10")}),
		place("exact", "Exact", "", false, "", models.Meta{PlannedDate: date("2025-06-01")}),
		place("late", "Late", "", false, "", models.Meta{PlannedDate: date("2026-02-01")}),
		place("none", "None", "", false, "", models.Meta{}),
	}

	tests := []struct {
		name   string
		filter DateFilter
		want   []string
	}{
		{"any", DateFilter{Mode: DateAny}, []string{"early", "exact", "late", "none"}},
		{"with date", DateFilter{Mode: DateWith}, []string{"early", "exact", "late"}},
		{"without date", DateFilter{Mode: DateWithout}, []string{"none"}},
		{"before is strict", DateFilter{Mode: DateBefore, Value: "2025-06-01"}, []string{"early"}},
		{"after is strict", DateFilter{Mode: DateAfter, Value: "2025-06-01"}, []string{"late"}},
		{"before without bound", DateFilter{Mode: DateBefore}, []string{"early", "exact", "late", "none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := DefaultFilter()
			filter.PlannedDate = tt.filter
			assertIDs(t, Filter(places, filter), tt.want...)
		})
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	input := tripFixture()
	snapshot := tripFixture()

	out := Project(input, DefaultFilter(), SortState{Key: SortTitle, Direction: Desc})
	*out[0].Meta.PlannedDate = "1999-01-01"
	out[0].Title = "changed"

	if !reflect.DeepEqual(input, snapshot) {
		t.Fatal("Project modified its input")
	}
}

// randomPlaces builds a collection with many sort-key collisions so that
// stability is actually exercised.
func randomPlaces(r *rand.Rand, n int) []models.UserPlace {
	titles := []string{"Rome", "Paris", "berlin", "Oslo", "rome"}
	dates := []string{"", "2025-01-01", "2025-06-01", "2026-01-01"}
	created := []string{"", "2023-01-01", "2024-01-01"}
	notes := []string{"", "italy trip", "museum", "Italy again"}

	out := make([]models.UserPlace, n)
	for i := range out {
		status := models.StatusWant
		switch r.IntN(3) {
		case 1:
			status = models.StatusVisited
		case 2:
			status = ""
		}
		meta := models.Meta{Notes: notes[r.IntN(len(notes))]}
		if d := dates[r.IntN(len(dates))]; d != "" {
			meta.PlannedDate = date(d)
		}
		out[i] = place(fmt.Sprintf("p%02d", i), titles[r.IntN(len(titles))], status, r.IntN(2) == 0, created[r.IntN(len(created))], meta)
	}
	return out
}

func randomFilters(r *rand.Rand) FilterState {
	f := DefaultFilter()
	switch r.IntN(3) {
	case 1:
		f.Status = []models.PlaceStatus{models.StatusWant}
	case 2:
		f.Status = []models.PlaceStatus{models.StatusVisited, models.StatusWant}
	}
	f.FavoritesOnly = r.IntN(2) == 0
	modes := []DateFilter{
		{Mode: DateAny},
		{Mode: DateWith},
		{Mode: DateWithout},
		{Mode: DateBefore, Value: "2025-06-01"},
		{Mode: DateAfter, Value: "2025-01-01"},
	}
	f.PlannedDate = modes[r.IntN(len(modes))]
	f.Search = []string{"", "ital", "ROME", "x"}[r.IntN(4)]
	return f
}

var allSorts = []SortState{
	{SortTitle, Asc}, {SortTitle, Desc},
	{SortStatus, Asc}, {SortStatus, Desc},
	{SortPlannedDate, Asc}, {SortPlannedDate, Desc},
	{SortCreatedAt, Asc}, {SortCreatedAt, Desc},
}

func TestPassThroughFilterReturnsPermutation(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		places := randomPlaces(r, 20)
		for _, s := range allSorts {
			got := ids(Project(places, DefaultFilter(), s))
			want := ids(places)
			slices.Sort(got)
			slices.Sort(want)
			if !slices.Equal(got, want) {
				t.Fatalf("sort %+v: expected permutation of input", s)
			}
		}
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		places := randomPlaces(r, 15)
		f := randomFilters(r)
		s := allSorts[r.IntN(len(allSorts))]

		once := Project(places, f, s)
		twice := Project(once, f, s)
		if !slices.Equal(ids(once), ids(twice)) {
			t.Fatalf("filter %+v sort %+v: %v != %v", f, s, ids(once), ids(twice))
		}
	}
}

func TestFavoritesOnlyKeepsOnlyFavorites(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 100; i++ {
		f := randomFilters(r)
		f.FavoritesOnly = true
		for _, p := range Project(randomPlaces(r, 15), f, DefaultSort()) {
			if !p.IsFavorite {
				t.Fatalf("non-favorite %s survived favoritesOnly", p.ID)
			}
		}
	}
}

func TestSortIsStable(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	for i := 0; i < 50; i++ {
		places := randomPlaces(r, 25)
		position := make(map[string]int, len(places))
		for idx, p := range places {
			position[p.ID] = idx
		}
		for _, s := range allSorts {
			cmp := comparator(s)
			out := Sort(places, s)
			for j := 1; j < len(out); j++ {
				if cmp(out[j-1], out[j]) == 0 && position[out[j-1].ID] > position[out[j].ID] {
					t.Fatalf("sort %+v reordered equal entries %s and %s", s, out[j-1].ID, out[j].ID)
				}
			}
		}
	}
}

func TestUndatedNeverPrecedesDated(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 10))
	for i := 0; i < 100; i++ {
		for _, dir := range []Direction{Asc, Desc} {
			out := Sort(randomPlaces(r, 20), SortState{Key: SortPlannedDate, Direction: dir})
			seenUndated := false
			for _, p := range out {
				if !p.Meta.HasPlannedDate() {
					seenUndated = true
					continue
				}
				if seenUndated {
					t.Fatalf("%s: dated entry %s after an undated one", dir, p.ID)
				}
			}
		}
	}
}

func TestIsPassThrough(t *testing.T) {
	if !DefaultFilter().IsPassThrough() {
		t.Error("default filter should pass everything through")
	}
	f := DefaultFilter()
	f.PlannedDate = DateFilter{Mode: DateAfter}
	if !f.IsPassThrough() {
		t.Error("after without a bound should be inactive")
	}
	f.Search = "x"
	if f.IsPassThrough() {
		t.Error("search should make the filter active")
	}
}

func TestParseHelpers(t *testing.T) {
	if k, err := ParseSortKey(""); err != nil || k != SortTitle {
		t.Errorf("ParseSortKey(\"\") = %q, %v", k, err)
	}
	if _, err := ParseSortKey("distance"); err == nil {
		t.Error("expected error for unknown sort key")
	}
	if d, err := ParseDirection("DESC"); err != nil || d != Desc {
		t.Errorf("ParseDirection(DESC) = %q, %v", d, err)
	}
	if m, err := ParseDateMode("without-date"); err != nil || m != DateWithout {
		t.Errorf("ParseDateMode = %q, %v", m, err)
	}
	statuses, err := ParseStatuses([]string{"want", " visited", ""})
	if err != nil || len(statuses) != 2 {
		t.Errorf("ParseStatuses = %v, %v", statuses, err)
	}
	if _, err := ParseStatuses([]string{"maybe"}); err == nil {
		t.Error("expected error for unknown status")
	}
}
