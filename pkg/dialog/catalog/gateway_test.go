package catalog

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"scentence-be/internal/entity"
	"scentence-be/internal/repository/contract"
	"scentence-be/internal/repository/specification"
	"scentence-be/pkg/embedding"
	"scentence-be/pkg/store"

	"github.com/google/uuid"
)

type fakePerfumeRepo struct {
	records       []*entity.PerfumeAggregate
	searchErr     error
	canonical     map[string]string
	meta          map[string][]string
	metaErr       error
	searchCalls   int
	searchFilters []contract.CatalogFilter
}

func (f *fakePerfumeRepo) Create(ctx context.Context, perfume *entity.Perfume) error { return nil }
func (f *fakePerfumeRepo) ReplaceAttributes(ctx context.Context, perfumeId uuid.UUID, attrs *contract.PerfumeAttributes) error {
	return nil
}
func (f *fakePerfumeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Perfume, error) {
	return nil, nil
}
func (f *fakePerfumeRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (f *fakePerfumeRepo) SearchAggregated(ctx context.Context, filters []contract.CatalogFilter, orderPolicy string, limit int) ([]*entity.PerfumeAggregate, error) {
	f.searchCalls++
	f.searchFilters = filters
	return f.records, f.searchErr
}
func (f *fakePerfumeRepo) FindCanonicalName(ctx context.Context, column string, keyword string) (string, error) {
	return f.canonical[keyword], nil
}
func (f *fakePerfumeRepo) DistinctAttributeValues(ctx context.Context) (map[string][]string, error) {
	return f.meta, f.metaErr
}

type fakeNoteRepo struct {
	likeResults map[string][]string
	similar     []string
}

func (f *fakeNoteRepo) Create(ctx context.Context, e *entity.NoteEmbedding) error        { return nil }
func (f *fakeNoteRepo) CreateBulk(ctx context.Context, es []*entity.NoteEmbedding) error { return nil }
func (f *fakeNoteRepo) Count(ctx context.Context) (int64, error)                         { return 0, nil }
func (f *fakeNoteRepo) FindNotesLike(ctx context.Context, keyword string, limit int) ([]string, error) {
	res := f.likeResults[keyword]
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
func (f *fakeNoteRepo) SearchSimilar(ctx context.Context, emb []float32, limit int, exclude []string) ([]string, error) {
	var out []string
	for _, s := range f.similar {
		skip := false
		for _, e := range exclude {
			if s == e {
				skip = true
			}
		}
		if !skip && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

func TestFilterDominant(t *testing.T) {
	tests := []struct {
		name      string
		values    []entity.WeightedValue
		threshold float64
		want      []string
	}{
		{
			name: "keeps values above threshold",
			values: []entity.WeightedValue{
				{Value: "Citrus", Votes: 80},
				{Value: "Woody", Votes: 15},
				{Value: "Musk", Votes: 5},
			},
			threshold: 0.10,
			want:      []string{"Citrus", "Woody"},
		},
		{
			name: "keeps top value when nothing passes",
			values: []entity.WeightedValue{
				{Value: "a", Votes: 1}, {Value: "b", Votes: 1}, {Value: "c", Votes: 1},
				{Value: "d", Votes: 1}, {Value: "e", Votes: 2}, {Value: "f", Votes: 1},
				{Value: "g", Votes: 1}, {Value: "h", Votes: 1}, {Value: "i", Votes: 1},
				{Value: "j", Votes: 1}, {Value: "k", Votes: 1},
			},
			threshold: 0.5,
			want:      []string{"e"},
		},
		{
			name:      "empty input",
			values:    nil,
			threshold: 0.10,
			want:      nil,
		},
		{
			name:      "zero total votes keeps first",
			values:    []entity.WeightedValue{{Value: "x", Votes: 0}, {Value: "y", Votes: 0}},
			threshold: 0.10,
			want:      []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDominant(tt.values, tt.threshold)
			names := make([]string, len(got))
			for i, v := range got {
				names[i] = v.Value
			}
			if !reflect.DeepEqual(names, tt.want) && !(len(names) == 0 && len(tt.want) == 0) {
				t.Errorf("FilterDominant() = %v, want %v", names, tt.want)
			}
		})
	}
}

func TestFilterDominantIdempotent(t *testing.T) {
	values := []entity.WeightedValue{
		{Value: "Citrus", Votes: 80},
		{Value: "Woody", Votes: 15},
		{Value: "Musk", Votes: 5},
	}
	once := FilterDominant(values, 0.10)
	twice := FilterDominant(once, 0.10)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second application changed the result: %v -> %v", once, twice)
	}
}

func TestExecutePlanZeroFiltersSkipsStore(t *testing.T) {
	perfumes := &fakePerfumeRepo{}
	g := NewGateway(perfumes, &fakeNoteRepo{}, &fakeEmbedder{}, "")

	plan := store.Plan{StrategyName: "empty", Filters: []store.Filter{
		{Column: "", Value: "x"},
		{Column: "brand", Value: 42}, // non-string scalar dropped
	}}

	text, ok := g.ExecutePlan(context.Background(), "query", plan)
	if ok || text != "" {
		t.Errorf("empty plan produced a result: %q", text)
	}
	if perfumes.searchCalls != 0 {
		t.Errorf("store searched %d times for a filterless plan, want 0", perfumes.searchCalls)
	}
}

func TestExecutePlanCorrectsIdentityColumns(t *testing.T) {
	perfumes := &fakePerfumeRepo{
		canonical: map[string]string{"chanl": "Chanel"},
		records: []*entity.PerfumeAggregate{{
			Name: "No 5", Brand: "Chanel",
			Accords: []entity.WeightedValue{{Value: "Floral", Votes: 10}},
		}},
	}
	g := NewGateway(perfumes, &fakeNoteRepo{}, &fakeEmbedder{}, "")

	plan := store.Plan{StrategyName: "brand", Filters: []store.Filter{
		{Column: "brand", Value: "chanl"},
	}}

	text, ok := g.ExecutePlan(context.Background(), "chanel perfume", plan)
	if !ok {
		t.Fatal("expected a match")
	}
	if len(perfumes.searchFilters) != 1 || perfumes.searchFilters[0].Values[0] != "Chanel" {
		t.Errorf("brand not corrected: %+v", perfumes.searchFilters)
	}
	if !strings.Contains(text, "[Chanel] No 5") {
		t.Errorf("formatted output = %q", text)
	}
}

func TestExecutePlanListValueOnlyForNotes(t *testing.T) {
	perfumes := &fakePerfumeRepo{records: []*entity.PerfumeAggregate{{Name: "X", Brand: "Y"}}}
	g := NewGateway(perfumes, &fakeNoteRepo{}, &fakeEmbedder{}, "")

	plan := store.Plan{StrategyName: "lists", Filters: []store.Filter{
		{Column: "note", Value: []interface{}{"Rose", "Jasmine"}},
		{Column: "season", Value: []interface{}{"Summer"}}, // list on a scalar column is dropped
	}}

	_, ok := g.ExecutePlan(context.Background(), "", plan)
	if !ok {
		t.Fatal("expected a match")
	}
	if len(perfumes.searchFilters) != 1 {
		t.Fatalf("filters = %+v, want only the note filter", perfumes.searchFilters)
	}
	if perfumes.searchFilters[0].Column != "note" || len(perfumes.searchFilters[0].Values) != 2 {
		t.Errorf("note filter = %+v", perfumes.searchFilters[0])
	}
}

func TestExpandNotes(t *testing.T) {
	notes := &fakeNoteRepo{
		likeResults: map[string][]string{"ros": {"Rose"}},
		similar:     []string{"Rose", "Peony", "Jasmine"},
	}
	g := NewGateway(&fakePerfumeRepo{}, notes, &fakeEmbedder{}, "")

	// Literal match first, vector fill to topK, no duplicates
	got := g.ExpandNotes(context.Background(), "ros", 3)
	want := []string{"Rose", "Peony", "Jasmine"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandNotes = %v, want %v", got, want)
	}

	// Literal matches alone satisfy topK; no embedding call needed
	notes.likeResults["ros"] = []string{"Rose", "Rosewood"}
	got = g.ExpandNotes(context.Background(), "ros", 2)
	if !reflect.DeepEqual(got, []string{"Rose", "Rosewood"}) {
		t.Errorf("ExpandNotes = %v", got)
	}
}

func TestExpandNotesEmbedderFailure(t *testing.T) {
	notes := &fakeNoteRepo{likeResults: map[string][]string{"ros": {"Rose"}}}
	g := NewGateway(&fakePerfumeRepo{}, notes, &fakeEmbedder{err: errors.New("down")}, "")

	got := g.ExpandNotes(context.Background(), "ros", 3)
	if !reflect.DeepEqual(got, []string{"Rose"}) {
		t.Errorf("literal matches lost on embedder failure: %v", got)
	}
}

func TestMetadataFallback(t *testing.T) {
	perfumes := &fakePerfumeRepo{metaErr: errors.New("db down")}
	g := NewGateway(perfumes, &fakeNoteRepo{}, &fakeEmbedder{}, "")

	meta := g.Metadata(context.Background())
	if len(meta["SEASONS"]) == 0 || len(meta["ACCORDS"]) == 0 {
		t.Errorf("fallback vocabulary missing: %v", meta)
	}
}

func TestFormatRecordsFiltersWeakAttributes(t *testing.T) {
	perfumes := &fakePerfumeRepo{records: []*entity.PerfumeAggregate{{
		Name: "No 5", Brand: "Chanel",
		Notes: []string{"Aldehydes", "Rose"},
		Accords: []entity.WeightedValue{
			{Value: "Floral", Votes: 90},
			{Value: "Powdery", Votes: 2},
		},
		Seasons: []entity.WeightedValue{{Value: "Spring", Votes: 50}},
	}}}
	g := NewGateway(perfumes, &fakeNoteRepo{}, &fakeEmbedder{}, "")

	plan := store.Plan{Filters: []store.Filter{{Column: "brand", Value: "Chanel"}}}
	text, ok := g.ExecutePlan(context.Background(), "", plan)
	if !ok {
		t.Fatal("expected a match")
	}
	if strings.Contains(text, "Powdery") {
		t.Errorf("weak accord survived: %q", text)
	}
	if !strings.Contains(text, "Floral") || !strings.Contains(text, "Aldehydes, Rose") {
		t.Errorf("formatted output = %q", text)
	}
}
