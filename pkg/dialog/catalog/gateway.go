package catalog

import (
	"context"
	"fmt"
	"strings"

	"scentence-be/internal/constant"
	"scentence-be/internal/entity"
	"scentence-be/internal/repository/contract"
	"scentence-be/pkg/embedding"
	"scentence-be/pkg/store"
)

// Gateway is the single surface the dialog pipeline uses to reach the
// catalog: entity correction, keyword expansion, filtered aggregate search
// and metadata snapshots. It owns no conversation state.
type Gateway struct {
	perfumes    contract.PerfumeRepository
	notes       contract.NoteEmbeddingRepository
	embedder    embedding.EmbeddingProvider
	orderPolicy string
}

func NewGateway(
	perfumes contract.PerfumeRepository,
	notes contract.NoteEmbeddingRepository,
	embedder embedding.EmbeddingProvider,
	orderPolicy string,
) *Gateway {
	if orderPolicy == "" {
		orderPolicy = constant.OrderPolicyRandom
	}
	return &Gateway{
		perfumes:    perfumes,
		notes:       notes,
		embedder:    embedder,
		orderPolicy: orderPolicy,
	}
}

// Metadata snapshots the valid categorical filter values. Fetched fresh per
// planning call so the planner never proposes stale values. Falls back to a
// minimal static vocabulary when the store is unreachable.
func (g *Gateway) Metadata(ctx context.Context) map[string][]string {
	meta, err := g.perfumes.DistinctAttributeValues(ctx)
	if err != nil || meta == nil {
		return map[string][]string{
			"SEASONS":   {"Spring", "Summer", "Fall", "Winter"},
			"GENDERS":   {"Feminine", "Masculine", "Unisex"},
			"OCCASIONS": {"Daily", "Formal", "Date", "Party"},
			"ACCORDS":   {"Citrus", "Woody", "Floral", "Musk"},
		}
	}
	return meta
}

// CorrectEntity resolves a fuzzy brand or perfume name to its canonical
// stored form. Best effort: the original keyword survives any failure.
func (g *Gateway) CorrectEntity(ctx context.Context, column string, keyword string) string {
	corrected, err := g.perfumes.FindCanonicalName(ctx, column, keyword)
	if err != nil || corrected == "" {
		return keyword
	}
	return corrected
}

// ExpandNotes resolves a free-text keyword to stored note terms: literal
// substring matches first, nearest embedding terms to fill up to topK.
func (g *Gateway) ExpandNotes(ctx context.Context, keyword string, topK int) []string {
	if keyword == "" || topK <= 0 {
		return nil
	}

	found, err := g.notes.FindNotesLike(ctx, keyword, topK)
	if err != nil {
		found = nil
	}
	if len(found) >= topK {
		return dedupe(found)
	}

	resp, err := g.embedder.Generate(keyword, "retrieval_query")
	if err != nil {
		return dedupe(found)
	}
	similar, err := g.notes.SearchSimilar(ctx, resp.Embedding.Values, topK-len(found), found)
	if err != nil {
		return dedupe(found)
	}
	return dedupe(append(found, similar...))
}

// ExecutePlan resolves one plan's filters and runs the catalog search.
// Returns the formatted result block and whether any record matched. A plan
// that resolves to zero usable filters makes no store call at all.
func (g *Gateway) ExecutePlan(ctx context.Context, query string, plan store.Plan) (string, bool) {
	filters := g.resolveFilters(ctx, plan)

	noteTerms := g.expandPlanNotes(ctx, query, plan)
	if len(noteTerms) > 0 {
		filters = append(filters, contract.CatalogFilter{Column: "note", Values: noteTerms})
	}

	if len(filters) == 0 {
		return "", false
	}

	records, err := g.perfumes.SearchAggregated(ctx, filters, g.orderPolicy, constant.SearchResultCap)
	if err != nil || len(records) == 0 {
		return "", false
	}
	return g.formatRecords(records), true
}

// resolveFilters validates the planner's raw filters and corrects identity
// columns. Invalid filter shapes are dropped per item.
func (g *Gateway) resolveFilters(ctx context.Context, plan store.Plan) []contract.CatalogFilter {
	var filters []contract.CatalogFilter
	for _, f := range plan.Filters {
		if f.Column == "" || f.Value == nil {
			continue
		}

		// The note column may carry a value list; every other column is scalar
		if values := asStringSlice(f.Value); len(values) > 0 {
			if f.Column == "note" {
				filters = append(filters, contract.CatalogFilter{Column: f.Column, Values: values})
			}
			continue
		}

		value, ok := f.Value.(string)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if f.Column == "brand" || f.Column == "perfume_name" {
			value = g.CorrectEntity(ctx, f.Column, value)
		}
		filters = append(filters, contract.CatalogFilter{Column: f.Column, Values: []string{value}})
	}
	return filters
}

// expandPlanNotes unions the vector expansion of the raw query (when the
// plan asks for it) with per-keyword expansions, duplicates removed.
func (g *Gateway) expandPlanNotes(ctx context.Context, query string, plan store.Plan) []string {
	var terms []string
	if plan.UseVectorSearch {
		terms = append(terms, g.ExpandNotes(ctx, query, constant.QueryExpansionTopK)...)
	}
	for _, k := range plan.NoteKeywords {
		terms = append(terms, g.ExpandNotes(ctx, k, constant.KeywordExpansionTopK)...)
	}
	return dedupe(terms)
}

// FilterDominant keeps only attribute values holding at least threshold of
// the total vote weight. If nothing survives, the single heaviest value is
// kept so a record never loses an attribute entirely. Idempotent.
func FilterDominant(values []entity.WeightedValue, threshold float64) []entity.WeightedValue {
	if len(values) == 0 {
		return nil
	}

	total := 0
	for _, v := range values {
		total += v.Votes
	}
	if total <= 0 {
		return values[:1]
	}

	var kept []entity.WeightedValue
	top := values[0]
	for _, v := range values {
		if v.Votes > top.Votes {
			top = v
		}
		if float64(v.Votes) >= threshold*float64(total) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return []entity.WeightedValue{top}
	}
	return kept
}

func (g *Gateway) formatRecords(records []*entity.PerfumeAggregate) string {
	var sb strings.Builder
	sb.WriteString("[Catalog results]\n\n")
	for i, r := range records {
		accords := FilterDominant(r.Accords, constant.AccordWeightThreshold)
		seasons := FilterDominant(r.Seasons, constant.SeasonWeightThreshold)
		genders := FilterDominant(r.Genders, constant.AccordWeightThreshold)
		occasions := FilterDominant(r.Occasions, constant.AccordWeightThreshold)

		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, r.Brand, r.Name))
		sb.WriteString(fmt.Sprintf("   - Accords: %s\n", joinWeighted(accords)))
		sb.WriteString(fmt.Sprintf("   - Mood: %s / %s / %s\n", joinWeighted(seasons), joinWeighted(genders), joinWeighted(occasions)))
		sb.WriteString(fmt.Sprintf("   - Key notes: %s\n\n", strings.Join(r.Notes, ", ")))
	}
	return sb.String()
}

func joinWeighted(values []entity.WeightedValue) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.Value
	}
	return strings.Join(parts, ", ")
}

// asStringSlice unwraps a JSON-decoded list value, returning nil for scalars.
func asStringSlice(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
