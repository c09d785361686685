package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"scentence-be/internal/config"
	"scentence-be/internal/entity"
	"scentence-be/internal/repository/contract"
	"scentence-be/internal/repository/implementation"
	"scentence-be/pkg/database"
	"scentence-be/pkg/embedding"

	"github.com/fatih/color"
)

// perfumeRecord is one line of the catalog export (JSONL).
type perfumeRecord struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Perfumer    string `json:"perfumer"`
	ReleaseYear int    `json:"release_year"`
	ImageUrl    string `json:"image_url"`

	Notes struct {
		Top    []string `json:"top"`
		Middle []string `json:"middle"`
		Base   []string `json:"base"`
	} `json:"notes"`

	Accords   map[string]int `json:"accords"`
	Seasons   map[string]int `json:"seasons"`
	Genders   map[string]int `json:"genders"`
	Occasions map[string]int `json:"occasions"`
}

func main() {
	catalogPath := flag.String("catalog", "data/perfumes.jsonl", "path to the perfume catalog export (JSONL)")
	embedNotes := flag.Bool("embed-notes", true, "embed the note vocabulary after loading the catalog")
	flag.Parse()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	perfumeRepo := implementation.NewPerfumeRepository(db)
	noteRepo := implementation.NewNoteEmbeddingRepository(db)

	color.Cyan("=== Loading perfume catalog from %s ===", *catalogPath)
	vocabulary, err := loadCatalog(ctx, perfumeRepo, *catalogPath)
	if err != nil {
		log.Fatal("Error: Catalog load failed:", err)
	}

	if *embedNotes {
		color.Cyan("=== Embedding note vocabulary (%d terms) ===", len(vocabulary))

		var embedder embedding.EmbeddingProvider
		if cfg.Ai.EmbeddingProvider == "openai" {
			embedder = embedding.NewOpenAIProvider(cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingAPIKey, cfg.Ai.EmbeddingModel)
		} else {
			embedder = embedding.NewOllamaProvider(cfg.Ai.EmbeddingBaseURL, cfg.Ai.EmbeddingModel)
		}

		if err := embedVocabulary(ctx, noteRepo, embedder, vocabulary); err != nil {
			log.Fatal("Error: Note embedding failed:", err)
		}
	}

	color.Green("✅ Seeding completed")
}

// loadCatalog streams the JSONL export into the catalog tables and returns
// the distinct note vocabulary encountered.
func loadCatalog(ctx context.Context, repo contract.PerfumeRepository, path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	vocabulary := make(map[string]struct{})
	created, skipped, failed := 0, 0, 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec perfumeRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			color.Yellow("Skipping malformed line: %v", err)
			failed++
			continue
		}
		if rec.Name == "" || rec.Brand == "" {
			skipped++
			continue
		}

		perfume := &entity.Perfume{
			Name:        rec.Name,
			Brand:       rec.Brand,
			Perfumer:    rec.Perfumer,
			ReleaseYear: rec.ReleaseYear,
			ImageUrl:    rec.ImageUrl,
		}
		if err := repo.Create(ctx, perfume); err != nil {
			color.Yellow("Failed to create %s - %s: %v", rec.Brand, rec.Name, err)
			failed++
			continue
		}

		attrs := buildAttributes(&rec)
		if err := repo.ReplaceAttributes(ctx, perfume.Id, attrs); err != nil {
			color.Yellow("Failed to attach attributes for %s - %s: %v", rec.Brand, rec.Name, err)
			failed++
			continue
		}

		for _, np := range attrs.Notes {
			vocabulary[np.Note] = struct{}{}
		}
		created++
		if created%100 == 0 {
			color.White("... %d perfumes loaded", created)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	color.Green("Catalog load done: %d created, %d skipped, %d failed", created, skipped, failed)

	terms := make([]string, 0, len(vocabulary))
	for term := range vocabulary {
		terms = append(terms, term)
	}
	return terms, nil
}

func buildAttributes(rec *perfumeRecord) *contract.PerfumeAttributes {
	attrs := &contract.PerfumeAttributes{
		Accords:   toWeighted(rec.Accords),
		Seasons:   toWeighted(rec.Seasons),
		Genders:   toWeighted(rec.Genders),
		Occasions: toWeighted(rec.Occasions),
	}

	appendNotes := func(notes []string, noteType string) {
		for i, note := range notes {
			note = strings.TrimSpace(note)
			if note == "" {
				continue
			}
			attrs.Notes = append(attrs.Notes, contract.NotePosition{
				Note:     note,
				NoteType: noteType,
				Position: i,
			})
		}
	}
	appendNotes(rec.Notes.Top, "top")
	appendNotes(rec.Notes.Middle, "middle")
	appendNotes(rec.Notes.Base, "base")

	return attrs
}

func toWeighted(votes map[string]int) []entity.WeightedValue {
	values := make([]entity.WeightedValue, 0, len(votes))
	for value, count := range votes {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		values = append(values, entity.WeightedValue{Value: value, Votes: count})
	}
	return values
}

// embedVocabulary embeds each note term not already stored. Terms are
// embedded one by one so a single provider hiccup only costs that term.
func embedVocabulary(ctx context.Context, repo contract.NoteEmbeddingRepository, embedder embedding.EmbeddingProvider, terms []string) error {
	existing := make(map[string]struct{})
	for _, term := range terms {
		stored, err := repo.FindNotesLike(ctx, term, 1)
		if err == nil && len(stored) > 0 && strings.EqualFold(stored[0], term) {
			existing[term] = struct{}{}
		}
	}

	batch := make([]*entity.NoteEmbedding, 0, len(terms))
	for _, term := range terms {
		if _, ok := existing[term]; ok {
			continue
		}
		res, err := embedder.Generate(term, "RETRIEVAL_DOCUMENT")
		if err != nil {
			color.Yellow("Failed to embed %q: %v", term, err)
			continue
		}
		if len(res.Embedding.Values) == 0 {
			continue
		}
		batch = append(batch, &entity.NoteEmbedding{
			Note:      term,
			Embedding: res.Embedding.Values,
		})
	}

	if len(batch) == 0 {
		color.White("Nothing new to embed")
		return nil
	}
	if err := repo.CreateBulk(ctx, batch); err != nil {
		return err
	}
	color.Green("Embedded %d new note terms", len(batch))
	return nil
}
