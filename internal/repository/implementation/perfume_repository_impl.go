package implementation

import (
	"context"
	"errors"

	"scentence-be/internal/constant"
	"scentence-be/internal/entity"
	"scentence-be/internal/mapper"
	"scentence-be/internal/model"
	"scentence-be/internal/repository/contract"
	"scentence-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PerfumeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PerfumeMapper
}

func NewPerfumeRepository(db *gorm.DB) contract.PerfumeRepository {
	return &PerfumeRepositoryImpl{
		db:     db,
		mapper: mapper.NewPerfumeMapper(),
	}
}

func (r *PerfumeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PerfumeRepositoryImpl) Create(ctx context.Context, perfume *entity.Perfume) error {
	m := &model.Perfume{
		Id:          perfume.Id,
		Name:        perfume.Name,
		Brand:       perfume.Brand,
		Perfumer:    perfume.Perfumer,
		ReleaseYear: perfume.ReleaseYear,
		ImageUrl:    perfume.ImageUrl,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*perfume = *r.mapper.ToEntity(m)
	return nil
}

func (r *PerfumeRepositoryImpl) ReplaceAttributes(ctx context.Context, perfumeId uuid.UUID, attrs *contract.PerfumeAttributes) error {
	db := r.db.WithContext(ctx)

	cleanup := []interface{}{
		&model.PerfumeNote{},
		&model.PerfumeAccord{},
		&model.PerfumeSeason{},
		&model.PerfumeAudience{},
		&model.PerfumeOccasion{},
	}
	for _, m := range cleanup {
		if err := db.Where("perfume_id = ?", perfumeId).Delete(m).Error; err != nil {
			return err
		}
	}

	if len(attrs.Notes) > 0 {
		notes := make([]*model.PerfumeNote, len(attrs.Notes))
		for i, n := range attrs.Notes {
			notes[i] = &model.PerfumeNote{PerfumeId: perfumeId, Note: n.Note, NoteType: n.NoteType, Position: n.Position}
		}
		if err := db.Create(&notes).Error; err != nil {
			return err
		}
	}
	if len(attrs.Accords) > 0 {
		rows := make([]*model.PerfumeAccord, len(attrs.Accords))
		for i, v := range attrs.Accords {
			rows[i] = &model.PerfumeAccord{PerfumeId: perfumeId, Accord: v.Value, Votes: v.Votes}
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}
	if len(attrs.Seasons) > 0 {
		rows := make([]*model.PerfumeSeason, len(attrs.Seasons))
		for i, v := range attrs.Seasons {
			rows[i] = &model.PerfumeSeason{PerfumeId: perfumeId, Season: v.Value, Votes: v.Votes}
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}
	if len(attrs.Genders) > 0 {
		rows := make([]*model.PerfumeAudience, len(attrs.Genders))
		for i, v := range attrs.Genders {
			rows[i] = &model.PerfumeAudience{PerfumeId: perfumeId, Audience: v.Value, Votes: v.Votes}
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}
	if len(attrs.Occasions) > 0 {
		rows := make([]*model.PerfumeOccasion, len(attrs.Occasions))
		for i, v := range attrs.Occasions {
			rows[i] = &model.PerfumeOccasion{PerfumeId: perfumeId, Occasion: v.Value, Votes: v.Votes}
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *PerfumeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Perfume, error) {
	var m model.Perfume
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PerfumeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Perfume{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PerfumeRepositoryImpl) SearchAggregated(ctx context.Context, filters []contract.CatalogFilter, orderPolicy string, limit int) ([]*entity.PerfumeAggregate, error) {
	query := r.db.WithContext(ctx).Model(&model.Perfume{})

	// Each filter narrows the candidate set conjunctively. Attribute
	// constraints use EXISTS subqueries so one filter cannot hide the other
	// attribute rows of a matched record during aggregation.
	for _, f := range filters {
		if len(f.Values) == 0 {
			continue
		}
		switch f.Column {
		case "brand":
			query = query.Where("brand ILIKE ?", f.Values[0])
		case "perfume_name":
			query = query.Where("name ILIKE ?", f.Values[0])
		case "note":
			query = query.Where("EXISTS (SELECT 1 FROM perfume_notes pn WHERE pn.perfume_id = perfumes.id AND pn.note IN ?)", f.Values)
		case "season":
			query = query.Where("EXISTS (SELECT 1 FROM perfume_seasons ps WHERE ps.perfume_id = perfumes.id AND ps.season = ?)", f.Values[0])
		case "gender":
			query = query.Where("EXISTS (SELECT 1 FROM perfume_audiences pa WHERE pa.perfume_id = perfumes.id AND pa.audience = ?)", f.Values[0])
		case "occasion":
			query = query.Where("EXISTS (SELECT 1 FROM perfume_occasions po WHERE po.perfume_id = perfumes.id AND po.occasion = ?)", f.Values[0])
		case "accord":
			query = query.Where("EXISTS (SELECT 1 FROM perfume_accords pc WHERE pc.perfume_id = perfumes.id AND pc.accord = ?)", f.Values[0])
		default:
			// Unknown column from the planner, skip it
			continue
		}
	}

	if orderPolicy == constant.OrderPolicyRelevance {
		// Popularity proxy: total accord votes
		query = query.Order("(SELECT COALESCE(SUM(pc.votes), 0) FROM perfume_accords pc WHERE pc.perfume_id = perfumes.id) DESC")
	} else {
		// Identical filters should not always surface the same records
		query = query.Order("RANDOM()")
	}

	var perfumes []*model.Perfume
	if err := query.Limit(limit).Find(&perfumes).Error; err != nil {
		return nil, err
	}
	if len(perfumes) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(perfumes))
	aggregates := make(map[uuid.UUID]*entity.PerfumeAggregate, len(perfumes))
	ordered := make([]*entity.PerfumeAggregate, len(perfumes))
	for i, p := range perfumes {
		ids[i] = p.Id
		agg := &entity.PerfumeAggregate{Id: p.Id, Name: p.Name, Brand: p.Brand}
		aggregates[p.Id] = agg
		ordered[i] = agg
	}

	if err := r.hydrateAttributes(ctx, ids, aggregates); err != nil {
		return nil, err
	}
	return ordered, nil
}

func (r *PerfumeRepositoryImpl) hydrateAttributes(ctx context.Context, ids []uuid.UUID, aggregates map[uuid.UUID]*entity.PerfumeAggregate) error {
	db := r.db.WithContext(ctx)

	var notes []*model.PerfumeNote
	if err := db.Where("perfume_id IN ?", ids).Order("note_type, position").Find(&notes).Error; err != nil {
		return err
	}
	for _, n := range notes {
		agg := aggregates[n.PerfumeId]
		agg.Notes = append(agg.Notes, n.Note)
	}

	var accords []*model.PerfumeAccord
	if err := db.Where("perfume_id IN ?", ids).Order("votes DESC").Find(&accords).Error; err != nil {
		return err
	}
	for _, a := range accords {
		agg := aggregates[a.PerfumeId]
		agg.Accords = append(agg.Accords, entity.WeightedValue{Value: a.Accord, Votes: a.Votes})
	}

	var seasons []*model.PerfumeSeason
	if err := db.Where("perfume_id IN ?", ids).Order("votes DESC").Find(&seasons).Error; err != nil {
		return err
	}
	for _, s := range seasons {
		agg := aggregates[s.PerfumeId]
		agg.Seasons = append(agg.Seasons, entity.WeightedValue{Value: s.Season, Votes: s.Votes})
	}

	var audiences []*model.PerfumeAudience
	if err := db.Where("perfume_id IN ?", ids).Order("votes DESC").Find(&audiences).Error; err != nil {
		return err
	}
	for _, a := range audiences {
		agg := aggregates[a.PerfumeId]
		agg.Genders = append(agg.Genders, entity.WeightedValue{Value: a.Audience, Votes: a.Votes})
	}

	var occasions []*model.PerfumeOccasion
	if err := db.Where("perfume_id IN ?", ids).Order("votes DESC").Find(&occasions).Error; err != nil {
		return err
	}
	for _, o := range occasions {
		agg := aggregates[o.PerfumeId]
		agg.Occasions = append(agg.Occasions, entity.WeightedValue{Value: o.Occasion, Votes: o.Votes})
	}

	return nil
}

func (r *PerfumeRepositoryImpl) FindCanonicalName(ctx context.Context, column string, keyword string) (string, error) {
	var field string
	switch column {
	case "brand":
		field = "brand"
	case "perfume_name":
		field = "name"
	default:
		return "", nil
	}

	var value string
	err := r.db.WithContext(ctx).
		Model(&model.Perfume{}).
		Select(field).
		Where(field+" ILIKE ?", "%"+keyword+"%").
		Limit(1).
		Scan(&value).Error
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *PerfumeRepositoryImpl) DistinctAttributeValues(ctx context.Context) (map[string][]string, error) {
	db := r.db.WithContext(ctx)
	meta := make(map[string][]string, 4)

	sources := []struct {
		key    string
		model  interface{}
		column string
	}{
		{"SEASONS", &model.PerfumeSeason{}, "season"},
		{"GENDERS", &model.PerfumeAudience{}, "audience"},
		{"OCCASIONS", &model.PerfumeOccasion{}, "occasion"},
		{"ACCORDS", &model.PerfumeAccord{}, "accord"},
	}
	for _, src := range sources {
		var values []string
		if err := db.Model(src.model).Distinct(src.column).Where(src.column+" IS NOT NULL").Pluck(src.column, &values).Error; err != nil {
			return nil, err
		}
		meta[src.key] = values
	}
	return meta, nil
}
