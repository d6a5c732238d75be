package lesson

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/dbctx"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type VariationFilter struct {
	LessonID string
	Date     string
	Limit    int
	Offset   int
}

type VariationRepo interface {
	Get(dbc dbctx.Context, key string) (*domain.LessonVariation, error)
	// InsertIfAbsent stores v unless the key already exists and returns the
	// canonical stored value. inserted reports whether this call wrote it.
	InsertIfAbsent(dbc dbctx.Context, v *domain.LessonVariation) (stored *domain.LessonVariation, inserted bool, err error)
	UpdateMediaURLs(dbc dbctx.Context, key string, audioURL, videoURL *string) error
	List(dbc dbctx.Context, f VariationFilter) ([]*domain.LessonVariation, int64, error)
	Exists(dbc dbctx.Context, key string) (bool, error)
}

type variationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVariationRepo(db *gorm.DB, baseLog *logger.Logger) VariationRepo {
	return &variationRepo{
		db:  db,
		log: baseLog.With("repo", "VariationRepo"),
	}
}

func (r *variationRepo) Get(dbc dbctx.Context, key string) (*domain.LessonVariation, error) {
	var rows []domain.VariationRow
	if err := dbc.DB(r.db).Where("variation_key = ?", key).Limit(1).Find(&rows).Error; err != nil {
		return nil, storageErr(r.log, "get_variation", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	v, err := rows[0].Variation()
	if err != nil {
		return nil, storageErr(r.log, "decode_variation", err)
	}
	return v, nil
}

func (r *variationRepo) InsertIfAbsent(dbc dbctx.Context, v *domain.LessonVariation) (*domain.LessonVariation, bool, error) {
	row, err := domain.NewVariationRow(v)
	if err != nil {
		return nil, false, err
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "variation_key"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return nil, false, storageErr(r.log, "insert_variation", res.Error)
	}
	inserted := res.RowsAffected == 1

	stored, err := r.Get(dbc, v.Key)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, storageErr(r.log, "insert_variation", gorm.ErrRecordNotFound)
	}
	return stored, inserted, nil
}

func (r *variationRepo) UpdateMediaURLs(dbc dbctx.Context, key string, audioURL, videoURL *string) error {
	updates := map[string]interface{}{}
	if audioURL != nil {
		updates["audio_url"] = *audioURL
	}
	if videoURL != nil {
		updates["video_url"] = *videoURL
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := dbc.DB(r.db).
		Model(&domain.VariationRow{}).
		Where("variation_key = ?", key).
		Updates(updates)
	if res.Error != nil {
		return storageErr(r.log, "update_media_urls", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.VariationNotFound(key)
	}
	return nil
}

func (r *variationRepo) List(dbc dbctx.Context, f VariationFilter) ([]*domain.LessonVariation, int64, error) {
	scoped := func() *gorm.DB {
		q := dbc.DB(r.db).Model(&domain.VariationRow{})
		if f.LessonID != "" {
			q = q.Where("lesson_id = ?", f.LessonID)
		}
		if f.Date != "" {
			q = q.Where("lesson_date = ?", f.Date)
		}
		return q
	}
	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, storageErr(r.log, "count_variations", err)
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	var rows []domain.VariationRow
	if err := scoped().Order("created_at DESC").Order("variation_key ASC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, storageErr(r.log, "list_variations", err)
	}
	out := make([]*domain.LessonVariation, 0, len(rows))
	for i := range rows {
		v, err := rows[i].Variation()
		if err != nil {
			return nil, 0, storageErr(r.log, "decode_variation", err)
		}
		out = append(out, v)
	}
	return out, total, nil
}

func (r *variationRepo) Exists(dbc dbctx.Context, key string) (bool, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&domain.VariationRow{}).Where("variation_key = ?", key).Count(&n).Error; err != nil {
		return false, storageErr(r.log, "exists_variation", err)
	}
	return n > 0, nil
}
