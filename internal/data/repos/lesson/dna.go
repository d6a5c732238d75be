package lesson

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/dbctx"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type DNARepo interface {
	Get(dbc dbctx.Context, lessonID string) (*domain.LessonDNA, error)
	GetByDay(dbc dbctx.Context, dayOfYear int) (*domain.LessonDNA, error)
	Upsert(dbc dbctx.Context, dna *domain.LessonDNA) error
	ListIDs(dbc dbctx.Context) ([]string, error)
}

type dnaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDNARepo(db *gorm.DB, baseLog *logger.Logger) DNARepo {
	return &dnaRepo{
		db:  db,
		log: baseLog.With("repo", "DNARepo"),
	}
}

func (r *dnaRepo) Get(dbc dbctx.Context, lessonID string) (*domain.LessonDNA, error) {
	return r.first(dbc, "get_dna", "lesson_id = ?", lessonID)
}

func (r *dnaRepo) GetByDay(dbc dbctx.Context, dayOfYear int) (*domain.LessonDNA, error) {
	if dayOfYear <= 0 {
		return nil, nil
	}
	return r.first(dbc, "get_dna_by_day", "day_of_year = ?", dayOfYear)
}

func (r *dnaRepo) first(dbc dbctx.Context, op string, where string, arg interface{}) (*domain.LessonDNA, error) {
	var rows []domain.DNARow
	if err := dbc.DB(r.db).Where(where, arg).Order("lesson_id ASC").Limit(1).Find(&rows).Error; err != nil {
		return nil, storageErr(r.log, op, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	dna, err := rows[0].DNA()
	if err != nil {
		return nil, storageErr(r.log, op, err)
	}
	return dna, nil
}

func (r *dnaRepo) Upsert(dbc dbctx.Context, dna *domain.LessonDNA) error {
	row, err := domain.NewDNARow(dna)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	row.CreatedAt = now
	row.UpdatedAt = now
	err = dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"day_of_year", "body", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return storageErr(r.log, "upsert_dna", err)
	}
	return nil
}

func (r *dnaRepo) ListIDs(dbc dbctx.Context) ([]string, error) {
	var ids []string
	if err := dbc.DB(r.db).Model(&domain.DNARow{}).Order("lesson_id ASC").Pluck("lesson_id", &ids).Error; err != nil {
		return nil, storageErr(r.log, "list_dna", err)
	}
	return ids, nil
}
