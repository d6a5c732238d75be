package lesson

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// VariationRow is the persisted form of a LessonVariation.
type VariationRow struct {
	Key             string         `gorm:"column:variation_key;primaryKey" json:"variation_key"`
	LessonID        string         `gorm:"column:lesson_id;not null;index" json:"lesson_id"`
	LessonDate      string         `gorm:"column:lesson_date;not null;index" json:"lesson_date"`
	Age             int            `gorm:"column:age;not null" json:"age"`
	Tone            string         `gorm:"column:tone;not null" json:"tone"`
	Language        string         `gorm:"column:language;not null" json:"language"`
	Metadata        datatypes.JSON `gorm:"column:lesson_metadata;not null" json:"lesson_metadata"`
	Scripts         datatypes.JSON `gorm:"column:scripts;not null" json:"scripts"`
	ProductionNotes datatypes.JSON `gorm:"column:production_notes" json:"production_notes"`
	AudioURL        *string        `gorm:"column:audio_url" json:"audio_url,omitempty"`
	VideoURL        *string        `gorm:"column:video_url" json:"video_url,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (VariationRow) TableName() string { return "lesson_variation" }

func NewVariationRow(v *LessonVariation) (*VariationRow, error) {
	if v == nil {
		return nil, fmt.Errorf("nil variation")
	}
	key, err := ParseKey(v.Key)
	if err != nil {
		return nil, err
	}
	meta, err := json.Marshal(v.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	scripts, err := json.Marshal(v.Scripts)
	if err != nil {
		return nil, fmt.Errorf("marshal scripts: %w", err)
	}
	notes, err := json.Marshal(v.ProductionNotes)
	if err != nil {
		return nil, fmt.Errorf("marshal production notes: %w", err)
	}
	return &VariationRow{
		Key:             v.Key,
		LessonID:        key.LessonID,
		LessonDate:      key.Date.Format(DateLayout),
		Age:             key.Age,
		Tone:            string(key.Tone),
		Language:        key.Language,
		Metadata:        datatypes.JSON(meta),
		Scripts:         datatypes.JSON(scripts),
		ProductionNotes: datatypes.JSON(notes),
		AudioURL:        v.AudioURL,
		VideoURL:        v.VideoURL,
	}, nil
}

func (r *VariationRow) Variation() (*LessonVariation, error) {
	if r == nil {
		return nil, nil
	}
	v := &LessonVariation{
		Key:      r.Key,
		LessonID: r.LessonID,
		AudioURL: r.AudioURL,
		VideoURL: r.VideoURL,
	}
	if err := json.Unmarshal(r.Metadata, &v.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata for %q: %w", r.Key, err)
	}
	if err := json.Unmarshal(r.Scripts, &v.Scripts); err != nil {
		return nil, fmt.Errorf("decode scripts for %q: %w", r.Key, err)
	}
	if len(r.ProductionNotes) > 0 {
		if err := json.Unmarshal(r.ProductionNotes, &v.ProductionNotes); err != nil {
			return nil, fmt.Errorf("decode production notes for %q: %w", r.Key, err)
		}
	}
	return v, nil
}

// DNARow stores CMS-authored lesson DNA.
type DNARow struct {
	ID        string         `gorm:"column:lesson_id;primaryKey" json:"lesson_id"`
	DayOfYear int            `gorm:"column:day_of_year;index" json:"day_of_year"`
	Body      datatypes.JSON `gorm:"column:body;not null" json:"body"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (DNARow) TableName() string { return "lesson_dna" }

func NewDNARow(dna *LessonDNA) (*DNARow, error) {
	body, err := json.Marshal(dna)
	if err != nil {
		return nil, fmt.Errorf("marshal dna: %w", err)
	}
	return &DNARow{ID: dna.ID, DayOfYear: dna.DayOfYear, Body: datatypes.JSON(body)}, nil
}

func (r *DNARow) DNA() (*LessonDNA, error) {
	if r == nil {
		return nil, nil
	}
	var dna LessonDNA
	if err := json.Unmarshal(r.Body, &dna); err != nil {
		return nil, fmt.Errorf("decode dna %q: %w", r.ID, err)
	}
	return &dna, nil
}
