// Package dnastore loads lesson DNA from YAML files and the SQL DNA table.
package dnastore

import (
	"context"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
)

// Store resolves lesson DNA. Both lookups return nil, nil when nothing matches.
type Store interface {
	Load(ctx context.Context, lessonID string) (*domain.LessonDNA, error)
	ForDay(ctx context.Context, dayOfYear int) (*domain.LessonDNA, error)
}

// Chain consults stores in order and returns the first match.
type Chain []Store

func (c Chain) Load(ctx context.Context, lessonID string) (*domain.LessonDNA, error) {
	for _, s := range c {
		dna, err := s.Load(ctx, lessonID)
		if err != nil {
			return nil, err
		}
		if dna != nil {
			return dna, nil
		}
	}
	return nil, nil
}

func (c Chain) ForDay(ctx context.Context, dayOfYear int) (*domain.LessonDNA, error) {
	for _, s := range c {
		dna, err := s.ForDay(ctx, dayOfYear)
		if err != nil {
			return nil, err
		}
		if dna != nil {
			return dna, nil
		}
	}
	return nil, nil
}
