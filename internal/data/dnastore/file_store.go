package dnastore

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

// FileStore serves DNA parsed once from *.yaml files in a directory of fsys.
type FileStore struct {
	byID  map[string]*domain.LessonDNA
	byDay map[int]*domain.LessonDNA
}

func NewFileStore(fsys fs.FS, dir string, log *logger.Logger) (*FileStore, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dna dir %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := strings.ToLower(path.Ext(e.Name())); ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	s := &FileStore{byID: map[string]*domain.LessonDNA{}, byDay: map[int]*domain.LessonDNA{}}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		dna, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if _, dup := s.byID[dna.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate lesson_id %q", name, dna.ID)
		}
		s.byID[dna.ID] = dna
		if dna.DayOfYear > 0 {
			if prev, taken := s.byDay[dna.DayOfYear]; taken {
				log.Warn("Two lessons share a calendar day; keeping the first", "day_of_year", dna.DayOfYear, "kept", prev.ID, "skipped", dna.ID)
			} else {
				s.byDay[dna.DayOfYear] = dna
			}
		}
	}
	log.Info("Loaded lesson DNA", "dir", dir, "lessons", len(s.byID))
	return s, nil
}

// Parse decodes and validates one YAML document.
func Parse(raw []byte) (*domain.LessonDNA, error) {
	var dna domain.LessonDNA
	if err := yaml.Unmarshal(raw, &dna); err != nil {
		return nil, fmt.Errorf("decode dna yaml: %w", err)
	}
	if err := Validate(&dna); err != nil {
		return nil, err
	}
	return &dna, nil
}

func (s *FileStore) Load(_ context.Context, lessonID string) (*domain.LessonDNA, error) {
	return s.byID[lessonID], nil
}

func (s *FileStore) ForDay(_ context.Context, dayOfYear int) (*domain.LessonDNA, error) {
	return s.byDay[dayOfYear], nil
}

func (s *FileStore) IDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
