package dnastore

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	domain "github.com/yungbote/dailylesson-backend/internal/domain/lesson"
)

var ErrInvalidDNA = errors.New("invalid lesson dna")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks the structural invariants synthesis depends on: every age
// category present and exactly three question templates.
func Validate(dna *domain.LessonDNA) error {
	if dna == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidDNA)
	}
	if err := validatorInstance().Struct(dna); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w %q: %s", ErrInvalidDNA, dna.ID, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w %q: %v", ErrInvalidDNA, dna.ID, err)
	}
	for _, c := range domain.AgeCategories {
		if _, ok := dna.AgeExpressions[c]; !ok {
			return fmt.Errorf("%w %q: missing age expression %s", ErrInvalidDNA, dna.ID, c)
		}
	}
	return nil
}
