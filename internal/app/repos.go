package app

import (
	"gorm.io/gorm"

	lessonrepo "github.com/yungbote/dailylesson-backend/internal/data/repos/lesson"
	"github.com/yungbote/dailylesson-backend/internal/platform/logger"
)

type Repos struct {
	Variations lessonrepo.VariationRepo
	DNA        lessonrepo.DNARepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Variations: lessonrepo.NewVariationRepo(db, log),
		DNA:        lessonrepo.NewDNARepo(db, log),
	}
}
