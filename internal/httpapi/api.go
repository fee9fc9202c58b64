package httpapi

import (
	"go.uber.org/zap"

	"interview-prep/internal/content"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
)

type API struct {
	catalog  *content.Catalog
	quizzes  *quiz.Service
	progress *progress.Service
	index    *search.Index
	logger   *zap.Logger
}

// NewAPI wires the JSON handlers. Every quiz of the catalog is loaded into the
// quiz bank up front so loose answers can be checked without a prior fetch.
func NewAPI(catalog *content.Catalog, quizzes *quiz.Service, progressService *progress.Service, index *search.Index, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog != nil && quizzes != nil {
		for _, section := range catalog.Sections() {
			if _, err := quizzes.Questions(section.ID, ""); err != nil {
				logger.Warn("preload quiz", zap.String("section_id", section.ID), zap.Error(err))
			}
		}
	}
	return &API{
		catalog:  catalog,
		quizzes:  quizzes,
		progress: progressService,
		index:    index,
		logger:   logger,
	}
}
