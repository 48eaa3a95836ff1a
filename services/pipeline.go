package services

import (
	"bixi-eda/models"
	"bixi-eda/table"
	"bixi-eda/utils"
)

// Pipeline prepares a loaded trip table for analysis.
type Pipeline struct {
	logger   *utils.Logger
	cleaner  *Cleaner
	features *FeatureDeriver
}

// NewPipeline creates a Pipeline with the given logger.
func NewPipeline(logger *utils.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		cleaner:  NewCleaner(logger),
		features: NewFeatureDeriver(logger),
	}
}

// Prepare cleans t and derives calendar features. It returns the prepared
// table and the row count after each stage.
func (p *Pipeline) Prepare(t *table.Table) (*table.Table, []models.StageCount, error) {
	stages := []models.StageCount{{Stage: "loaded", Rows: t.Nrow()}}

	complete, err := p.cleaner.DropIncompleteRows(t)
	if err != nil {
		return nil, stages, err
	}
	stages = append(stages, models.StageCount{Stage: "drop_incomplete_rows", Rows: complete.Nrow()})

	unique, err := p.cleaner.DropDuplicateRows(complete)
	if err != nil {
		return nil, stages, err
	}
	stages = append(stages, models.StageCount{Stage: "drop_duplicate_rows", Rows: unique.Nrow()})

	prepared, err := p.features.Derive(unique)
	if err != nil {
		return nil, stages, err
	}
	stages = append(stages, models.StageCount{Stage: "derive_features", Rows: prepared.Nrow()})

	p.logger.Info("[pipeline] Prepared %d of %d loaded trips", prepared.Nrow(), t.Nrow())
	return prepared, stages, nil
}
