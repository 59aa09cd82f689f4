package rules

import (
	"github.com/solar-analytics/parquet-gate/pkg/config"
)

// FromConfig builds the run rules from environment settings. A rules
// file replaces the env thresholds wholesale.
func FromConfig(cfg config.ValidationConfig) (*Rules, error) {
	if cfg.RulesFile != "" {
		return Load(cfg.RulesFile)
	}

	r := DefaultRules()
	r.ExpectedFiles = cfg.ExpectedFiles
	r.ExpectedColumns = cfg.ExpectedColumns
	r.DriftTolerance = cfg.DriftTolerance
	if cfg.TimestampColumn != "" {
		r.TimestampColumn = cfg.TimestampColumn
	}
	if cfg.PartitionPolicy != "" {
		r.PartitionPolicy = PartitionPolicy(cfg.PartitionPolicy)
	}

	if err := Validate(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
