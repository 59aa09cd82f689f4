package config_test

import (
	"fmt"

	"github.com/solar-analytics/parquet-gate/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Input directory: %s\n", cfg.Validation.InputDir)
	fmt.Printf("Expected files: %d\n", cfg.Validation.ExpectedFiles)
	fmt.Printf("History enabled: %v\n", cfg.Database.Enabled())
}
