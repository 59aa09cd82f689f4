package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/solar-analytics/parquet-gate/internal/rules"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect gate rules",
	Long: `Shows the effective rules or checks a rules file.

Example:
  go run ./cmd/gate rules show
  go run ./cmd/gate rules check gate-rules.yaml`,
}

var (
	rulesShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective rules and their hash",
		RunE:  runRulesShow,
	}

	rulesCheckCmd = &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a rules file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRulesCheck,
	}

	rulesFile string
)

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesCheckCmd)

	rulesShowCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules file (default GATE_RULES_FILE)")
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if rulesFile != "" {
		cfg.Validation.RulesFile = rulesFile
	}

	r, err := rules.FromConfig(cfg.Validation)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	return printRules(r)
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	r, err := rules.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: OK (%d bounds)\n", args[0], len(r.Bounds))
	return printRules(r)
}

func printRules(r *rules.Rules) error {
	hash, err := rules.Hash(r)
	if err != nil {
		return fmt.Errorf("hash rules: %w", err)
	}

	out, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}

	fmt.Printf("# sha256: %s\n", hash)
	fmt.Print(string(out))
	return nil
}
