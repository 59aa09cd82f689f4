package validation

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
)

const rule = "============================================================"

var printer = message.NewPrinter(language.English)

// Summary renders the report as ordered text: counts first, then every
// critical failure and warning in report order.
func Summary(r *contracts.ValidationReport) string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	b.WriteString("VALIDATION SUMMARY\n")
	printer.Fprintf(&b, "  Files validated: %d\n", r.TotalFiles)
	printer.Fprintf(&b, "  Total rows: %d\n", r.TotalRows)
	printer.Fprintf(&b, "  Critical failures: %d\n", len(r.CriticalFailures))
	printer.Fprintf(&b, "  Warnings: %d\n", len(r.Warnings))
	b.WriteString(rule + "\n")

	for _, d := range r.CriticalFailures {
		b.WriteString("  CRITICAL: " + d.Message + "\n")
	}

	if len(r.Warnings) > 0 {
		printer.Fprintf(&b, "  %d quality warnings (non-blocking):\n", len(r.Warnings))
		for _, d := range r.Warnings {
			b.WriteString("    WARNING: " + d.Message + "\n")
		}
	} else {
		b.WriteString("  No warnings, data quality looks clean\n")
	}

	if r.Passed() {
		b.WriteString("RESULT: PASSED\n")
	} else {
		b.WriteString("RESULT: FAILED (batch must not be published)\n")
	}

	return b.String()
}
