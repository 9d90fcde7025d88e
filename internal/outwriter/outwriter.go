// Package outwriter has output and writer logic for score sheets, history and
// the roster. Every writer honors the output mode, file and precision of the
// Config it is given.
package outwriter

import (
	"github.com/huangsam/kpiboard/internal/contract"
)

// scoreLabel returns the rating label for a final score, colored when enabled.
func scoreLabel(score float64, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return contract.GetPlainLabel(score)
}
