package upstream

import (
	"fmt"
	"math"

	"github.com/DeafMist/civic-radar/backend/internal/processing"
)

const descriptionWidth = 300

func dateOf(raw string) string {
	return processing.NormalizeDate(raw)
}

func summary(raw string) string {
	return processing.Truncate(processing.CleanText(raw), descriptionWidth)
}

// FormatVolume renders a traded volume as $950, $45.3K or $1.2M.
func FormatVolume(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", math.Max(v, 0))
	}
}

// percent rounds a 0-100 price to a whole percent.
func percent(v float64) *float64 {
	p := math.Round(v)
	return &p
}
