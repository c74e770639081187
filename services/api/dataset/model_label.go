package dataset

import "strings"

var modelNoise = []string{"Regression with ", " regression with ", " errors"}

// FormatModelLabel shortens a fitted-model descriptor for display, e.g.
// "Regression with ARIMA(1,0,0) errors" becomes "ARIMA(1,0,0)".
func FormatModelLabel(desc string) string {
	for _, s := range modelNoise {
		desc = strings.ReplaceAll(desc, s, "")
	}
	if i := strings.Index(desc, "ARIMA"); i >= 0 {
		return desc[i:]
	}
	return desc
}

// ModelLabel returns the formatted descriptor of the first model row for
// region.
func ModelLabel(models []ModelRow, region string) (string, bool) {
	for _, m := range models {
		if m.Region == region {
			return FormatModelLabel(m.Model), true
		}
	}
	return "", false
}
