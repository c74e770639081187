package dataset

import "sort"

// Regions returns the selectable regions: TotalCountry first, then every
// other distinct region in ascending order.
func Regions(hist []HistoricalRow) []string {
	seen := make(map[string]struct{}, 16)
	others := make([]string, 0, 16)
	for _, r := range hist {
		if r.Region == TotalCountry {
			continue
		}
		if _, ok := seen[r.Region]; ok {
			continue
		}
		seen[r.Region] = struct{}{}
		others = append(others, r.Region)
	}
	sort.Strings(others)

	return append([]string{TotalCountry}, others...)
}

// HasRegion reports whether region is selectable for hist.
func HasRegion(hist []HistoricalRow, region string) bool {
	if region == TotalCountry {
		return true
	}
	for _, r := range hist {
		if r.Region == region {
			return true
		}
	}
	return false
}
