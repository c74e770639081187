package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// writeFixture writes a CSV artifact into dir.
func writeFixture(t *testing.T, dir string, k Kind, lines ...string) {
	t.Helper()
	body := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, k.FileName()), []byte(body), 0o644))
}

// atacama2023 returns 52 weekly rows for one region with Casos 10..61.
func atacama2023() []HistoricalRow {
	rows := make([]HistoricalRow, 0, 52)
	start := day("2023-01-01")
	for i := 0; i < 52; i++ {
		rows = append(rows, HistoricalRow{
			Date:   start.AddDate(0, 0, 7*i),
			Year:   2023,
			Week:   i + 1,
			Region: "Región de Atacama",
			Cases:  10 + i,
		})
	}
	return rows
}
