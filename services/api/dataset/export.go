package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

const dateLayout = "2006-01-02"

// Records renders an artifact of sess as CSV records using the source file's
// column names, header first.
func Records(sess *Session, k Kind) ([][]string, error) {
	switch k {
	case KindHistorical:
		out := [][]string{{"fecha", "Año", "Semana", "Region", "Casos"}}
		for _, r := range sess.Historical {
			out = append(out, []string{
				r.Date.Format(dateLayout),
				strconv.Itoa(r.Year),
				strconv.Itoa(r.Week),
				r.Region,
				strconv.Itoa(r.Cases),
			})
		}
		return out, nil
	case KindForecast:
		out := [][]string{{"fecha", "Region", "Casos", "Lower", "Upper"}}
		for _, r := range sess.Forecast {
			out = append(out, []string{
				r.Date.Format(dateLayout),
				r.Region,
				formatFloat(r.Cases),
				formatFloat(r.Lower),
				formatFloat(r.Upper),
			})
		}
		return out, nil
	case KindModels:
		out := [][]string{{"Region", "Modelo"}}
		for _, r := range sess.Models {
			out = append(out, []string{r.Region, r.Model})
		}
		return out, nil
	case KindImputed:
		out := [][]string{{"fecha", "Region", "Casos", "Imputado"}}
		for _, r := range sess.Imputed {
			out = append(out, []string{
				r.Date.Format(dateLayout),
				r.Region,
				strconv.Itoa(r.Cases),
				strconv.FormatBool(r.Imputed),
			})
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown dataset %q", k)
}

// WriteCSV re-encodes an artifact of sess as CSV.
func WriteCSV(w io.Writer, sess *Session, k Kind) error {
	records, err := Records(sess, k)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("encode %s: %w", k, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
