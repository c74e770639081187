package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatModelLabel(t *testing.T) {
	cases := map[string]string{
		"Regression with ARIMA(1,0,0) errors":            "ARIMA(1,0,0)",
		"Regression with ARIMA(2,1,1)(0,1,1)[52] errors": "ARIMA(2,1,1)(0,1,1)[52]",
		"Linear regression with ARIMA(0,1,2) errors":     "ARIMA(0,1,2)",
		"ETS(A,N,A)":                                     "ETS(A,N,A)",
		"Seasonal naive errors":                          "Seasonal naive",
		"":                                               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatModelLabel(in), in)
	}
}

func TestModelLabel(t *testing.T) {
	models := []ModelRow{
		{Region: "Norte", Model: "Regression with ARIMA(1,0,0) errors"},
		{Region: "Sur", Model: "ETS(M,A,N)"},
	}

	label, ok := ModelLabel(models, "Norte")
	assert.True(t, ok)
	assert.Equal(t, "ARIMA(1,0,0)", label)

	_, ok = ModelLabel(models, TotalCountry)
	assert.False(t, ok)

	_, ok = ModelLabel(nil, "Norte")
	assert.False(t, ok)
}
