package chart

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimals(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestPeriodLabels(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, PeriodLabels(3))
	assert.Empty(t, PeriodLabels(0))
}

func TestStackedBar(t *testing.T) {
	ds := StackedBar("Interest", "payment", decimals("135", "133.065"))
	assert.Equal(t, "Interest", ds.Label)
	assert.Equal(t, BarType, ds.Type)
	assert.Equal(t, "payment", ds.Stack)
	require.Len(t, ds.Data, 2)
	assert.Equal(t, "133.07", ds.Data[1].String())

	raw, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.Equal(t, `{"label":"Interest","type":"bar","stack":"payment","data":[135.00,133.07]}`, string(raw))
}

func TestCumulative(t *testing.T) {
	series := Cumulative(decimals("135.00", "133.07", "0", "131.13"))
	require.Len(t, series, 4)
	assert.Equal(t, "135.00", series[0].String())
	assert.Equal(t, "268.07", series[1].String())
	assert.Equal(t, "268.07", series[2].String())
	assert.Equal(t, "399.20", series[3].String())

	assert.Empty(t, Cumulative(nil))
}

func TestRepeat(t *testing.T) {
	series := Repeat(decimal.RequireFromString("43.06"), 3)
	require.Len(t, series, 3)
	for _, v := range series {
		assert.Equal(t, "43.06", v.StringFixed(2))
	}
}
