package calculation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoricalDataset_SequenceWrapsAround(t *testing.T) {
	ds := constantDataset(t, 1928, 2023, "5", "4", "2")

	seq, err := ds.Sequence(2022, 30)
	require.NoError(t, err)
	require.Len(t, seq, 30)
	assert.Equal(t, []int{2022, 2023, 1928, 1929}, seq[:4])
	assert.Equal(t, 1955, seq[29])

	assert.Equal(t, 96, ds.Span())

	_, err = ds.Sequence(1900, 3)
	assert.True(t, errors.Is(err, ErrMissingHistoricalYear))
}

func TestHistoricalDataset_Lookup(t *testing.T) {
	us, bonds, intl := dec("12.5"), dec("3"), dec("-4")
	ds, err := NewHistoricalDataset([]MarketYear{
		{Year: 1970, USEquities: &us, Bonds: &bonds},
		{Year: 1971, USEquities: &us, Bonds: &bonds, International: &intl},
		{Year: 1972, USEquities: &us},
	})
	require.NoError(t, err)

	r, err := ds.Lookup(1970)
	require.NoError(t, err)
	assertDecimal(t, "12.5", r.International, "international falls back to US equities")

	r, err = ds.Lookup(1971)
	require.NoError(t, err)
	assertDecimal(t, "-4", r.International)

	_, err = ds.Lookup(1972)
	assert.True(t, errors.Is(err, ErrMissingHistoricalYear), "missing bonds")

	_, err = ds.Lookup(1999)
	assert.True(t, errors.Is(err, ErrMissingHistoricalYear), "absent year")
}

func TestNewHistoricalDataset_Validation(t *testing.T) {
	_, err := NewHistoricalDataset(nil)
	assert.Error(t, err)

	v := dec("1")
	_, err = NewHistoricalDataset([]MarketYear{{Year: 2000, USEquities: &v}, {Year: 2000, USEquities: &v}})
	assert.ErrorContains(t, err, "duplicate")

	ds, err := NewHistoricalDataset([]MarketYear{{Year: 2003}, {Year: 2000}, {Year: 2001}})
	require.NoError(t, err)
	assert.Equal(t, []int{2000, 2001, 2003}, ds.Years())
	assert.Equal(t, []int{2002}, ds.MissingYears())
	first, last := ds.GetAvailableYears()
	assert.Equal(t, 2000, first)
	assert.Equal(t, 2003, last)
}

func TestHistoricalDataset_Statistics(t *testing.T) {
	a, b, c := dec("10"), dec("20"), dec("30")
	bond := dec("4")
	ds, err := NewHistoricalDataset([]MarketYear{
		{Year: 1, USEquities: &a, Bonds: &bond},
		{Year: 2, USEquities: &b, Bonds: &bond},
		{Year: 3, USEquities: &c, Bonds: &bond},
	})
	require.NoError(t, err)

	stats := ds.Statistics()
	us := stats[domain.USEquities]
	assertDecimal(t, "20", us.Mean)
	sd, _ := us.StdDev.Float64()
	assert.InDelta(t, 8.164966, sd, 0.000001)
	assert.Equal(t, 3, us.Count)
	assertDecimal(t, "10", us.Min)
	assertDecimal(t, "30", us.Max)

	assert.Equal(t, 0, stats[domain.International].Count)
	assertDecimal(t, "0", stats[domain.Bonds].StdDev)

	summary := ds.Summary()
	assert.Equal(t, 3, summary.Years)
	assertDecimal(t, "4", summary.Means.Bonds)
}

const wideReturns = `Historical returns,,,,,,,,,,,,,,
Year,a,b,c,d,e,f,g,Inflation,S&P 500,3m T-Bill,10y T-Bond,Corp,Real Estate,International
1928,,,,,,,,-0.0116,0.4381,0.0308,0.0084,0.0322,0.0149,
1929,,,,,,,,0.0058,-0.0830,0.0316,0.0420,0.0302,-0.0206,0.0512
1930,,,,,,,,-0.0640,-0.2512,0.0455,0.0454,0.0054,-0.0431,-0.1000
`

func TestParseReturnsCSV_WideLayout(t *testing.T) {
	ds, err := ParseReturnsCSV(strings.NewReader(wideReturns))
	require.NoError(t, err)
	assert.Equal(t, []int{1928, 1929, 1930}, ds.Years())

	r, err := ds.Lookup(1928)
	require.NoError(t, err)
	assertDecimal(t, "43.81", r.USEquities)
	assertDecimal(t, "0.84", r.Bonds)
	assertDecimal(t, "43.81", r.International, "blank international uses US equities")

	r, err = ds.Lookup(1929)
	require.NoError(t, err)
	assertDecimal(t, "5.12", r.International)
}

func TestParseReturnsCSV_CompactLayout(t *testing.T) {
	src := "year,us_equities,international,bonds,inflation\n" +
		"2000,-9.1,-14.2,16.7,3.4\n" +
		"2001,-11.9,,5.6,1.6\n" +
		"\n" +
		"2002,-22.1,-15.9,15.1%,2.4\n"

	ds, err := ParseReturnsCSV(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	r, err := ds.Lookup(2001)
	require.NoError(t, err)
	assertDecimal(t, "-11.9", r.International)

	r, err = ds.Lookup(2002)
	require.NoError(t, err)
	assertDecimal(t, "15.1", r.Bonds)
}

func TestParseReturnsCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"no data rows", "just,a,title\n"},
		{"bad compact year", "year,us_equities,bonds\nabc,1,2\n"},
		{"bad compact value", "year,us_equities,bonds\n2000,x,2\n"},
		{"short wide row", "title\n1928,1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReturnsCSV(strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadReturnsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "returns.csv")
	require.NoError(t, os.WriteFile(path, []byte(wideReturns), 0o644))

	ds, err := LoadReturnsCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	_, err = LoadReturnsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorContains(t, err, "failed to open file")
}

func TestHistoricalReturns_ReplaysByIndex(t *testing.T) {
	ds := constantDataset(t, 2000, 2004, "5", "4", "2")
	model := NewHistoricalReturns(ds, 3)

	assert.Equal(t, 2003, model.MarketYear(YearContext{Index: 0}))
	assert.Equal(t, 2004, model.MarketYear(YearContext{Index: 1}))
	assert.Equal(t, 2000, model.MarketYear(YearContext{Index: 2}))

	r, err := model.Returns(YearContext{Index: 7})
	require.NoError(t, err)
	assertDecimal(t, "5", r.USEquities)
}
