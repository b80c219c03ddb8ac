package calculation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// MarketYear holds one calendar year of real (after-inflation) returns in percent.
// A nil return means the year has no data for that class.
type MarketYear struct {
	Year          int
	Inflation     *decimal.Decimal
	USEquities    *decimal.Decimal
	International *decimal.Decimal
	Bonds         *decimal.Decimal
}

// HistoricalStatistics provides statistical summary of one asset class
type HistoricalStatistics struct {
	Mean   decimal.Decimal `json:"mean"`
	StdDev decimal.Decimal `json:"std_dev"`
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
	Count  int             `json:"count"`
}

// HistoricalDataset is an ordered, immutable list of market years.
// It is safe for concurrent readers.
type HistoricalDataset struct {
	years  []MarketYear
	byYear map[int]int
}

// NewHistoricalDataset sorts rows by year and rejects duplicates.
func NewHistoricalDataset(rows []MarketYear) (*HistoricalDataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("historical dataset is empty")
	}
	years := make([]MarketYear, len(rows))
	copy(years, rows)
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })

	byYear := make(map[int]int, len(years))
	for i, y := range years {
		if _, dup := byYear[y.Year]; dup {
			return nil, fmt.Errorf("duplicate historical year %d", y.Year)
		}
		byYear[y.Year] = i
	}
	return &HistoricalDataset{years: years, byYear: byYear}, nil
}

// Len returns the number of years with data.
func (hd *HistoricalDataset) Len() int { return len(hd.years) }

// Span is the number of calendar years from the first to the last year,
// inclusive, counting gaps.
func (hd *HistoricalDataset) Span() int {
	first, last := hd.GetAvailableYears()
	return last - first + 1
}

// Years returns the calendar years with data in ascending order.
func (hd *HistoricalDataset) Years() []int {
	out := make([]int, len(hd.years))
	for i, y := range hd.years {
		out[i] = y.Year
	}
	return out
}

// GetAvailableYears returns the first and last year in the dataset.
func (hd *HistoricalDataset) GetAvailableYears() (int, int) {
	return hd.years[0].Year, hd.years[len(hd.years)-1].Year
}

// YearAt maps a position to a calendar year in the inclusive range, wrapping
// past the last year back to the first.
func (hd *HistoricalDataset) YearAt(pos int) int {
	first, _ := hd.GetAvailableYears()
	span := hd.Span()
	return first + ((pos%span)+span)%span
}

// Sequence lists the n calendar years replayed when starting at startYear.
func (hd *HistoricalDataset) Sequence(startYear, n int) ([]int, error) {
	first, last := hd.GetAvailableYears()
	if startYear < first || startYear > last {
		return nil, fmt.Errorf("start year %d outside %d-%d: %w", startYear, first, last, ErrMissingHistoricalYear)
	}
	out := make([]int, n)
	for k := range out {
		out[k] = hd.YearAt(startYear - first + k)
	}
	return out, nil
}

// Lookup returns the class returns for a calendar year. A missing
// international return falls back to the US equity return.
func (hd *HistoricalDataset) Lookup(year int) (domain.AssetClassReturns, error) {
	idx, ok := hd.byYear[year]
	if !ok {
		return domain.AssetClassReturns{}, fmt.Errorf("year %d: %w", year, ErrMissingHistoricalYear)
	}
	y := hd.years[idx]
	if y.USEquities == nil || y.Bonds == nil {
		return domain.AssetClassReturns{}, fmt.Errorf("year %d has no equity or bond return: %w", year, ErrMissingHistoricalYear)
	}
	r := domain.AssetClassReturns{USEquities: *y.USEquities, Bonds: *y.Bonds, International: *y.USEquities}
	if y.International != nil {
		r.International = *y.International
	}
	return r, nil
}

// Statistics summarizes each asset class over the years that have data.
func (hd *HistoricalDataset) Statistics() map[domain.AssetClass]HistoricalStatistics {
	values := make(map[domain.AssetClass][]decimal.Decimal, len(domain.AssetClasses))
	for _, y := range hd.years {
		for class, v := range map[domain.AssetClass]*decimal.Decimal{
			domain.USEquities:    y.USEquities,
			domain.International: y.International,
			domain.Bonds:         y.Bonds,
		} {
			if v != nil {
				values[class] = append(values[class], *v)
			}
		}
	}

	stats := make(map[domain.AssetClass]HistoricalStatistics, len(domain.AssetClasses))
	for _, class := range domain.AssetClasses {
		stats[class] = calculateStatistics(values[class])
	}
	return stats
}

// Summary condenses the dataset for reports.
func (hd *HistoricalDataset) Summary() *domain.DatasetSummary {
	stats := hd.Statistics()
	first, last := hd.GetAvailableYears()
	return &domain.DatasetSummary{
		FirstYear: first,
		LastYear:  last,
		Years:     hd.Len(),
		Means: domain.AssetClassReturns{
			USEquities:    stats[domain.USEquities].Mean,
			International: stats[domain.International].Mean,
			Bonds:         stats[domain.Bonds].Mean,
		},
		StdDevs: domain.AssetClassReturns{
			USEquities:    stats[domain.USEquities].StdDev,
			International: stats[domain.International].StdDev,
			Bonds:         stats[domain.Bonds].StdDev,
		},
	}
}

// MissingYears lists calendar years absent between the first and last year.
func (hd *HistoricalDataset) MissingYears() []int {
	var missing []int
	first, last := hd.GetAvailableYears()
	for year := first; year <= last; year++ {
		if _, ok := hd.byYear[year]; !ok {
			missing = append(missing, year)
		}
	}
	return missing
}

// calculateStatistics calculates mean, population standard deviation and range.
func calculateStatistics(values []decimal.Decimal) HistoricalStatistics {
	if len(values) == 0 {
		return HistoricalStatistics{}
	}

	sum := decimal.Zero
	min, max := values[0], values[0]
	for _, v := range values {
		sum = sum.Add(v)
		if v.LessThan(min) {
			min = v
		}
		if v.GreaterThan(max) {
			max = v
		}
	}
	count := decimal.NewFromInt(int64(len(values)))
	mean := sum.Div(count)

	varianceSum := decimal.Zero
	for _, v := range values {
		diff := v.Sub(mean)
		varianceSum = varianceSum.Add(diff.Mul(diff))
	}
	varianceFloat, _ := varianceSum.Div(count).Float64()
	stdDev := decimal.NewFromFloat(math.Sqrt(varianceFloat)).Round(samplePlaces)

	return HistoricalStatistics{
		Mean:   mean.Round(samplePlaces),
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Count:  len(values),
	}
}

// Column positions of the market returns table. Values are fractions
// (0.05 = 5%) and are converted to percent on load.
const (
	colYear          = 0
	colInflation     = 8
	colSP500         = 9
	colTBond10Year   = 11
	colInternational = 14
	minReturnColumns = 12
)

// LoadReturnsCSV reads a historical returns file from disk.
func LoadReturnsCSV(path string) (*HistoricalDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	ds, err := ParseReturnsCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return ds, nil
}

// ParseReturnsCSV accepts two layouts. The compact layout has a header row
// naming year, us_equities, international, bonds and optionally inflation,
// with values in percent. Otherwise the wide market table is assumed: leading
// rows without a numeric year are skipped, S&P 500 (col 9) maps to US
// equities, the 10-year T-bond (col 11) to bonds and col 14 to international.
func ParseReturnsCSV(r io.Reader) (*HistoricalDataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	var rows []MarketYear
	if header := headerIndex(records[0]); header != nil {
		rows, err = parseCompactRows(header, records[1:])
	} else {
		rows, err = parseWideRows(records)
	}
	if err != nil {
		return nil, err
	}
	return NewHistoricalDataset(rows)
}

func headerIndex(rec []string) map[string]int {
	idx := make(map[string]int, len(rec))
	for i, name := range rec {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := idx["year"]; !ok {
		return nil
	}
	if _, ok := idx[string(domain.USEquities)]; !ok {
		return nil
	}
	return idx
}

func parseCompactRows(header map[string]int, records [][]string) ([]MarketYear, error) {
	var rows []MarketYear
	for line, rec := range records {
		if isBlank(rec) {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(field(rec, header["year"])))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid year %q", line+2, field(rec, header["year"]))
		}
		row := MarketYear{Year: year}
		for name, dst := range map[string]**decimal.Decimal{
			string(domain.USEquities):    &row.USEquities,
			string(domain.International): &row.International,
			string(domain.Bonds):         &row.Bonds,
			"inflation":                  &row.Inflation,
		} {
			col, ok := header[name]
			if !ok {
				continue
			}
			v, err := optionalDecimal(field(rec, col), decimal.NewFromInt(1))
			if err != nil {
				return nil, fmt.Errorf("row %d %s: %w", line+2, name, err)
			}
			*dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseWideRows(records [][]string) ([]MarketYear, error) {
	var rows []MarketYear
	for line, rec := range records {
		year, err := strconv.Atoi(strings.TrimSpace(field(rec, colYear)))
		if err != nil {
			if len(rows) == 0 {
				continue
			}
			if isBlank(rec) {
				continue
			}
			return nil, fmt.Errorf("row %d: invalid year %q", line+1, field(rec, colYear))
		}
		if len(rec) < minReturnColumns {
			return nil, fmt.Errorf("row %d: expected at least %d columns, got %d", line+1, minReturnColumns, len(rec))
		}

		row := MarketYear{Year: year}
		for col, dst := range map[int]**decimal.Decimal{
			colInflation:     &row.Inflation,
			colSP500:         &row.USEquities,
			colTBond10Year:   &row.Bonds,
			colInternational: &row.International,
		} {
			v, err := optionalDecimal(field(rec, col), hundred)
			if err != nil {
				if col == colInternational {
					continue
				}
				return nil, fmt.Errorf("row %d col %d: %w", line+1, col, err)
			}
			*dst = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("no data rows")
	}
	return rows, nil
}

// optionalDecimal parses s scaled by factor; an empty cell is nil.
func optionalDecimal(s string, factor decimal.Decimal) (*decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	v = v.Mul(factor)
	return &v, nil
}

func field(rec []string, col int) string {
	if col < 0 || col >= len(rec) {
		return ""
	}
	return rec[col]
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// HistoricalReturns replays the dataset starting at a given position.
// It is stateless: the year is derived from the trajectory's year index.
type HistoricalReturns struct {
	dataset *HistoricalDataset
	start   int
}

// NewHistoricalReturns replays dataset from position start, where position 0
// is the first year of the range.
func NewHistoricalReturns(dataset *HistoricalDataset, start int) *HistoricalReturns {
	return &HistoricalReturns{dataset: dataset, start: start}
}

// MarketYear returns the calendar year replayed for yc.
func (h *HistoricalReturns) MarketYear(yc YearContext) int {
	return h.dataset.YearAt(h.start + yc.Index)
}

// Returns implements ReturnModel
func (h *HistoricalReturns) Returns(yc YearContext) (domain.AssetClassReturns, error) {
	return h.dataset.Lookup(h.MarketYear(yc))
}
