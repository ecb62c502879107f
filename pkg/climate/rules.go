// Package climate suggests crops for the current weather from a first-match
// rule table on temperature, humidity and wind speed.
package climate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// NoMatch is returned as the only suggestion when no rule applies.
const NoMatch = "No specific recommendations for this weather condition"

// Rule matches when every bound that is set holds. Temperature bounds are
// explicit about inclusivity; wind is always a strict upper bound.
type Rule struct {
	Name        string   `yaml:"name"`
	TempAbove   *float64 `yaml:"temp_above"` // t > v
	TempFrom    *float64 `yaml:"temp_from"`  // t >= v
	TempBelow   *float64 `yaml:"temp_below"` // t < v
	TempUpTo    *float64 `yaml:"temp_up_to"` // t <= v
	MinHumidity float64  `yaml:"min_humidity"`
	WindBelow   *float64 `yaml:"wind_below"`
	Crops       []string `yaml:"crops"`
}

func (r Rule) matches(temp, humidity, wind float64) bool {
	switch {
	case r.TempAbove != nil && !(temp > *r.TempAbove):
	case r.TempFrom != nil && !(temp >= *r.TempFrom):
	case r.TempBelow != nil && !(temp < *r.TempBelow):
	case r.TempUpTo != nil && !(temp <= *r.TempUpTo):
	case humidity < r.MinHumidity:
	case r.WindBelow != nil && !(wind < *r.WindBelow):
	default:
		return true
	}
	return false
}

type Suggestion struct {
	Rule  string   `json:"rule,omitempty"`
	Crops []string `json:"crops"`
}

type RulesEngine interface {
	Suggest(temp, humidity, wind float64) Suggestion
	Rules() []Rule
}

type rules struct{ table []Rule }

func bound(v float64) *float64 { return &v }

var defaultTable = []Rule{
	{Name: "cold", TempUpTo: bound(10), MinHumidity: 70, WindBelow: bound(5), Crops: []string{"Cabbage", "Broccoli", "Spinach"}},
	{Name: "cool", TempAbove: bound(10), TempBelow: bound(15), MinHumidity: 60, WindBelow: bound(6), Crops: []string{"Tomatoes", "Beans", "Peas"}},
	{Name: "mild", TempFrom: bound(15), TempBelow: bound(20), MinHumidity: 50, WindBelow: bound(6), Crops: []string{"Broccoli", "Lettuce", "Peas", "Spinach", "Cabbage"}},
	{Name: "warm", TempFrom: bound(20), TempBelow: bound(25), MinHumidity: 45, WindBelow: bound(7), Crops: []string{"Sorghum", "Millet", "Watermelon", "Okra", "Sweet Potatoes"}},
	{Name: "hot", TempFrom: bound(25), TempBelow: bound(30), MinHumidity: 40, WindBelow: bound(8), Crops: []string{"Maize", "Soy Beans", "Tomatoes", "Eggplant", "Cucumbers", "Peppers"}},
	{Name: "very hot", TempFrom: bound(30), TempBelow: bound(35), MinHumidity: 35, WindBelow: bound(9), Crops: []string{"Cotton", "Peanuts", "Pumpkin", "Sunflower"}},
	{Name: "extreme", TempFrom: bound(35), MinHumidity: 30, WindBelow: bound(10), Crops: []string{"Sesame", "Coconut", "Sesbania"}},
}

// Default returns the built-in table.
func Default() RulesEngine { return &rules{table: defaultTable} }

func (r *rules) Suggest(temp, humidity, wind float64) Suggestion {
	for _, rule := range r.table {
		if rule.matches(temp, humidity, wind) {
			return Suggestion{Rule: rule.Name, Crops: append([]string(nil), rule.Crops...)}
		}
	}
	return Suggestion{Crops: []string{NoMatch}}
}

func (r *rules) Rules() []Rule { return append([]Rule(nil), r.table...) }

// LoadFromFile replaces the built-in table with rules from a .yaml, .csv or
// .xlsx file. An empty path yields the built-in table.
func LoadFromFile(path string) (RulesEngine, error) {
	if path == "" {
		return Default(), nil
	}
	var (
		table []Rule
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		table, err = loadYAML(path)
	case ".csv":
		table, err = loadCSV(path)
	case ".xlsx":
		table, err = loadXLSX(path)
	default:
		return nil, fmt.Errorf("crop rules %s: unsupported format", path)
	}
	if err != nil {
		return nil, fmt.Errorf("crop rules %s: %w", path, err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("crop rules %s: no rules loaded", path)
	}
	return &rules{table: table}, nil
}

func loadYAML(path string) ([]Rule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	for i, r := range doc.Rules {
		if len(r.Crops) == 0 {
			return nil, fmt.Errorf("rule %d (%s) lists no crops", i+1, r.Name)
		}
	}
	return doc.Rules, nil
}

func loadCSV(path string) ([]Rule, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	var rows [][]string
	cr := csv.NewReader(fh)
	cr.FieldsPerRecord = -1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return fromRows(rows)
}

func loadXLSX(path string) ([]Rule, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer x.Close()
	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := x.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

// fromRows reads a header row plus one rule per row. Headers are matched
// loosely; crops are separated by ";" or "|".
func fromRows(rows [][]string) ([]Rule, error) {
	if len(rows) == 0 {
		return nil, errors.New("empty table")
	}
	norm := func(s string) string {
		s = strings.TrimPrefix(strings.TrimSpace(s), "\uFEFF") // BOM
		s = strings.ToLower(s)
		return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
	}
	hmap := map[string]int{}
	for i, h := range rows[0] {
		hmap[norm(h)] = i
	}
	col := func(keys ...string) int {
		for _, k := range keys {
			if idx, ok := hmap[norm(k)]; ok {
				return idx
			}
		}
		return -1
	}
	cName := col("name", "rule")
	cAbove := col("temp_above")
	cFrom := col("temp_from", "temp_min")
	cBelow := col("temp_below", "temp_max")
	cUpTo := col("temp_up_to")
	cHum := col("min_humidity", "humidity")
	cWind := col("wind_below", "wind")
	cCrops := col("crops", "crop")
	if cCrops == -1 {
		return nil, fmt.Errorf("missing crops column, found headers %v", rows[0])
	}

	var out []Rule
	for n, rec := range rows[1:] {
		get := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		opt := func(idx int) (*float64, error) {
			s := get(idx)
			if s == "" {
				return nil, nil
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %q is not a number", n+2, s)
			}
			return &v, nil
		}
		r := Rule{Name: get(cName)}
		for _, c := range strings.FieldsFunc(get(cCrops), func(r rune) bool { return r == ';' || r == '|' }) {
			if c = strings.TrimSpace(c); c != "" {
				r.Crops = append(r.Crops, c)
			}
		}
		if len(r.Crops) == 0 {
			continue // blank or note rows
		}
		var err error
		if r.TempAbove, err = opt(cAbove); err != nil {
			return nil, err
		}
		if r.TempFrom, err = opt(cFrom); err != nil {
			return nil, err
		}
		if r.TempBelow, err = opt(cBelow); err != nil {
			return nil, err
		}
		if r.TempUpTo, err = opt(cUpTo); err != nil {
			return nil, err
		}
		if r.WindBelow, err = opt(cWind); err != nil {
			return nil, err
		}
		hum, err := opt(cHum)
		if err != nil {
			return nil, err
		}
		if hum != nil {
			r.MinHumidity = *hum
		}
		out = append(out, r)
	}
	return out, nil
}
