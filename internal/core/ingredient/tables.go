package ingredient

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML string

// Tables 單位資料表（別名、換算、密度）的檔案結構
type Tables struct {
	Version     int               `yaml:"version"`
	Units       []UnitEntry       `yaml:"units"`
	Conversions []ConversionEntry `yaml:"conversions"`
	Densities   []DensityEntry    `yaml:"densities"`
}

// UnitEntry 一個單位家族：標準寫法與其別名
type UnitEntry struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
	NoKeyword bool     `yaml:"no_keyword"` // 不作為食材行判斷的關鍵字（例如 can）
}

// ConversionEntry 標準單位換算為公制基準單位
type ConversionEntry struct {
	Unit   string  `yaml:"unit"`
	Target string  `yaml:"target"`
	Factor float64 `yaml:"factor"`
}

// DensityEntry 食材名稱關鍵字與密度 (g/ml)
type DensityEntry struct {
	Keyword string  `yaml:"keyword"`
	Density float64 `yaml:"density"`
}

// Conversion 換算結果
type Conversion struct {
	TargetUnit string
	Factor     float64
}

// Registry 不可變的單位查詢表，可安全地被多個 goroutine 共用
type Registry struct {
	version     int
	aliases     map[string]string
	conversions map[string]Conversion
	densities   []densityMatcher
	keywords    []string
}

// densityMatcher 以完整單字比對關鍵字（允許 s/es 複數）
type densityMatcher struct {
	pattern *regexp.Regexp
	density float64
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default 取得內建資料表建立的 Registry
func Default() *Registry {
	defaultOnce.Do(func() {
		tables, err := LoadTables(strings.NewReader(defaultTablesYAML))
		if err != nil {
			panic(fmt.Sprintf("ingredient: embedded tables: %v", err))
		}
		reg, err := NewRegistry(tables)
		if err != nil {
			panic(fmt.Sprintf("ingredient: embedded tables: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// LoadTables 解析 YAML 資料表
func LoadTables(r io.Reader) (Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Tables{}, fmt.Errorf("failed to decode unit tables: %w", err)
	}
	return t, nil
}

// LoadRegistryFile 從檔案載入資料表；path 為空時使用內建表
func LoadRegistryFile(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open unit tables: %w", err)
	}
	defer f.Close()

	tables, err := LoadTables(f)
	if err != nil {
		return nil, err
	}
	return NewRegistry(tables)
}

// NewRegistry 驗證資料表並建立查詢表
func NewRegistry(t Tables) (*Registry, error) {
	r := &Registry{
		version:     t.Version,
		aliases:     make(map[string]string),
		conversions: make(map[string]Conversion),
	}

	keywords := make(map[string]bool)
	for _, u := range t.Units {
		canonical := strings.ToLower(strings.TrimSpace(u.Canonical))
		if canonical == "" {
			return nil, fmt.Errorf("unit entry without canonical spelling")
		}
		spellings := append([]string{canonical}, u.Aliases...)
		for _, s := range spellings {
			s = strings.ToLower(strings.TrimSpace(s))
			if prev, ok := r.aliases[s]; ok && prev != canonical {
				return nil, fmt.Errorf("unit spelling %q maps to both %q and %q", s, prev, canonical)
			}
			r.aliases[s] = canonical
			// 單一字母太容易誤判，不列入關鍵字
			if !u.NoKeyword && len(s) > 1 {
				keywords[s] = true
			}
		}
	}

	for _, c := range t.Conversions {
		unit := strings.ToLower(strings.TrimSpace(c.Unit))
		if _, ok := r.conversions[unit]; ok {
			return nil, fmt.Errorf("duplicate conversion for unit %q", unit)
		}
		if r.aliases[unit] != unit {
			return nil, fmt.Errorf("conversion unit %q is not a canonical unit", unit)
		}
		if c.Target != "ml" && c.Target != "g" {
			return nil, fmt.Errorf("conversion target %q for %q must be ml or g", c.Target, unit)
		}
		if c.Factor <= 0 {
			return nil, fmt.Errorf("conversion factor for %q must be positive", unit)
		}
		r.conversions[unit] = Conversion{TargetUnit: c.Target, Factor: c.Factor}
	}

	for _, d := range t.Densities {
		kw := strings.ToLower(strings.TrimSpace(d.Keyword))
		if kw == "" || d.Density <= 0 {
			return nil, fmt.Errorf("invalid density entry %q", d.Keyword)
		}
		pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(kw) + `(?:e?s)?\b`)
		if err != nil {
			return nil, fmt.Errorf("invalid density keyword %q: %w", d.Keyword, err)
		}
		r.densities = append(r.densities, densityMatcher{pattern: pattern, density: d.Density})
	}

	for kw := range keywords {
		r.keywords = append(r.keywords, kw)
	}
	// 長的先比對，避免 "tbsp" 被 "tbs" 搶先
	sort.Slice(r.keywords, func(i, j int) bool {
		if len(r.keywords[i]) != len(r.keywords[j]) {
			return len(r.keywords[i]) > len(r.keywords[j])
		}
		return r.keywords[i] < r.keywords[j]
	})

	return r, nil
}

// Version 資料表版本
func (r *Registry) Version() int {
	return r.version
}

// Resolve 將單位寫法轉為標準寫法；未知單位回傳小寫原值
func (r *Registry) Resolve(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if canonical, ok := r.aliases[u]; ok {
		return canonical
	}
	if canonical, ok := r.aliases[strings.TrimSuffix(u, ".")]; ok {
		return canonical
	}
	return u
}

// IsUnit 判斷一個已清理（小寫、僅字母）的 token 是否為已知單位
func (r *Registry) IsUnit(token string) bool {
	_, ok := r.aliases[token]
	return ok
}

// Conversion 取得標準單位的換算
func (r *Registry) Conversion(canonical string) (Conversion, bool) {
	c, ok := r.conversions[canonical]
	return c, ok
}

// Density 依序以完整單字比對食材名稱，回傳第一個符合的密度
// 例如 "unsalted butter" 不會命中 salt，"boiling water" 不會命中 oil
func (r *Registry) Density(name string) (float64, bool) {
	lower := strings.ToLower(name)
	for _, d := range r.densities {
		if d.pattern.MatchString(lower) {
			return d.density, true
		}
	}
	return 0, false
}

// Keywords 可用於判斷食材行的單位關鍵字（長度遞減）
func (r *Registry) Keywords() []string {
	out := make([]string, len(r.keywords))
	copy(out, r.keywords)
	return out
}
