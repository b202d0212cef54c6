package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

type Category string

const (
	CategoryProtein             Category = "protein"
	CategoryPreWorkout          Category = "pre-workout"
	CategoryNonStimPreWorkout   Category = "non-stim-pre-workout"
	CategoryEnergyDrink         Category = "energy-drink"
	CategoryBCAA                Category = "bcaa"
	CategoryEAA                 Category = "eaa"
	CategoryFatBurner           Category = "fat-burner"
	CategoryAppetiteSuppressant Category = "appetite-suppressant"
	CategoryCreatine            Category = "creatine"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidDetail   = errors.New("invalid detail field")
)

// ColumnKind 為細節欄位的資料型別
type ColumnKind int

const (
	ColInt ColumnKind = iota
	ColNumeric
	ColText
	ColTextArray
	ColBool
)

// 細節表數值欄位為 INTEGER 或 NUMERIC(6,2)
const (
	MaxDetailInt     = math.MaxInt32
	MaxDetailNumeric = 9999.99
)

type detailTable struct {
	name    string
	columns map[string]ColumnKind
}

func ints(kind ColumnKind, names ...string) map[string]ColumnKind {
	m := make(map[string]ColumnKind, len(names))
	for _, n := range names {
		m[n] = kind
	}
	return m
}

func merge(ms ...map[string]ColumnKind) map[string]ColumnKind {
	out := map[string]ColumnKind{}
	for _, m := range ms {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

var (
	proteinTable = detailTable{"protein_details", ints(ColNumeric,
		"protein_claim_g", "effective_protein_g", "whey_concentrate_g", "whey_isolate_g",
		"whey_hydrolysate_g", "casein_g", "egg_protein_g", "soy_protein_g")}

	preworkoutTable = detailTable{"preworkout_details", merge(
		ints(ColInt, "serving_scoops", "sugar_g", "l_citrulline_mg", "creatine_monohydrate_mg",
			"glycerpump_mg", "betaine_anhydrous_mg", "agmatine_sulfate_mg", "l_tyrosine_mg",
			"caffeine_anhydrous_mg", "n_phenethyl_dimethylamine_citrate_mg", "kanna_extract_mg",
			"huperzine_a_mcg", "bioperine_mg"),
		ints(ColNumeric, "serving_g"),
		ints(ColTextArray, "key_features"))}

	nonStimTable = detailTable{"non_stim_preworkout_details", merge(
		ints(ColInt, "serving_scoops", "calories", "total_carbohydrate_g", "niacin_mg",
			"vitamin_b6_mg", "vitamin_b12_mcg", "magnesium_mg", "sodium_mg", "potassium_mg",
			"l_citrulline_mg", "creatine_monohydrate_mg", "betaine_anhydrous_mg",
			"glycerol_powder_mg", "malic_acid_mg", "taurine_mg", "sodium_nitrate_mg",
			"agmatine_sulfate_mg", "vasodrive_ap_mg"),
		ints(ColNumeric, "serving_g"),
		ints(ColTextArray, "key_features"))}

	energyDrinkTable = detailTable{"energy_drink_details", merge(
		ints(ColInt, "serving_size_fl_oz", "sugar_g", "caffeine_mg", "n_acetyl_l_tyrosine_mg",
			"alpha_gpc_mg", "l_theanine_mg", "huperzine_a_mcg", "uridine_monophosphate_mg",
			"saffron_extract_mg", "vitamin_c_mg", "niacin_b3_mg", "vitamin_b6_mg",
			"vitamin_b12_mcg", "pantothenic_acid_b5_mg"),
		ints(ColTextArray, "key_features"))}

	aminoAcidTable = detailTable{"amino_acid_details", merge(
		ints(ColInt, "total_eaas_mg", "l_leucine_mg", "l_isoleucine_mg", "l_valine_mg",
			"l_lysine_hcl_mg", "l_threonine_mg", "l_phenylalanine_mg", "l_tryptophan_mg",
			"l_histidine_hcl_mg", "l_methionine_mg", "betaine_anhydrous_mg",
			"coconut_water_powder_mg", "astragin_mg"),
		ints(ColTextArray, "key_features"))}

	fatBurnerTable = detailTable{"fat_burner_details", merge(
		ints(ColInt, "l_carnitine_l_tartrate_mg", "green_tea_extract_mg", "capsimax_mg",
			"grains_of_paradise_mg", "ksm66_ashwagandha_mg", "kelp_extract_mcg", "selenium_mcg",
			"zinc_picolinate_mg", "five_htp_mg", "caffeine_anhydrous_mg", "halostachine_mg",
			"rauwolscine_mcg", "bioperine_mg"),
		ints(ColBool, "stimulant_based"),
		ints(ColTextArray, "key_features"))}

	creatineTable = detailTable{"creatine_details", merge(
		ints(ColInt, "creatine_monohydrate_mg", "creatine_hcl_mg"),
		ints(ColNumeric, "serving_g"),
		ints(ColText, "creatine_type"),
		ints(ColTextArray, "key_features"))}
)

// 每個分類對應唯一一張細節表
var categoryTables = map[Category]detailTable{
	CategoryProtein:             proteinTable,
	CategoryPreWorkout:          preworkoutTable,
	CategoryNonStimPreWorkout:   nonStimTable,
	CategoryEnergyDrink:         energyDrinkTable,
	CategoryBCAA:                aminoAcidTable,
	CategoryEAA:                 aminoAcidTable,
	CategoryFatBurner:           fatBurnerTable,
	CategoryAppetiteSuppressant: fatBurnerTable,
	CategoryCreatine:            creatineTable,
}

// Categories 回傳所有分類，順序固定
func Categories() []Category {
	return []Category{
		CategoryProtein, CategoryPreWorkout, CategoryNonStimPreWorkout, CategoryEnergyDrink,
		CategoryBCAA, CategoryEAA, CategoryFatBurner, CategoryAppetiteSuppressant, CategoryCreatine,
	}
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryTables[c]; !ok {
		return "", ErrUnknownCategory
	}
	return c, nil
}

func (c Category) Valid() bool {
	_, ok := categoryTables[c]
	return ok
}

// DetailTable 回傳分類的細節表名稱
func (c Category) DetailTable() (string, error) {
	t, ok := categoryTables[c]
	if !ok {
		return "", ErrUnknownCategory
	}
	return t.name, nil
}

// DetailColumns 回傳排序後的白名單欄位
func (c Category) DetailColumns() ([]string, error) {
	t, ok := categoryTables[c]
	if !ok {
		return nil, ErrUnknownCategory
	}
	cols := make([]string, 0, len(t.columns))
	for k := range t.columns {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols, nil
}

// NormalizeDetails 以分類白名單檢查細節欄位，並轉換為可寫入資料庫的型別。
// 輸入通常來自 JSON 解碼 (數字為 float64，陣列為 []any)。
func NormalizeDetails(c Category, in map[string]any) (map[string]any, error) {
	t, ok := categoryTables[c]
	if !ok {
		return nil, ErrUnknownCategory
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		kind, ok := t.columns[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s not allowed for %s", ErrInvalidDetail, k, c)
		}
		nv, err := normalizeValue(kind, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDetail, k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func normalizeValue(kind ColumnKind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch kind {
	case ColInt:
		f, ok := toFloat(v)
		if !ok || f != math.Trunc(f) {
			return nil, errors.New("must be an integer")
		}
		if f < 0 {
			return nil, errors.New("must not be negative")
		}
		if f > MaxDetailInt {
			return nil, fmt.Errorf("must be at most %d", MaxDetailInt)
		}
		return int64(f), nil
	case ColNumeric:
		f, ok := toFloat(v)
		if !ok {
			return nil, errors.New("must be a number")
		}
		if f < 0 {
			return nil, errors.New("must not be negative")
		}
		// 與資料庫相同四捨五入到兩位小數後再檢查上限
		f = math.Round(f*100) / 100
		if f > MaxDetailNumeric {
			return nil, fmt.Errorf("must be at most %.2f", MaxDetailNumeric)
		}
		return f, nil
	case ColText:
		s, ok := v.(string)
		if !ok {
			return nil, errors.New("must be a string")
		}
		return s, nil
	case ColBool:
		b, ok := v.(bool)
		if !ok {
			return nil, errors.New("must be a boolean")
		}
		return b, nil
	case ColTextArray:
		switch arr := v.(type) {
		case []string:
			return arr, nil
		case []any:
			out := make([]string, 0, len(arr))
			for _, item := range arr {
				s, ok := item.(string)
				if !ok {
					return nil, errors.New("must be a list of strings")
				}
				out = append(out, s)
			}
			return out, nil
		}
		return nil, errors.New("must be a list of strings")
	}
	return nil, errors.New("unsupported column")
}

func toFloat(v any) (float64, bool) {
	f, ok := asFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
