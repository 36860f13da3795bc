// Package currency renders amounts for templates.
package currency

import (
	"html/template"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	// DashPlaceholder is shown by the single-tenant ledger for unusable values.
	DashPlaceholder = "-"
	// ZeroPlaceholder is shown by the multi-tenant ledger for unusable values.
	ZeroPlaceholder = "0.00"
)

// Format renders v with thousands separators and exactly two decimals, e.g.
// "1234.5" -> "1,234.50". Values that are missing or not numeric yield
// placeholder.
func Format(v any, placeholder string) string {
	d, ok := toDecimal(v)
	if !ok {
		return placeholder
	}
	s := d.Round(2).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return placeholder
	}
	return sign + humanize.BigComma(n) + "." + frac
}

// FuncMap exposes Format as the "currency" template function.
func FuncMap(placeholder string) template.FuncMap {
	return template.FuncMap{
		"currency": func(v any) string { return Format(v, placeholder) },
	}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Decimal{}, false
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Decimal{}, false
		}
		return *n, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case []byte:
		return toDecimal(string(n))
	}

	// numeric kinds, including named types such as `type Cents int64`
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		d, err := decimal.NewFromString(strconv.FormatUint(rv.Uint(), 10))
		return d, err == nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(f), true
	case reflect.Pointer:
		if rv.IsNil() {
			return decimal.Decimal{}, false
		}
		return toDecimal(rv.Elem().Interface())
	}
	return decimal.Decimal{}, false
}

// ParseAmount is the inverse used by form parsing: it accepts plain decimals
// and tolerates thousands separators typed by users ("1,234.50").
func ParseAmount(s string) (float64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, strconv.ErrRange
	}
	return f, nil
}
