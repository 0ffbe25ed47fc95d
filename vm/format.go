package vm

import (
	"math"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Value rendering
// ---------------------------------------------------------------------------

// FormatValue renders a value the way the print statement does: none as
// the "none" sentinel, integral floats without a decimal point, strings
// bare at the top level but quoted inside containers.
func FormatValue(v Value) string {
	return formatValue(v, false)
}

func formatValue(v Value, nested bool) string {
	switch v.Kind() {
	case KindNone:
		return "none"
	case KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case KindFloat:
		return formatFloat(v.Float())
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindString:
		if nested {
			return strconv.Quote(v.Str())
		}
		return v.Str()
	case KindArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range v.Array().Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatValue(e, true))
		}
		b.WriteByte(']')
		return b.String()
	case KindMap:
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range v.Map().Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			mv, _ := v.Map().Get(k)
			b.WriteString(formatValue(k, true))
			b.WriteString(": ")
			b.WriteString(formatValue(mv, true))
		}
		b.WriteByte('}')
		return b.String()
	case KindClosure:
		if v.Closure().Fn.Name != "" {
			return "<func " + v.Closure().Fn.Name + ">"
		}
		return "<lambda>"
	case KindBuiltin:
		return "<builtin " + v.Builtin().Name + ">"
	case KindBlueprint:
		return "<blueprint " + v.Blueprint().Name + ">"
	}
	return "<unknown>"
}

// formatFloat renders mathematically integral floats without a decimal
// point; everything else uses the shortest round-trip form.
func formatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
