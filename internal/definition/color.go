package definition

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseColor resolves a stored color to a 24-bit RGB value. "#RRGGBB" is read
// as hex, any other string as decimal, and JSON numbers as-is. Anything that
// does not resolve to 0..0xFFFFFF yields DefaultColor.
func ParseColor(v any) int {
	var (
		n   int64
		err error
	)

	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "#") {
			n, err = strconv.ParseInt(s[1:], 16, 64)
		} else {
			n, err = strconv.ParseInt(s, 10, 64)
		}
	case json.Number:
		n, err = numberColor(t)
	case int:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return DefaultColor
		}
		n = int64(t)
	default:
		return DefaultColor
	}

	if err != nil || n < 0 || n > 0xFFFFFF {
		return DefaultColor
	}
	return int(n)
}

func numberColor(num json.Number) (int64, error) {
	if n, err := num.Int64(); err == nil {
		return n, nil
	}
	f, err := num.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, strconv.ErrSyntax
	}
	return int64(f), nil
}
