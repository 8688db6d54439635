package httpvalidator

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/erraggy/oasgate/contract"
)

// Date layouts accepted by PostCast.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = time.RFC3339Nano
)

// collectionDelimiter returns the separator for an array collectionFormat.
// csv is the default.
func collectionDelimiter(format string) string {
	switch format {
	case contract.CollectionSSV:
		return " "
	case contract.CollectionTSV:
		return "\t"
	case contract.CollectionPipes:
		return "|"
	default:
		return ","
	}
}

// PreCast converts a wire-format value into the type declared by s so that
// schema validation sees the intended type. A value that cannot be converted
// is returned unchanged and left for validation to reject.
//
//   - array: a string is split on the collectionFormat delimiter and each item
//     is pre-cast against s.Items; a []string (repeated query values) is not split
//   - boolean: "true"/"false" in any case
//   - integer: replaced by an int64 only when the number is integral
//   - number: replaced by a float64 only when it parses to a finite number
//   - object: replaced by the decoded JSON document when the string parses
func PreCast(value any, s *contract.Schema) any {
	if s == nil || value == nil {
		return value
	}

	switch s.Type {
	case "array":
		return preCastArray(value, s)
	case "boolean":
		if str, ok := value.(string); ok {
			switch strings.ToLower(str) {
			case "true":
				return true
			case "false":
				return false
			}
		}
		return value
	case "integer":
		if n, ok := toInt(value); ok {
			return n
		}
		return value
	case "number":
		if n, ok := toFloat(value); ok {
			return n
		}
		return value
	case "object":
		if str, ok := value.(string); ok {
			var decoded any
			if err := json.Unmarshal([]byte(str), &decoded); err == nil {
				return decoded
			}
		}
		return value
	default:
		return value
	}
}

func preCastArray(value any, s *contract.Schema) any {
	var parts []string
	switch v := value.(type) {
	case string:
		parts = strings.Split(v, collectionDelimiter(s.CollectionFormat))
	case []string:
		parts = v
	default:
		return value
	}

	out := make([]any, len(parts))
	for i, part := range parts {
		out[i] = PreCast(part, s.Items)
	}
	return out
}

// toInt returns the integral value of v. Plain integer text is parsed exactly;
// other decimal spellings ("3.0", "1e3") go through toFloat.
func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
	}
	n, ok := toFloat(v)
	if !ok || n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

// toFloat returns the finite numeric value of v. Strings are parsed as decimal
// numbers; Go numeric types from decoded documents are converted directly.
func toFloat(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case string:
		str := strings.TrimSpace(t)
		if str == "" || !isDecimal(str) {
			return 0, false
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0, false
		}
		n = f
	case int:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	case uint64:
		n = float64(t)
	case float32:
		n = float64(t)
	case float64:
		n = t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// isDecimal rejects the spellings strconv.ParseFloat accepts beyond plain
// decimal notation (hex floats, "inf", "nan", digit separators).
func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E':
		default:
			return false
		}
	}
	return true
}

// PostCast upgrades a string value whose schema format is "date" or
// "date-time" into a time.Time. Any other value, or a string that does not
// parse, is returned unchanged. It must only be applied to values that passed
// schema validation.
func PostCast(value any, s *contract.Schema) any {
	if s == nil {
		return value
	}
	str, ok := value.(string)
	if !ok {
		return value
	}

	var layout string
	switch s.Format {
	case "date":
		layout = dateLayout
	case "date-time":
		layout = dateTimeLayout
	default:
		return value
	}

	if layout == dateTimeLayout {
		return parseDateTime(str, value)
	}
	t, err := time.Parse(layout, str)
	if err != nil {
		return value
	}
	return t
}

// parseDateTime parses an RFC 3339 date-time, including the lowercase "t"/"z"
// and leap second spellings the format validator accepts. A leap second is
// represented as the first instant of the following minute.
func parseDateTime(str string, fallback any) any {
	str = strings.ToUpper(str)
	leap := len(str) > 19 && str[16:19] == ":60"
	if leap {
		str = str[:17] + "59" + str[19:]
	}
	t, err := time.Parse(dateTimeLayout, str)
	if err != nil {
		return fallback
	}
	if leap {
		t = t.Truncate(time.Second).Add(time.Second)
	}
	return t
}
