package httpvalidator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/erraggy/oasgate/contract"
)

// =============================================================================
// PreCast Tests
// =============================================================================

func TestPreCast(t *testing.T) {
	intItems := &contract.Schema{Type: "integer"}

	tests := []struct {
		name   string
		value  any
		schema *contract.Schema
		want   any
	}{
		{"csv array converts convertible items", "1,2,c,d,e",
			&contract.Schema{Type: "array", CollectionFormat: "csv", Items: intItems},
			[]any{int64(1), int64(2), "c", "d", "e"}},
		{"default collection format is csv", "1,2",
			&contract.Schema{Type: "array", Items: intItems},
			[]any{int64(1), int64(2)}},
		{"ssv", "1 2", &contract.Schema{Type: "array", CollectionFormat: "ssv", Items: intItems},
			[]any{int64(1), int64(2)}},
		{"tsv", "1\t2", &contract.Schema{Type: "array", CollectionFormat: "tsv", Items: intItems},
			[]any{int64(1), int64(2)}},
		{"pipes", "true|FALSE",
			&contract.Schema{Type: "array", CollectionFormat: "pipes", Items: &contract.Schema{Type: "boolean"}},
			[]any{true, false}},
		{"multi values are not split", []string{"a,b", "c"},
			&contract.Schema{Type: "array", CollectionFormat: "multi", Items: &contract.Schema{Type: "string"}},
			[]any{"a,b", "c"}},
		{"array without items keeps strings", "a,b",
			&contract.Schema{Type: "array"},
			[]any{"a", "b"}},
		{"decoded array is untouched", []any{"1"},
			&contract.Schema{Type: "array", Items: intItems},
			[]any{"1"}},

		{"boolean true", "true", &contract.Schema{Type: "boolean"}, true},
		{"boolean mixed case", "FaLsE", &contract.Schema{Type: "boolean"}, false},
		{"boolean other string", "yes", &contract.Schema{Type: "boolean"}, "yes"},
		{"boolean non-string", 1, &contract.Schema{Type: "boolean"}, 1},

		{"integer", "42", &contract.Schema{Type: "integer"}, int64(42)},
		{"integer negative", "-7", &contract.Schema{Type: "integer"}, int64(-7)},
		{"integer from integral float text", "3.0", &contract.Schema{Type: "integer"}, int64(3)},
		{"integer fractional stays", "3.5", &contract.Schema{Type: "integer"}, "3.5"},
		{"integer garbage stays", "abc", &contract.Schema{Type: "integer"}, "abc"},
		{"integer empty stays", "", &contract.Schema{Type: "integer"}, ""},
		{"integer hex stays", "0x10", &contract.Schema{Type: "integer"}, "0x10"},
		{"integer from YAML default", 1337, &contract.Schema{Type: "integer"}, int64(1337)},
		{"integer above 2^53 is exact", "9007199254740993", &contract.Schema{Type: "integer", Format: "int64"}, int64(9007199254740993)},
		{"integer max int64", "9223372036854775807", &contract.Schema{Type: "integer"}, int64(9223372036854775807)},
		{"integer min int64", "-9223372036854775808", &contract.Schema{Type: "integer"}, int64(-9223372036854775808)},
		{"integer beyond int64 stays", "9223372036854775808", &contract.Schema{Type: "integer"}, "9223372036854775808"},
		{"integer from exponent text", "1e3", &contract.Schema{Type: "integer"}, int64(1000)},

		{"number", "1.5", &contract.Schema{Type: "number"}, 1.5},
		{"number exponent", "1e3", &contract.Schema{Type: "number"}, 1000.0},
		{"number NaN stays", "NaN", &contract.Schema{Type: "number"}, "NaN"},
		{"number infinity stays", "Infinity", &contract.Schema{Type: "number"}, "Infinity"},
		{"number garbage stays", "1.2.3", &contract.Schema{Type: "number"}, "1.2.3"},

		{"object parses JSON", `{"a":1}`, &contract.Schema{Type: "object"}, map[string]any{"a": 1.0}},
		{"object garbage stays", `{a:1`, &contract.Schema{Type: "object"}, `{a:1`},

		{"string unchanged", "42", &contract.Schema{Type: "string"}, "42"},
		{"untyped unchanged", "42", &contract.Schema{}, "42"},
		{"nil schema", "42", nil, "42"},
		{"nil value", nil, &contract.Schema{Type: "integer"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PreCast(tt.value, tt.schema))
		})
	}
}

func TestPreCast_JSONNumber(t *testing.T) {
	assert.Equal(t, int64(12), PreCast(json.Number("12"), &contract.Schema{Type: "integer"}))
	assert.Equal(t, int64(9007199254740993), PreCast(json.Number("9007199254740993"), &contract.Schema{Type: "integer"}))
	assert.Equal(t, 1.25, PreCast(json.Number("1.25"), &contract.Schema{Type: "number"}))
}

// =============================================================================
// PostCast Tests
// =============================================================================

func TestPostCast(t *testing.T) {
	date := &contract.Schema{Type: "string", Format: "date"}
	dateTime := &contract.Schema{Type: "string", Format: "date-time"}

	t.Run("date", func(t *testing.T) {
		got := PostCast("2024-02-29", date)
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("date-time", func(t *testing.T) {
		got := PostCast("2024-02-29T10:30:00.5Z", dateTime)
		assert.Equal(t, time.Date(2024, 2, 29, 10, 30, 0, 500_000_000, time.UTC), got)
	})

	t.Run("date-time lowercase separators", func(t *testing.T) {
		got := PostCast("2020-01-01t10:00:00z", dateTime)
		assert.Equal(t, time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC), got)
	})

	t.Run("date-time leap second", func(t *testing.T) {
		got := PostCast("2016-12-31T23:59:60Z", dateTime)
		assert.Equal(t, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("date-time leap second with offset", func(t *testing.T) {
		got, ok := PostCast("2016-12-31T18:59:60.25-05:00", dateTime).(time.Time)
		assert.True(t, ok)
		assert.True(t, got.Equal(time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("unparseable date-time unchanged", func(t *testing.T) {
		assert.Equal(t, "2020-01-01 10:00", PostCast("2020-01-01 10:00", dateTime))
	})

	t.Run("unparseable date unchanged", func(t *testing.T) {
		assert.Equal(t, "2024-13-01", PostCast("2024-13-01", date))
	})

	t.Run("other formats unchanged", func(t *testing.T) {
		assert.Equal(t, "a@b.c", PostCast("a@b.c", &contract.Schema{Type: "string", Format: "email"}))
	})

	t.Run("non-string unchanged", func(t *testing.T) {
		assert.Equal(t, int64(1), PostCast(int64(1), date))
	})

	t.Run("nil schema", func(t *testing.T) {
		assert.Equal(t, "2024-01-01", PostCast("2024-01-01", nil))
	})
}

// =============================================================================
// Properties
// =============================================================================

func TestCoercion_RoundTripProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	dateSchema := &contract.Schema{Type: "string", Format: "date"}

	properties.Property("valid dates round trip to the parsed date", prop.ForAll(
		func(days int) bool {
			d := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
			s := d.Format(dateLayout)
			want, err := time.Parse(dateLayout, s)
			if err != nil {
				return false
			}
			got, ok := PostCast(PreCast(s, dateSchema), dateSchema).(time.Time)
			return ok && got.Equal(want)
		},
		gen.IntRange(-20000, 20000),
	))

	properties.Property("strings without a date format are unchanged", prop.ForAll(
		func(s string, format string) bool {
			schema := &contract.Schema{Type: "string", Format: format}
			return PostCast(PreCast(s, schema), schema) == s
		},
		gen.AlphaString(),
		gen.OneConstOf("", "email", "uuid", "byte", "password"),
	))

	properties.TestingRun(t)
}
