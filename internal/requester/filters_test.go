package requester

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFilters_Empty(t *testing.T) {
	assert.Equal(t, "", EncodeFilters(nil))
	assert.Equal(t, "", EncodeFilters(Filters{}))
}

func TestEncodeFilters_DropsFalsyValues(t *testing.T) {
	var nilPtr *string
	empty := ""

	tests := []struct {
		name  string
		value any
	}{
		{"empty string", ""},
		{"zero int", 0},
		{"zero int64", int64(0)},
		{"zero uint", uint(0)},
		{"zero float", 0.0},
		{"NaN", math.NaN()},
		{"false", false},
		{"nil", nil},
		{"nil pointer", nilPtr},
		{"pointer to empty string", &empty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "", EncodeFilters(Filters{"status": tt.value}))
		})
	}
}

func TestEncodeFilters_KeepsTruthyValues(t *testing.T) {
	name := "desk lamp"

	encoded := EncodeFilters(Filters{
		"name":           &name,
		"category":       3,
		"order_status":   "1",
		"active":         true,
		"min_price":      9.5,
		"payment_status": "",
		"customer":       nil,
		"archived":       false,
	})

	values, err := url.ParseQuery(encoded)
	require.NoError(t, err)

	assert.Len(t, values, 5)
	assert.Equal(t, []string{"desk lamp"}, values["name"])
	assert.Equal(t, []string{"3"}, values["category"])
	assert.Equal(t, []string{"1"}, values["order_status"])
	assert.Equal(t, []string{"true"}, values["active"])
	assert.Equal(t, []string{"9.5"}, values["min_price"])
}

func TestEncodeFilters_PercentEncodes(t *testing.T) {
	encoded := EncodeFilters(Filters{"name": "a&b=c d"})

	assert.Equal(t, "name=a%26b%3Dc+d", encoded)
	assert.NotContains(t, encoded, "?")
}

func TestEncodeFilters_CoercesOtherTypes(t *testing.T) {
	type code string

	values, err := url.ParseQuery(EncodeFilters(Filters{
		"ids":   []int{1, 2},
		"code":  code("X1"),
		"ratio": float32(1.25),
	}))
	require.NoError(t, err)

	assert.Equal(t, "[1 2]", values.Get("ids"))
	assert.Equal(t, "X1", values.Get("code"))
	assert.Equal(t, "1.25", values.Get("ratio"))
}

func TestEncodeFilters_DoesNotMutateInput(t *testing.T) {
	f := Filters{"name": "x", "status": ""}
	EncodeFilters(f)

	assert.Equal(t, Filters{"name": "x", "status": ""}, f)
}
