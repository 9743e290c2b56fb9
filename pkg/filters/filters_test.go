package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk/pkg/domain"
)

func TestParse(t *testing.T) {
	pairs, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, pairs)

	pairs, err = Parse(" part__virtual=False, status = 10 ,")
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"part__virtual", "False"}, {"status", "10"}}, pairs)

	_, err = Parse("status=10,broken")
	require.Error(t, err)
	assert.Equal(t, "Invalid filter: broken", err.Error())

	_, err = Parse("=value")
	assert.Error(t, err)
}

func TestValidate_AllowList(t *testing.T) {
	assert.NoError(t, Validate("serialized=true", nil))
	assert.NoError(t, Validate("serialized=true", []string{"serialized", "status"}))
	assert.EqualError(t, Validate("location=3", []string{"serialized"}), "Invalid filter: location=3")
}

func TestMatch(t *testing.T) {
	item := domain.Item{
		ID:   42,
		Name: "Resistor",
		Fields: map[string]any{
			"serialized": true,
			"status":     10,
			"location":   nil,
		},
	}

	cases := map[string]bool{
		"":                           true,
		"pk=42":                      true,
		"id=41":                      false,
		"name=Resistor":              true,
		"serialized=True":            true,
		"serialized=1":               true,
		"serialized=false":           false,
		"status=10,serialized=true":  true,
		"status=11":                  false,
		"missing=1":                  false,
		"location=None":              true,
		"broken":                     false,
	}
	for filter, want := range cases {
		assert.Equal(t, want, MatchString(item, filter), "filter %q", filter)
	}
}
