package filters

import (
	"encoding/json"
	"testing"

	"github.com/BradenHooton/admintable/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	out, err := json.Marshal(v)
	require.NoError(t, err)
	return string(out)
}

func TestBuildPostFilters(t *testing.T) {
	assert.JSONEq(t, `{}`, marshal(t, BuildPostFilters("")))
	assert.JSONEq(t, `{}`, marshal(t, BuildPostFilters("   \t")))

	assert.JSONEq(t, `{"or":[
		{"title":{"containsInsensitive":"go"}},
		{"content":{"containsInsensitive":"go"}}
	]}`, marshal(t, BuildPostFilters("  go ")))
}

func TestBuildAgeCondition(t *testing.T) {
	tests := []struct {
		op   models.AgeOperator
		want string
	}{
		{models.AgeOpEq, `{"equals":30}`},
		{models.AgeOpGte, `{"gte":30}`},
		{models.AgeOpGt, `{"gt":30}`},
		{models.AgeOpLte, `{"lte":30}`},
		{models.AgeOpLt, `{"lt":30}`},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.JSONEq(t, tt.want, marshal(t, BuildAgeCondition(tt.op, 30)))
		})
	}

	assert.Nil(t, BuildAgeCondition(models.AgeOpNone, 30))
	assert.Nil(t, BuildAgeCondition("!=", 30))
}

func TestBuildUserFilters_SearchOnly(t *testing.T) {
	got := BuildUserFilters(" ann ", models.AgeOpNone, "")

	assert.JSONEq(t, `{"or":[
		{"name":{"containsInsensitive":"ann"}},
		{"email":{"containsInsensitive":"ann"}},
		{"phone":{"containsInsensitive":"ann"}}
	]}`, marshal(t, got))
}

func TestBuildUserFilters_AgeOnly(t *testing.T) {
	got := BuildUserFilters("", models.AgeOpGte, "30")
	assert.JSONEq(t, `{"age":{"gte":30}}`, marshal(t, got))
}

func TestBuildUserFilters_AgeAndSearch(t *testing.T) {
	got := BuildUserFilters("ann", models.AgeOpLt, "40")

	require.Len(t, got.And, 2)
	assert.NotNil(t, got.And[0].Age, "age leaf must come first")
	assert.Len(t, got.And[1].Or, 3)
	assert.JSONEq(t, `{"and":[
		{"age":{"lt":40}},
		{"or":[
			{"name":{"containsInsensitive":"ann"}},
			{"email":{"containsInsensitive":"ann"}},
			{"phone":{"containsInsensitive":"ann"}}
		]}
	]}`, marshal(t, got))
}

func TestBuildUserFilters_AgeBoundaries(t *testing.T) {
	tests := []struct {
		val     models.AgeInput
		applied bool
	}{
		{"0", true},
		{"150", true},
		{"-1", false},
		{"151", false},
		{"abc", false},
		{"12.5", false},
		{"NaN", false},
		{" 30 ", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.val), func(t *testing.T) {
			got := BuildUserFilters("", models.AgeOpEq, tt.val)
			if tt.applied {
				require.NotNil(t, got.Age)
				assert.NotNil(t, got.Age.Equals)
			} else {
				assert.True(t, got.IsEmpty())
			}
		})
	}
}

func TestBuildUserFilters_EmptyInputs(t *testing.T) {
	assert.True(t, BuildUserFilters("", models.AgeOpNone, "").IsEmpty())
	assert.True(t, BuildUserFilters("  ", models.AgeOpEq, "").IsEmpty())
	assert.True(t, BuildUserFilters("", models.AgeOpNone, "30").IsEmpty())
}

func TestIsAgeFilterComplete(t *testing.T) {
	assert.True(t, IsAgeFilterComplete(models.AgeOpEq, "30"))
	assert.True(t, IsAgeFilterComplete(models.AgeOpGt, "999"), "range is not checked here")
	assert.False(t, IsAgeFilterComplete(models.AgeOpEq, ""))
	assert.False(t, IsAgeFilterComplete(models.AgeOpNone, "30"))
}

func TestNormalizeAgeInput(t *testing.T) {
	tests := []struct {
		raw    string
		want   models.AgeInput
		notice string
		ok     bool
	}{
		{"", "", "", true},
		{"42", "42", "", true},
		{"151", "150", AgeRangeNotice, true},
		{"1000", "150", AgeRangeNotice, true},
		{"-5", "0", AgeRangeNotice, true},
		{"abc", "", "", false},
		{"150", "150", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, notice, ok := NormalizeAgeInput(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.notice, notice)
		})
	}
}
