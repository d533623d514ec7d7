package condition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 {
	return &v
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		want      Kind
		wantError bool
	}{
		{name: "equal", token: "EQUAL", want: KindEqual},
		{name: "greater", token: "GREATER", want: KindGreater},
		{name: "less", token: "LESS", want: KindLess},
		{name: "range", token: "RANGE", want: KindRange},
		{name: "default", token: "DEFAULT", want: KindDefault},
		{name: "unconditioned", token: "UNCONDITIONED", want: KindUnconditioned},
		{name: "unknown token", token: "BETWEEN", wantError: true},
		{name: "lowercase is not accepted", token: "equal", wantError: true},
		{name: "empty token", token: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := ParseKind(tt.token)
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidOperator)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestKindIsSentinel(t *testing.T) {
	assert.True(t, KindDefault.IsSentinel())
	assert.True(t, KindUnconditioned.IsSentinel())
	assert.False(t, KindEqual.IsSentinel())
	assert.False(t, KindGreater.IsSentinel())
	assert.False(t, KindLess.IsSentinel())
	assert.False(t, KindRange.IsSentinel())
}

func TestResolve_SentinelKindsHaveNoInterval(t *testing.T) {
	for _, kind := range []Kind{KindDefault, KindUnconditioned} {
		iv, err := Resolve(Rule{Kind: kind})
		require.NoError(t, err)
		assert.Nil(t, iv)
	}
}

func TestResolve_GreaterAtIntCeilingMatchesNothing(t *testing.T) {
	// v+1 would wrap; no position lies above the ceiling.
	iv, err := Resolve(Rule{Kind: KindGreater, Value: i64(math.MaxInt64)})
	require.NoError(t, err)
	assert.Nil(t, iv)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		rule      Rule
		want      Interval
		wantError bool
	}{
		{
			name: "equal is a degenerate closed interval",
			rule: Rule{Kind: KindEqual, Value: i64(5)},
			want: Interval{Low: 5, High: 5},
		},
		{
			name: "greater excludes its bound",
			rule: Rule{Kind: KindGreater, Value: i64(5)},
			want: Interval{Low: 6, High: math.MaxInt64},
		},
		{
			name: "less excludes its bound",
			rule: Rule{Kind: KindLess, Value: i64(20)},
			want: Interval{Low: math.MinInt64, High: 19},
		},
		{
			name: "range is closed on both ends",
			rule: Rule{Kind: KindRange, MinValue: i64(3), MaxValue: i64(10)},
			want: Interval{Low: 3, High: 10},
		},
		{
			name:      "equal requires a value",
			rule:      Rule{Kind: KindEqual},
			wantError: true,
		},
		{
			name:      "value must be positive",
			rule:      Rule{Kind: KindGreater, Value: i64(0)},
			wantError: true,
		},
		{
			name:      "negative value rejected",
			rule:      Rule{Kind: KindLess, Value: i64(-3)},
			wantError: true,
		},
		{
			name:      "range requires both bounds",
			rule:      Rule{Kind: KindRange, MinValue: i64(3)},
			wantError: true,
		},
		{
			name:      "range bounds must be ordered",
			rule:      Rule{Kind: KindRange, MinValue: i64(10), MaxValue: i64(3)},
			wantError: true,
		},
		{
			name:      "range with equal bounds rejected",
			rule:      Rule{Kind: KindRange, MinValue: i64(5), MaxValue: i64(5)},
			wantError: true,
		},
		{
			name:      "range bounds must be positive",
			rule:      Rule{Kind: KindRange, MinValue: i64(0), MaxValue: i64(5)},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := Resolve(tt.rule)
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrIncompleteRule)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, iv)
			assert.Equal(t, tt.want, *iv)
		})
	}
}

func TestClassify(t *testing.T) {
	rule, err := Classify("r1", "t1", "q1", "RANGE", nil, i64(3), i64(10))
	require.NoError(t, err)
	assert.Equal(t, KindRange, rule.Kind)
	assert.Equal(t, "q1", rule.QueueID)

	_, err = Classify("r1", "t1", "q1", "SOMETIMES", i64(1), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOperator)
}

func TestRuleDescribe(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want string
	}{
		{name: "equal", rule: Rule{Kind: KindEqual, Value: i64(5)}, want: "EQUAL 5"},
		{name: "greater", rule: Rule{Kind: KindGreater, Value: i64(5)}, want: "GREATER 5"},
		{name: "range", rule: Rule{Kind: KindRange, MinValue: i64(3), MaxValue: i64(10)}, want: "RANGE 3-10"},
		{name: "default", rule: Rule{Kind: KindDefault}, want: "DEFAULT"},
		{name: "unconditioned", rule: Rule{Kind: KindUnconditioned}, want: "UNCONDITIONED"},
		{name: "equal without value falls back to kind", rule: Rule{Kind: KindEqual}, want: "EQUAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Describe())
		})
	}
}
