package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/internal/core/domain"
)

func TestCurve_Eval(t *testing.T) {
	curve := domain.Curve{
		Kind: domain.ValueFloat,
		Keys: []domain.Keyframe{
			{At: 0, Value: domain.Float(0), Interp: domain.Linear},
			{At: 100, Value: domain.Float(10), Interp: domain.Step},
			{At: 200, Value: domain.Float(20), Interp: domain.EaseInOut},
			{At: 300, Value: domain.Float(40)},
		},
	}
	require.NoError(t, curve.Validate())

	tests := []struct {
		name string
		at   domain.Time
		want float64
	}{
		{"before first key holds", -50, 0},
		{"on a key", 100, 10},
		{"linear midpoint", 50, 5},
		{"step holds", 150, 10},
		{"ease midpoint", 250, 30},
		{"ease quarter", 225, 20 + 20*0.15625},
		{"after last key holds", 1000, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, curve.Eval(tt.at).Float, 1e-9)
		})
	}
}

func TestCurve_EvalNonNumericSteps(t *testing.T) {
	curve := domain.Curve{
		Kind: domain.ValueString,
		Keys: []domain.Keyframe{
			{At: 0, Value: domain.String("a"), Interp: domain.Linear},
			{At: 10, Value: domain.String("b")},
		},
	}
	assert.Equal(t, "a", curve.Eval(9).Str)
	assert.Equal(t, "b", curve.Eval(10).Str)
}

func TestCurve_Validate(t *testing.T) {
	empty := domain.Curve{Kind: domain.ValueFloat}
	require.ErrorIs(t, empty.Validate(), domain.ErrInvalidArgument)

	mixed := domain.Curve{Kind: domain.ValueFloat, Keys: []domain.Keyframe{{At: 0, Value: domain.Int(1)}}}
	require.ErrorIs(t, mixed.Validate(), domain.ErrKindMismatch)

	unordered := domain.Curve{Kind: domain.ValueFloat, Keys: []domain.Keyframe{
		{At: 5, Value: domain.Float(1)},
		{At: 5, Value: domain.Float(2)},
	}}
	require.ErrorIs(t, unordered.Validate(), domain.ErrInvalidArgument)
}

func TestParameter(t *testing.T) {
	c := domain.Constant(domain.RGBA(1, 0, 0, 1))
	assert.True(t, c.IsConstant())
	assert.Equal(t, domain.ValueColor, c.Kind())
	assert.Equal(t, c.Eval(0), c.Eval(domain.Seconds(100)))

	keys := []domain.Keyframe{
		{At: 0, Value: domain.RGBA(0, 0, 0, 1), Interp: domain.Linear},
		{At: 10, Value: domain.RGBA(1, 1, 1, 1)},
	}
	a := domain.Animated(domain.Curve{Kind: domain.ValueColor, Keys: keys})
	keys[0].Value = domain.RGBA(9, 9, 9, 9)

	assert.False(t, a.IsConstant())
	assert.InDelta(t, 0.5, a.Eval(5).Color[0], 1e-6)
	assert.InDelta(t, 0, a.Eval(0).Color[0], 1e-6, "curves are copied on construction")

	require.ErrorIs(t, domain.Constant(domain.Value{}).Validate(), domain.ErrInvalidArgument)
}

func TestParams(t *testing.T) {
	p := domain.Params{
		{Name: "gain", Value: domain.Float(0.5)},
		{Name: "source", Value: domain.String("clip.wav")},
	}
	assert.InDelta(t, 0.5, p.Float("gain", 1), 1e-9)
	assert.InDelta(t, 1, p.Float("source", 1), 1e-9)
	assert.Equal(t, "clip.wav", p.Text("source", ""))
	assert.Equal(t, domain.Color{1, 1, 1, 1}, p.Color("tint", domain.Color{1, 1, 1, 1}))
}
