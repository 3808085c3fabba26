package domain

import (
	"math"
	"slices"

	"go.trai.ch/zerr"
)

// ValueKind is the type tag of a parameter value.
type ValueKind uint8

const (
	// ValueFloat is a float64.
	ValueFloat ValueKind = iota + 1
	// ValueInt is an int64.
	ValueInt
	// ValueBool is a boolean.
	ValueBool
	// ValueString is a string.
	ValueString
	// ValueColor is a straight-alpha RGBA color.
	ValueColor
	// ValueVec2 is a 2D vector.
	ValueVec2
)

func (k ValueKind) String() string {
	switch k {
	case ValueFloat:
		return "float"
	case ValueInt:
		return "int"
	case ValueBool:
		return "bool"
	case ValueString:
		return "string"
	case ValueColor:
		return "color"
	case ValueVec2:
		return "vec2"
	default:
		return "invalid"
	}
}

// Numeric reports whether values of kind k interpolate between keyframes.
func (k ValueKind) Numeric() bool {
	switch k {
	case ValueFloat, ValueInt, ValueColor, ValueVec2:
		return true
	default:
		return false
	}
}

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color [4]float32

// Premultiplied returns c with its color channels scaled by alpha.
func (c Color) Premultiplied() Color {
	return Color{c[0] * c[3], c[1] * c[3], c[2] * c[3], c[3]}
}

// Vec2 is a 2D vector.
type Vec2 struct {
	X float64
	Y float64
}

// Value is a tagged parameter value. Only the field selected by Kind is meaningful.
type Value struct {
	Kind  ValueKind
	Float float64
	Int   int64
	Bool  bool
	Str   string
	Color Color
	Vec2  Vec2
}

// Float returns a float value.
func Float(f float64) Value { return Value{Kind: ValueFloat, Float: f} }

// Int returns an int value.
func Int(i int64) Value { return Value{Kind: ValueInt, Int: i} }

// Bool returns a bool value.
func Bool(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// String returns a string value.
func String(s string) Value { return Value{Kind: ValueString, Str: s} }

// RGBA returns a color value.
func RGBA(r, g, b, a float32) Value { return Value{Kind: ValueColor, Color: Color{r, g, b, a}} }

// Vector returns a vec2 value.
func Vector(x, y float64) Value { return Value{Kind: ValueVec2, Vec2: Vec2{X: x, Y: y}} }

// Interpolation selects how a curve moves from one keyframe to the next.
type Interpolation uint8

const (
	// Step holds the keyframe value until the next keyframe.
	Step Interpolation = iota
	// Linear interpolates at constant speed.
	Linear
	// EaseInOut interpolates along a smoothstep.
	EaseInOut
)

// Keyframe is a value at a local time. Interp governs the segment that starts here.
type Keyframe struct {
	At     Time
	Value  Value
	Interp Interpolation
}

// Curve is a keyframed value over a component's local time.
type Curve struct {
	Kind ValueKind
	Keys []Keyframe
}

// Validate checks that the curve is non-empty, single-kinded and strictly ordered.
func (c *Curve) Validate() error {
	if len(c.Keys) == 0 {
		return zerr.Wrap(ErrInvalidArgument, "curve has no keyframes")
	}
	for i, k := range c.Keys {
		if k.Value.Kind != c.Kind {
			return zerr.With(zerr.With(zerr.Wrap(ErrKindMismatch, "keyframe kind differs from curve kind"),
				"keyframe", i), "kind", k.Value.Kind.String())
		}
		if i > 0 && k.At <= c.Keys[i-1].At {
			return zerr.With(zerr.Wrap(ErrInvalidArgument, "keyframes are not strictly increasing"), "keyframe", i)
		}
	}
	return nil
}

// Eval evaluates the curve at local time t. Before the first and after the last
// keyframe the curve holds the boundary value.
func (c *Curve) Eval(t Time) Value {
	keys := c.Keys
	i, found := slices.BinarySearchFunc(keys, t, func(k Keyframe, t Time) int {
		switch {
		case k.At < t:
			return -1
		case k.At > t:
			return 1
		default:
			return 0
		}
	})
	switch {
	case found:
		return keys[i].Value
	case i == 0:
		return keys[0].Value
	case i == len(keys):
		return keys[len(keys)-1].Value
	}

	a, b := keys[i-1], keys[i]
	if !c.Kind.Numeric() || a.Interp == Step {
		return a.Value
	}
	f := float64(t-a.At) / float64(b.At-a.At)
	if a.Interp == EaseInOut {
		f = f * f * (3 - 2*f)
	}
	return lerp(a.Value, b.Value, f)
}

func lerp(a, b Value, f float64) Value {
	out := a
	switch a.Kind {
	case ValueFloat:
		out.Float = a.Float + (b.Float-a.Float)*f
	case ValueInt:
		out.Int = a.Int + int64(math.Round(float64(b.Int-a.Int)*f))
	case ValueColor:
		for i := range out.Color {
			out.Color[i] = a.Color[i] + (b.Color[i]-a.Color[i])*float32(f)
		}
	case ValueVec2:
		out.Vec2.X = a.Vec2.X + (b.Vec2.X-a.Vec2.X)*f
		out.Vec2.Y = a.Vec2.Y + (b.Vec2.Y-a.Vec2.Y)*f
	}
	return out
}

// Parameter is either a constant value or a curve.
type Parameter struct {
	value Value
	curve *Curve
}

// Constant returns a parameter that never varies.
func Constant(v Value) Parameter {
	return Parameter{value: v}
}

// Animated returns a parameter driven by c. The curve is copied.
func Animated(c Curve) Parameter {
	c.Keys = slices.Clone(c.Keys)
	return Parameter{curve: &c}
}

// Kind returns the value kind the parameter evaluates to.
func (p Parameter) Kind() ValueKind {
	if p.curve != nil {
		return p.curve.Kind
	}
	return p.value.Kind
}

// IsConstant reports whether the parameter does not depend on time.
func (p Parameter) IsConstant() bool {
	return p.curve == nil
}

// Curve returns the curve behind an animated parameter.
func (p Parameter) Curve() (*Curve, bool) {
	return p.curve, p.curve != nil
}

// Eval evaluates the parameter at local time t.
func (p Parameter) Eval(t Time) Value {
	if p.curve != nil {
		return p.curve.Eval(t)
	}
	return p.value
}

// Validate checks that the parameter is well formed.
func (p Parameter) Validate() error {
	if p.curve != nil {
		return p.curve.Validate()
	}
	if p.value.Kind == 0 || p.value.Kind > ValueVec2 {
		return zerr.Wrap(ErrInvalidArgument, "parameter has no value kind")
	}
	return nil
}

// NamedParameter is one entry of a component's ordered parameter list.
type NamedParameter struct {
	Name  string
	Param Parameter
}

// Params is the set of parameter values handed to a processor, evaluated at local time.
type Params []NamedValue

// NamedValue is an evaluated parameter.
type NamedValue struct {
	Name  string
	Value Value
}

// Get returns the value named name.
func (p Params) Get(name string) (Value, bool) {
	for _, nv := range p {
		if nv.Name == name {
			return nv.Value, true
		}
	}
	return Value{}, false
}

// Float returns the float named name, or def when absent or of another kind.
func (p Params) Float(name string, def float64) float64 {
	if v, ok := p.Get(name); ok && v.Kind == ValueFloat {
		return v.Float
	}
	return def
}

// Color returns the color named name, or def.
func (p Params) Color(name string, def Color) Color {
	if v, ok := p.Get(name); ok && v.Kind == ValueColor {
		return v.Color
	}
	return def
}

// Text returns the string named name, or def.
func (p Params) Text(name, def string) string {
	if v, ok := p.Get(name); ok && v.Kind == ValueString {
		return v.Str
	}
	return def
}
