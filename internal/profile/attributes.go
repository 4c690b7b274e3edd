package profile

import "github.com/spf13/cast"

// Attributes carries free-form per-profile settings that do not warrant a
// dedicated field, such as the assumed water temperature. Values come from
// YAML, so numeric types are whatever the decoder produced; access goes
// through cast so callers never care.
type Attributes map[string]any

// Float returns the named attribute coerced to float64, or def when the
// attribute is absent or not coercible.
func (a Attributes) Float(name string, def float64) float64 {
	v, ok := a[name]
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// Int returns the named attribute coerced to int, or def.
func (a Attributes) Int(name string, def int) int {
	v, ok := a[name]
	if !ok {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

// String returns the named attribute coerced to string, or def.
func (a Attributes) String(name, def string) string {
	v, ok := a[name]
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// Bool returns the named attribute coerced to bool, or def.
func (a Attributes) Bool(name string, def bool) bool {
	v, ok := a[name]
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}
