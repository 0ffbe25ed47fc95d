package vm

// ---------------------------------------------------------------------------
// Value: tagged union for FluxScript runtime values
// ---------------------------------------------------------------------------

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindArray
	KindMap
	KindClosure
	KindBuiltin
	KindBlueprint
)

// kindNames maps a Kind to its display name.
var kindNames = [...]string{
	KindNone:      "none",
	KindInt:       "int",
	KindFloat:     "float",
	KindBool:      "bool",
	KindString:    "string",
	KindArray:     "array",
	KindMap:       "map",
	KindClosure:   "function",
	KindBuiltin:   "builtin",
	KindBlueprint: "blueprint",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a FluxScript runtime value. Exactly one variant is populated,
// selected by the kind tag. Arrays and maps are reference values: copying
// a Value copies the pointer, so mutation is visible through every alias.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	arr  *Array
	m    *Map
	cl   *Closure
	bi   *Builtin
	fn   *Blueprint
}

// None is the absence value.
var None = Value{kind: KindNone}

// FromInt builds an integer value.
func FromInt(i int64) Value { return Value{kind: KindInt, i: i} }

// FromFloat builds a float value.
func FromFloat(f float64) Value { return Value{kind: KindFloat, f: f} }

// FromBool builds a boolean value.
func FromBool(b bool) Value { return Value{kind: KindBool, b: b} }

// FromString builds a string value.
func FromString(s string) Value { return Value{kind: KindString, s: s} }

// FromArray wraps an array.
func FromArray(a *Array) Value { return Value{kind: KindArray, arr: a} }

// FromMap wraps a map.
func FromMap(m *Map) Value { return Value{kind: KindMap, m: m} }

// FromClosure wraps a closure.
func FromClosure(c *Closure) Value { return Value{kind: KindClosure, cl: c} }

// FromBuiltin wraps a built-in function.
func FromBuiltin(b *Builtin) Value { return Value{kind: KindBuiltin, bi: b} }

// FromBlueprint wraps a compile-time function blueprint. Blueprints only
// ever appear inside constant pools.
func FromBlueprint(fn *Blueprint) Value { return Value{kind: KindBlueprint, fn: fn} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer payload.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload.
func (v Value) Float() float64 { return v.f }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Str returns the string payload.
func (v Value) Str() string { return v.s }

// Array returns the array payload.
func (v Value) Array() *Array { return v.arr }

// Map returns the map payload.
func (v Value) Map() *Map { return v.m }

// Closure returns the closure payload.
func (v Value) Closure() *Closure { return v.cl }

// Builtin returns the built-in payload.
func (v Value) Builtin() *Builtin { return v.bi }

// Blueprint returns the blueprint payload.
func (v Value) Blueprint() *Blueprint { return v.fn }

// IsNone reports whether v is the absence value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// IsNumber reports whether v is an int or a float.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

// AsFloat returns the numeric payload widened to float64.
// Only meaningful when IsNumber reports true.
func (v Value) AsFloat() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// IsTruthy implements FluxScript truthiness: none and false are falsy,
// zero numbers and empty strings/arrays/maps are falsy, everything else
// is truthy.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindNone:
		return false
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindBool:
		return v.b
	case KindString:
		return v.s != ""
	case KindArray:
		return len(v.arr.Elems) > 0
	case KindMap:
		return v.m.Len() > 0
	case KindClosure, KindBuiltin, KindBlueprint:
		return true
	}
	return false
}

// Equal implements FluxScript value equality. Ints and floats compare
// numerically across kinds; arrays and maps compare element-wise;
// closures and builtins compare by identity.
func (v Value) Equal(o Value) bool {
	if v.IsNumber() && o.IsNumber() {
		if v.kind == KindInt && o.kind == KindInt {
			return v.i == o.i
		}
		return v.AsFloat() == o.AsFloat()
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr.Elems) != len(o.arr.Elems) {
			return false
		}
		for i := range v.arr.Elems {
			if !v.arr.Elems[i].Equal(o.arr.Elems[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if v.m.Len() != o.m.Len() {
			return false
		}
		for _, k := range v.m.Keys() {
			ov, ok := o.m.Get(k)
			if !ok {
				return false
			}
			mv, _ := v.m.Get(k)
			if !mv.Equal(ov) {
				return false
			}
		}
		return true
	case KindClosure:
		return v.cl == o.cl
	case KindBuiltin:
		return v.bi == o.bi
	case KindBlueprint:
		return v.fn == o.fn
	}
	return false
}

// ---------------------------------------------------------------------------
// Container values
// ---------------------------------------------------------------------------

// Array is an ordered, mutable, 0-indexed sequence.
type Array struct {
	Elems []Value
}

// NewArray builds an array from the given elements.
func NewArray(elems ...Value) *Array {
	return &Array{Elems: elems}
}

// mapKey is the comparable form of a hashable primitive value.
type mapKey struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
}

// keyOf converts a value into its comparable map-key form. Only primitive
// kinds are hashable.
func keyOf(v Value) (mapKey, bool) {
	switch v.kind {
	case KindNone:
		return mapKey{kind: KindNone}, true
	case KindInt:
		return mapKey{kind: KindInt, i: v.i}, true
	case KindFloat:
		return mapKey{kind: KindFloat, f: v.f}, true
	case KindBool:
		return mapKey{kind: KindBool, b: v.b}, true
	case KindString:
		return mapKey{kind: KindString, s: v.s}, true
	}
	return mapKey{}, false
}

// Map is a mutable key/value mapping that preserves insertion order.
// Keys are restricted to hashable primitives.
type Map struct {
	order   []Value
	entries map[mapKey]Value
}

// NewMap builds an empty map.
func NewMap() *Map {
	return &Map{entries: make(map[mapKey]Value)}
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.order) }

// Get looks up a key. The second result is false when the key is absent
// or unhashable.
func (m *Map) Get(key Value) (Value, bool) {
	k, ok := keyOf(key)
	if !ok {
		return None, false
	}
	v, ok := m.entries[k]
	return v, ok
}

// Set binds key to value, appending to the insertion order when the key
// is new. Returns false for unhashable keys.
func (m *Map) Set(key, value Value) bool {
	k, ok := keyOf(key)
	if !ok {
		return false
	}
	if _, exists := m.entries[k]; !exists {
		m.order = append(m.order, key)
	}
	m.entries[k] = value
	return true
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []Value { return m.order }

// ---------------------------------------------------------------------------
// Callable values
// ---------------------------------------------------------------------------

// Blueprint is the compile-time template for a function or lambda body:
// its parameter names, its own instruction stream and constant pool, and
// the free variable names its body references. Anonymous blueprints have
// an empty Name.
type Blueprint struct {
	Name     string
	Params   []string
	FreeVars []string
	Code     []Instruction
	Consts   []Value
}

// Closure is a blueprint bound to the environment captured when the
// defining instruction executed. Two closures built from the same
// blueprint own independent environments.
type Closure struct {
	Fn  *Blueprint
	Env map[string]Value
}

// Builtin is a host function callable from scripts.
type Builtin struct {
	Name string
	Call func(args []Value) (Value, error)
}
