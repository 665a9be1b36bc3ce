// Package shape defines the descriptor contract the msgpack core consumes.
//
// A Shape describes the structural form of a user type: one of six
// variants (primitive, enum, nullable, enumerable, dictionary, object).
// Producing a Shape — by walking struct tags, running a derive macro, or
// hand-authoring one — is explicitly out of scope for this package; shape
// is the seam between that producer and the core's converter cache.
package shape

import "reflect"

// Kind identifies which of the six shape variants a Shape implements.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindEnum
	KindNullable
	KindEnumerable
	KindDictionary
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindNullable:
		return "nullable"
	case KindEnumerable:
		return "enumerable"
	case KindDictionary:
		return "dictionary"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Shape is the common interface every variant satisfies.
type Shape interface {
	Kind() Kind
	Type() reflect.Type
}

// PrimitiveKind enumerates the fixed set of scalar kinds the core ships
// built-in converters for (§4.D).
type PrimitiveKind uint8

const (
	PrimBool PrimitiveKind = iota
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
	PrimFloat32
	PrimFloat64
	PrimString
	PrimBytes
	PrimChar
	PrimTime     // local DateTime-equivalent -> timestamp extension
	PrimTimeOff  // DateTime + offset pair
	PrimTimeOnly // tick-count i64 mapping
	PrimBigInt
	PrimDecimal
	PrimGUID
)

// PrimitiveShape describes one of the built-in scalar kinds.
type PrimitiveShape struct {
	PKind PrimitiveKind
	Typ   reflect.Type
}

func (p *PrimitiveShape) Kind() Kind          { return KindPrimitive }
func (p *PrimitiveShape) Type() reflect.Type  { return p.Typ }
func (p *PrimitiveShape) Primitive() PrimitiveKind { return p.PKind }

// EnumMember is one (name, value) pair of an enum's ordered member list.
// Name is the serialized name after any EnumMemberShape(Name) override.
type EnumMember struct {
	Name  string
	Value int64
}

// EnumShape describes an enumeration: an underlying integer kind plus an
// ordered list of named members.
type EnumShape struct {
	Typ        reflect.Type
	Underlying PrimitiveKind
	Members    []EnumMember
}

func (e *EnumShape) Kind() Kind         { return KindEnum }
func (e *EnumShape) Type() reflect.Type { return e.Typ }

// NullableShape wraps an element shape with the convention that MessagePack
// Nil decodes to the type's absent value (a nil pointer, a zero Optional).
type NullableShape struct {
	Typ     reflect.Type
	Element Shape
}

func (n *NullableShape) Kind() Kind         { return KindNullable }
func (n *NullableShape) Type() reflect.Type { return n.Typ }

// Iterator walks the elements of an Enumerable container.
type Iterator interface {
	// Next advances and reports whether a value is available.
	Next() bool
	// Value returns the current element. Valid only after Next returns true.
	Value() reflect.Value
}

// EnumerableShape describes a sequence container: slice, array, channel, or
// any user type that can produce an Iterator and (optionally) be
// constructed from a contiguous span of decoded elements.
type EnumerableShape struct {
	Typ     reflect.Type
	Element Shape

	// NewIterator produces an Iterator over container's current elements.
	NewIterator func(container reflect.Value) Iterator

	// SpanConstructor builds a container value from a contiguous slice of
	// decoded elements, when the container type permits a single bulk
	// construction (e.g. a fixed-size array, or a slice that needs no
	// element-by-element append). Nil if unavailable.
	SpanConstructor func(elems []reflect.Value) reflect.Value

	// NewBuilder produces an empty, growable staging value plus an append
	// function and a finish function, used when SpanConstructor is nil.
	NewBuilder func() (state reflect.Value, appendFn func(state, elem reflect.Value) reflect.Value, finish func(state reflect.Value) reflect.Value)
}

func (s *EnumerableShape) Kind() Kind         { return KindEnumerable }
func (s *EnumerableShape) Type() reflect.Type { return s.Typ }

// DictEntry is one decoded (key, value) pair staged for a Dictionary
// constructor.
type DictEntry struct {
	Key   reflect.Value
	Value reflect.Value
}

// DictIterator walks the (key, value) pairs of a Dictionary container.
type DictIterator interface {
	Next() bool
	Key() reflect.Value
	Value() reflect.Value
}

// DictionaryShape describes a key/value container.
type DictionaryShape struct {
	Typ   reflect.Type
	Key   Shape
	Value Shape

	NewIterator func(container reflect.Value) DictIterator
	Constructor func(entries []DictEntry) reflect.Value
}

func (d *DictionaryShape) Kind() Kind         { return KindDictionary }
func (d *DictionaryShape) Type() reflect.Type { return d.Typ }

// PropertyShape describes one property/field of an Object.
type PropertyShape struct {
	// Name is the serialized name: either the inferred member name, or an
	// explicit rename supplied by a member-level attribute. NameExplicit
	// distinguishes the two, since the core's CacheOptions.PropertyNamingPolicy
	// (§4.E.2) applies only to inferred names, never to an explicit rename.
	Name string

	// NameExplicit is true when Name came from an explicit rename attribute
	// rather than being inferred from the member's own name.
	NameExplicit bool

	Type Shape

	Get func(obj reflect.Value) reflect.Value
	// Set is nil for read-only (constructor-only) properties.
	Set func(obj reflect.Value, v reflect.Value)

	// Key is non-nil when the property carries an explicit integer key
	// attribute, used for array layout (§4.E.3).
	Key *int

	Required bool

	// Default, if non-nil, returns the property's declared default value.
	// Absent (nil) means "the type's zero value is the default."
	Default func() reflect.Value

	Ignore bool

	// ConverterOverride, if non-nil, is an opaque converter supplied by the
	// shape producer (e.g. from a member-level attribute) that the core
	// must prefer over its own default for this property's type. Typed as
	// interface{} here to avoid an import cycle with the core's Converter
	// interface; the core type-asserts it to its own Converter type.
	ConverterOverride interface{}
}

// ConstructorParam is one parameter of a non-default constructor.
type ConstructorParam struct {
	// Name matches a PropertyShape.Name when binding by name.
	Name     string
	Position int
	Default  func() reflect.Value
}

// ArgState is the mutable staging container filled from decoded property
// values before a non-default Factory is invoked (§4.F, GLOSSARY).
type ArgState struct {
	values []reflect.Value
	filled []bool
}

// NewArgState allocates a staging container for n positional parameters.
func NewArgState(n int) *ArgState {
	return &ArgState{values: make([]reflect.Value, n), filled: make([]bool, n)}
}

// Set records the decoded value for parameter at position.
func (a *ArgState) Set(position int, v reflect.Value) {
	a.values[position] = v
	a.filled[position] = true
}

// Get returns the staged value for position and whether it was set.
func (a *ArgState) Get(position int) (reflect.Value, bool) {
	if position < 0 || position >= len(a.values) {
		return reflect.Value{}, false
	}
	return a.values[position], a.filled[position]
}

// Len reports the number of positional slots.
func (a *ArgState) Len() int { return len(a.values) }

// ConstructorShape describes a type's non-default constructor.
type ConstructorShape struct {
	Params  []ConstructorParam
	Factory func(state *ArgState) (reflect.Value, error)
}

// UnionCase associates a registered subtype with its declared alias. Alias
// is either an int64 (non-negative integer alias) or a string; exactly one
// of IntAlias/IsInt and StringAlias is meaningful, selected by IsInt.
type UnionCase struct {
	SubType    reflect.Type
	SubShape   *ObjectShape
	IsInt      bool
	IntAlias   int64
	StringAlias string
}

// ObjectShape describes a structured type: an ordered property list plus an
// optional non-default constructor, and optionally a set of registered
// union subtypes discriminated by alias (§4.H).
type ObjectShape struct {
	Typ         reflect.Type
	Properties  []PropertyShape
	Constructor *ConstructorShape

	// Unions, when non-empty, marks this shape as a union base: encode/decode
	// wrap the chosen layout in the sub-type dispatcher (§4.H).
	Unions []UnionCase

	// OnAfterDeserialize, if non-nil, is invoked after a decode finishes
	// populating obj, on both the default and the Constructor path (§4.F
	// step 3).
	OnAfterDeserialize func(obj reflect.Value)

	// UnusedData, if non-nil, identifies the field that stores unrecognized
	// properties encountered during decode for later round-trip on re-encode
	// (§4.J). Get/Set operate on a value of the core's UnusedData type,
	// carried here as reflect.Value to avoid an import cycle.
	UnusedData *UnusedDataField
}

// UnusedDataField locates an Object's unused-data passthrough slot.
type UnusedDataField struct {
	Get func(obj reflect.Value) reflect.Value
	Set func(obj reflect.Value, v reflect.Value)
}

func (o *ObjectShape) Kind() Kind         { return KindObject }
func (o *ObjectShape) Type() reflect.Type { return o.Typ }
