// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

// DefaultValuesPolicy controls per-property emission during encode (§4.E.2).
type DefaultValuesPolicy uint8

const (
	// SerializeAlways emits every property regardless of its value.
	SerializeAlways DefaultValuesPolicy = iota
	// SerializeNever omits any property whose value equals its declared
	// default (or the type's zero value, when no default is declared).
	SerializeNever
	// SerializeRequired forces emission of properties with no default,
	// applying SerializeNever's rule to the rest.
	SerializeRequired
	// SerializeValueTypes forces emission of all value-typed (non-pointer,
	// non-interface, non-slice/map/chan) properties; other properties
	// follow SerializeNever.
	SerializeValueTypes
	// SerializeReferenceTypes forces emission of all reference-typed
	// properties; other properties follow SerializeNever.
	SerializeReferenceTypes
)

// ReferencePreservationMode controls §4.I.
type ReferencePreservationMode uint8

const (
	RefPreserveOff ReferencePreservationMode = iota
	RefPreserveRejectCycles
	RefPreserveAllowCycles
)

// CacheOptions captures every user-configurable cache option from §4.E.2,
// plus the InternCacheSize option this repo adds for the lru-backed intern
// table (§4.D).
type CacheOptions struct {
	SerializeDefaultValues   DefaultValuesPolicy
	DeserializeDefaultValues bool // true: missing required property is silently defaulted; false (default): it's an error
	SerializeEnumsByName     bool
	InternStrings            bool
	InternCacheSize          int
	PreserveReferences       ReferencePreservationMode
	PerfOverSchemaStability  bool
	IgnoreKeyAttributes      bool

	// PropertyNamingPolicy, when non-nil, transforms an inferred property
	// name before it's used as a map-layout wire key. Never applied to a
	// property whose Name came from an explicit rename attribute
	// (shape.PropertyShape.NameExplicit).
	PropertyNamingPolicy func(string) string
	MaxAsyncBuffer           int
	MaxDepth                 int

	Factories []ConverterFactory
}

// DefaultCacheOptions returns the options a ConverterCache uses when none
// are supplied: emit every property, require all required properties
// present, ordinal enum encoding, no interning, no reference preservation,
// map layout by default, 64-deep recursion limit.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		SerializeDefaultValues: SerializeAlways,
		MaxDepth:               DefaultMaxDepth,
		InternCacheSize:        4096,
	}
}
