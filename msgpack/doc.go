// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

// Package msgpack is a schema-driven MessagePack serializer core.
//
// Given a shape.Shape describing a user type, a ConverterCache composes a
// tree of Converters — one per type — that encode and decode values of
// that type to and from the MessagePack wire format. The wire codec
// (Reader/Writer), the converter tree, and the object layouts (map, array,
// union, reference-preserving, version-safe passthrough) are the parts
// this package implements; producing a shape.Shape for a given Go type is
// left to the caller.
package msgpack
