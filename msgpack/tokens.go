// Copyright (c) 2012-2020 Ugorji Nwoke. All rights reserved.
// Use of this source code is governed by a MIT license found in the LICENSE file.

package msgpack

// TokenKind is one of the MessagePack value kinds (§3.1), with Float32 and
// Float64 kept as two separate kinds (ten in all).
type TokenKind uint8

const (
	TokenNil TokenKind = iota
	TokenBool
	TokenInt
	TokenFloat32
	TokenFloat64
	TokenString
	TokenBinary
	TokenArray
	TokenMap
	TokenExtension
)

func (k TokenKind) String() string {
	switch k {
	case TokenNil:
		return "Nil"
	case TokenBool:
		return "Bool"
	case TokenInt:
		return "Integer"
	case TokenFloat32:
		return "Float32"
	case TokenFloat64:
		return "Float64"
	case TokenString:
		return "String"
	case TokenBinary:
		return "Binary"
	case TokenArray:
		return "Array"
	case TokenMap:
		return "Map"
	case TokenExtension:
		return "Extension"
	default:
		return "Unknown"
	}
}

// Format byte constants, per the MessagePack specification (§6.1).
const (
	mpNil     byte = 0xc0
	mpFalse   byte = 0xc2
	mpTrue    byte = 0xc3
	mpFloat32 byte = 0xca
	mpFloat64 byte = 0xcb

	mpUint8  byte = 0xcc
	mpUint16 byte = 0xcd
	mpUint32 byte = 0xce
	mpUint64 byte = 0xcf

	mpInt8  byte = 0xd0
	mpInt16 byte = 0xd1
	mpInt32 byte = 0xd2
	mpInt64 byte = 0xd3

	mpFixStrMin byte = 0xa0
	mpFixStrMax byte = 0xbf
	mpStr8      byte = 0xd9
	mpStr16     byte = 0xda
	mpStr32     byte = 0xdb

	mpBin8  byte = 0xc4
	mpBin16 byte = 0xc5
	mpBin32 byte = 0xc6

	mpFixArrayMin byte = 0x90
	mpFixArrayMax byte = 0x9f
	mpArray16     byte = 0xdc
	mpArray32     byte = 0xdd

	mpFixMapMin byte = 0x80
	mpFixMapMax byte = 0x8f
	mpMap16     byte = 0xde
	mpMap32     byte = 0xdf

	mpFixExt1  byte = 0xd4
	mpFixExt2  byte = 0xd5
	mpFixExt4  byte = 0xd6
	mpFixExt8  byte = 0xd7
	mpFixExt16 byte = 0xd8
	mpExt8     byte = 0xc7
	mpExt16    byte = 0xc8
	mpExt32    byte = 0xc9

	mpPosFixIntMax byte = 0x7f // 0x00..0x7f encode themselves
	mpNegFixIntMin byte = 0xe0 // 0xe0..0xff encode -32..-1
)

// extTimestamp is the reserved extension tag for the timestamp type (§4.A).
const extTimestamp int8 = -1

// extReference is this library's reserved negative extension tag carrying a
// reference-preservation index (§6.1, §4.I). Negative application-specific
// tags in the range -128..-2 are available for library use; -1 is reserved
// for the timestamp type by the format's own registry.
const extReference int8 = -2

// peekKind classifies the format byte at the head of a value without
// consuming it.
func peekKind(b byte) TokenKind {
	switch {
	case b == mpNil:
		return TokenNil
	case b == mpFalse || b == mpTrue:
		return TokenBool
	case b <= mpPosFixIntMax || b >= mpNegFixIntMin:
		return TokenInt
	case b == mpUint8 || b == mpUint16 || b == mpUint32 || b == mpUint64:
		return TokenInt
	case b == mpInt8 || b == mpInt16 || b == mpInt32 || b == mpInt64:
		return TokenInt
	case b == mpFloat32:
		return TokenFloat32
	case b == mpFloat64:
		return TokenFloat64
	case (b >= mpFixStrMin && b <= mpFixStrMax) || b == mpStr8 || b == mpStr16 || b == mpStr32:
		return TokenString
	case b == mpBin8 || b == mpBin16 || b == mpBin32:
		return TokenBinary
	case (b >= mpFixArrayMin && b <= mpFixArrayMax) || b == mpArray16 || b == mpArray32:
		return TokenArray
	case (b >= mpFixMapMin && b <= mpFixMapMax) || b == mpMap16 || b == mpMap32:
		return TokenMap
	case b == mpFixExt1 || b == mpFixExt2 || b == mpFixExt4 || b == mpFixExt8 || b == mpFixExt16 ||
		b == mpExt8 || b == mpExt16 || b == mpExt32:
		return TokenExtension
	default:
		return TokenNil
	}
}
