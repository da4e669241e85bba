// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package fory

import "reflect"

// TypeId is the wire tag naming a protocol kind. Numeric assignments are part
// of the cross-language protocol and must not be renumbered.
type TypeId int16

const (
	UNKNOWN TypeId = 0
	BOOL    TypeId = 1
	INT8    TypeId = 2
	INT16   TypeId = 3
	INT32   TypeId = 4

	VAR_INT32    TypeId = 5
	INT64        TypeId = 6
	VAR_INT64    TypeId = 7
	TAGGED_INT64 TypeId = 8

	UINT8         TypeId = 9
	UINT16        TypeId = 10
	UINT32        TypeId = 11
	VAR_UINT32    TypeId = 12
	UINT64        TypeId = 13
	VAR_UINT64    TypeId = 14
	TAGGED_UINT64 TypeId = 15

	FLOAT8   TypeId = 16
	FLOAT16  TypeId = 17
	BFLOAT16 TypeId = 18
	FLOAT32  TypeId = 19
	FLOAT64  TypeId = 20

	STRING TypeId = 21
	LIST   TypeId = 22
	SET    TypeId = 23
	MAP    TypeId = 24

	ENUM                    TypeId = 25
	NAMED_ENUM              TypeId = 26
	STRUCT                  TypeId = 27
	COMPATIBLE_STRUCT       TypeId = 28
	NAMED_STRUCT            TypeId = 29
	NAMED_COMPATIBLE_STRUCT TypeId = 30
	EXT                     TypeId = 31
	NAMED_EXT               TypeId = 32
	UNION                   TypeId = 33
	TYPED_UNION             TypeId = 34
	NAMED_UNION             TypeId = 35

	NONE TypeId = 36

	DURATION  TypeId = 37
	TIMESTAMP TypeId = 38
	DATE      TypeId = 39
	DECIMAL   TypeId = 40
	BINARY    TypeId = 41

	ARRAY          TypeId = 42
	BOOL_ARRAY     TypeId = 43
	INT8_ARRAY     TypeId = 44
	INT16_ARRAY    TypeId = 45
	INT32_ARRAY    TypeId = 46
	INT64_ARRAY    TypeId = 47
	UINT8_ARRAY    TypeId = 48
	UINT16_ARRAY   TypeId = 49
	UINT32_ARRAY   TypeId = 50
	UINT64_ARRAY   TypeId = 51
	FLOAT8_ARRAY   TypeId = 52
	FLOAT16_ARRAY  TypeId = 53
	BFLOAT16_ARRAY TypeId = 54
	FLOAT32_ARRAY  TypeId = 55
	FLOAT64_ARRAY  TypeId = 56

	// aliases matching the naming the teacher's collection codec already used
	FLOAT  = FLOAT32
	DOUBLE = FLOAT64
)

// invalidUserTypeID marks a TypeInfo/TypeMeta as id-unregistered (name-only).
const invalidUserTypeID = ^uint32(0)

// IsUserTypeKind reports whether id names a user-registered kind (struct,
// enum, ext, union, in either id- or name-registered variants).
func IsUserTypeKind(id TypeId) bool {
	switch id {
	case ENUM, NAMED_ENUM, STRUCT, COMPATIBLE_STRUCT, NAMED_STRUCT, NAMED_COMPATIBLE_STRUCT,
		EXT, NAMED_EXT, TYPED_UNION, NAMED_UNION:
		return true
	default:
		return false
	}
}

// NeedsTypeInfoForField reports whether a field declared with this element
// type still requires a per-value type-info prefix even when the field's
// type is statically known, because the wire kind is itself polymorphic.
func NeedsTypeInfoForField(id TypeId) bool {
	switch id {
	case STRUCT, COMPATIBLE_STRUCT, NAMED_STRUCT, NAMED_COMPATIBLE_STRUCT, EXT, NAMED_EXT, UNKNOWN:
		return true
	default:
		return false
	}
}

// IsPrimitiveArrayType reports whether id names one of the typed primitive
// array wire kinds (fixed-width payload, byte-length prefixed).
func IsPrimitiveArrayType(id TypeId) bool {
	return id >= BOOL_ARRAY && id <= FLOAT64_ARRAY
}

var interfaceSliceType = reflect.TypeOf((*[]interface{})(nil)).Elem()
var emptyInterfaceType = reflect.TypeOf((*interface{})(nil)).Elem()

// RefMode is the per-field choice of how nullability and reference tracking
// are encoded, resolved once when a binding is built and then reused on every
// call for that field.
type RefMode int8

const (
	RefModeNone     RefMode = iota // payload only, no null/ref handling
	RefModeNullOnly                // one null-flag byte, then payload
	RefModeTracking                // full ref protocol: null / back-ref / new value
)

// RefModeFrom picks the RefMode implied by a declared field's nullable/trackRef bits.
func RefModeFrom(nullable, trackRef bool) RefMode {
	switch {
	case trackRef:
		return RefModeTracking
	case nullable:
		return RefModeNullOnly
	default:
		return RefModeNone
	}
}

// RefFlag wire values. The relative semantics (null / back-reference / new
// tracked value / untracked non-null) are fixed by the spec; the concrete
// byte assignments below match the values used across Fory's language ports.
const (
	NullFlag         int8 = -3
	RefFlagByte      int8 = -2
	NotNullValueFlag int8 = -1
	RefValueFlag     int8 = 0
)
