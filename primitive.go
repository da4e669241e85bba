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

import (
	"reflect"
	"time"
	"unicode/utf16"
)

// ---- leaf scalar serializers ----

type boolSerializer struct{}

func (boolSerializer) TypeId() TypeId { return BOOL }
func (boolSerializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteBool(v.Bool()) }
func (boolSerializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetBool(ctx.Buffer().ReadBool(ctx.Err()))
}

type int8Serializer struct{}

func (int8Serializer) TypeId() TypeId { return INT8 }
func (int8Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteInt8(int8(v.Int())) }
func (int8Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetInt(int64(ctx.Buffer().ReadInt8(ctx.Err())))
}

type uint8Serializer struct{}

func (uint8Serializer) TypeId() TypeId { return UINT8 }
func (uint8Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteUint8(uint8(v.Uint())) }
func (uint8Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetUint(uint64(ctx.Buffer().ReadUint8(ctx.Err())))
}

type int16Serializer struct{}

func (int16Serializer) TypeId() TypeId { return INT16 }
func (int16Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteInt16(int16(v.Int())) }
func (int16Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetInt(int64(ctx.Buffer().ReadInt16(ctx.Err())))
}

type uint16Serializer struct{}

func (uint16Serializer) TypeId() TypeId { return UINT16 }
func (uint16Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteUint16(uint16(v.Uint())) }
func (uint16Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetUint(uint64(ctx.Buffer().ReadUint16(ctx.Err())))
}

type int32Serializer struct{}

func (int32Serializer) TypeId() TypeId { return INT32 }
func (int32Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteInt32(int32(v.Int())) }
func (int32Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetInt(int64(ctx.Buffer().ReadInt32(ctx.Err())))
}

type varInt32Serializer struct{}

func (varInt32Serializer) TypeId() TypeId { return VAR_INT32 }
func (varInt32Serializer) Write(ctx *WriteContext, v reflect.Value) {
	ctx.Buffer().WriteVarint32(int32(v.Int()))
}
func (varInt32Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetInt(int64(ctx.Buffer().ReadVarint32(ctx.Err())))
}

type uint32Serializer struct{}

func (uint32Serializer) TypeId() TypeId { return UINT32 }
func (uint32Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteUint32(uint32(v.Uint())) }
func (uint32Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetUint(uint64(ctx.Buffer().ReadUint32(ctx.Err())))
}

type varUint32Serializer struct{}

func (varUint32Serializer) TypeId() TypeId { return VAR_UINT32 }
func (varUint32Serializer) Write(ctx *WriteContext, v reflect.Value) {
	ctx.Buffer().WriteVarUint32(uint32(v.Uint()))
}
func (varUint32Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetUint(uint64(ctx.Buffer().ReadVarUint32(ctx.Err())))
}

type int64Serializer struct{}

func (int64Serializer) TypeId() TypeId { return INT64 }
func (int64Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteInt64(v.Int()) }
func (int64Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetInt(ctx.Buffer().ReadInt64(ctx.Err()))
}

type varInt64Serializer struct{}

func (varInt64Serializer) TypeId() TypeId { return VAR_INT64 }
func (varInt64Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteVarint64(v.Int()) }
func (varInt64Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetInt(ctx.Buffer().ReadVarint64(ctx.Err()))
}

type taggedInt64Serializer struct{}

func (taggedInt64Serializer) TypeId() TypeId { return TAGGED_INT64 }
func (taggedInt64Serializer) Write(ctx *WriteContext, v reflect.Value) {
	ctx.Buffer().WriteTaggedInt64(v.Int())
}
func (taggedInt64Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetInt(ctx.Buffer().ReadTaggedInt64(ctx.Err()))
}

type uint64Serializer struct{}

func (uint64Serializer) TypeId() TypeId { return UINT64 }
func (uint64Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteUint64(v.Uint()) }
func (uint64Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetUint(ctx.Buffer().ReadUint64(ctx.Err()))
}

type varUint64Serializer struct{}

func (varUint64Serializer) TypeId() TypeId { return VAR_UINT64 }
func (varUint64Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteVarUint64(v.Uint()) }
func (varUint64Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetUint(ctx.Buffer().ReadVarUint64(ctx.Err()))
}

type taggedUint64Serializer struct{}

func (taggedUint64Serializer) TypeId() TypeId { return TAGGED_UINT64 }
func (taggedUint64Serializer) Write(ctx *WriteContext, v reflect.Value) {
	ctx.Buffer().WriteTaggedUint64(v.Uint())
}
func (taggedUint64Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetUint(ctx.Buffer().ReadTaggedUint64(ctx.Err()))
}

type float32Serializer struct{}

func (float32Serializer) TypeId() TypeId { return FLOAT32 }
func (float32Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteFloat32(float32(v.Float())) }
func (float32Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetFloat(float64(ctx.Buffer().ReadFloat32(ctx.Err())))
}

type float64Serializer struct{}

func (float64Serializer) TypeId() TypeId { return FLOAT64 }
func (float64Serializer) Write(ctx *WriteContext, v reflect.Value) { ctx.Buffer().WriteFloat64(v.Float()) }
func (float64Serializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetFloat(ctx.Buffer().ReadFloat64(ctx.Err()))
}

// ---- string ----

const (
	stringEncodingLatin1 = 0
	stringEncodingUtf16  = 1
	stringEncodingUtf8   = 2
)

func writeStringPayload(buf *ByteBuffer, s string, err *Error) {
	data := []byte(s)
	header := (uint64(len(data)) << 2) | stringEncodingUtf8
	buf.WriteVarUint36Small(header, err)
	buf.Write(data)
}

func readStringPayload(buf *ByteBuffer, err *Error) string {
	return readStringPayloadLimited(buf, err, 0)
}

func readStringPayloadLimited(buf *ByteBuffer, err *Error, maxBytes uint32) string {
	header := buf.ReadVarUint36Small(err)
	if err.HasError() {
		return ""
	}
	encoding := header & 0x3
	n := int(header >> 2)
	if maxBytes > 0 && uint32(n) > maxBytes {
		err.Set(ErrKindInvalidData, "string exceeds configured MaxStringBytes")
		return ""
	}
	span := buf.ReadSpan(n, err)
	if err.HasError() {
		return ""
	}
	switch encoding {
	case stringEncodingUtf8:
		return string(span)
	case stringEncodingLatin1:
		runes := make([]rune, len(span))
		for i, b := range span {
			runes[i] = rune(b)
		}
		return string(runes)
	case stringEncodingUtf16:
		if len(span)%2 != 0 {
			err.Set(ErrKindEncodingError, "utf16 string payload has odd byte length")
			return ""
		}
		units := make([]uint16, len(span)/2)
		for i := range units {
			units[i] = uint16(span[2*i]) | uint16(span[2*i+1])<<8
		}
		return string(utf16.Decode(units))
	default:
		err.Set(ErrKindEncodingError, "unknown string encoding")
		return ""
	}
}

// readUTF16LE decodes n bytes of little-endian UTF-16 starting at the
// buffer's current cursor, advancing it by n. The byte count comes from the
// caller rather than from a length header; the tagged string codec and the
// MetaString reader do not call it.
func readUTF16LE(buf *ByteBuffer, n int, err *Error) string {
	if n%2 != 0 {
		err.Set(ErrKindEncodingError, "utf16 payload has odd byte length")
		return ""
	}
	span := buf.ReadSpan(n, err)
	if err.HasError() {
		return ""
	}
	units := make([]uint16, len(span)/2)
	for i := range units {
		units[i] = uint16(span[2*i]) | uint16(span[2*i+1])<<8
	}
	return string(utf16.Decode(units))
}

type stringSerializer struct{}

func (stringSerializer) TypeId() TypeId { return STRING }
func (stringSerializer) Write(ctx *WriteContext, v reflect.Value) {
	writeStringPayload(ctx.Buffer(), v.String(), ctx.Err())
}
func (stringSerializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetString(readStringPayloadLimited(ctx.Buffer(), ctx.Err(), ctx.maxStringBytes))
}

// ---- binary ----

type binarySerializer struct{}

func (binarySerializer) TypeId() TypeId { return BINARY }
func (binarySerializer) Write(ctx *WriteContext, v reflect.Value) {
	ctx.Buffer().WriteBinary(v.Bytes())
}
func (binarySerializer) Read(ctx *ReadContext, v reflect.Value) {
	v.SetBytes(ctx.Buffer().ReadBinary(ctx.Err()))
}

// ---- temporal ----

var epochDate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

type dateSerializer struct{}

func (dateSerializer) TypeId() TypeId { return DATE }
func (dateSerializer) Write(ctx *WriteContext, v reflect.Value) {
	t := v.Interface().(time.Time).UTC()
	y, m, d := t.Date()
	days := int32(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Sub(epochDate).Hours() / 24)
	ctx.Buffer().WriteInt32(days)
}
func (dateSerializer) Read(ctx *ReadContext, v reflect.Value) {
	days := ctx.Buffer().ReadInt32(ctx.Err())
	t := epochDate.AddDate(0, 0, int(days))
	v.Set(reflect.ValueOf(t))
}

type timestampSerializer struct{}

func (timestampSerializer) TypeId() TypeId { return TIMESTAMP }
func (timestampSerializer) Write(ctx *WriteContext, v reflect.Value) {
	t := v.Interface().(time.Time)
	buf := ctx.Buffer()
	buf.WriteInt64(t.Unix())
	buf.WriteUint32(uint32(t.Nanosecond()))
}
func (timestampSerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	sec := buf.ReadInt64(ctx.Err())
	nanos := buf.ReadUint32(ctx.Err())
	v.Set(reflect.ValueOf(time.Unix(sec, int64(nanos)).UTC()))
}

// durationTick is 100ns, matching the tick granularity the wire format's
// Duration derives its (seconds, nanos) pair from.
const durationTick = 100 * time.Nanosecond

type durationSerializer struct{}

func (durationSerializer) TypeId() TypeId { return DURATION }
func (durationSerializer) Write(ctx *WriteContext, v reflect.Value) {
	d := v.Interface().(time.Duration)
	ticks := int64(d / durationTick)
	seconds := ticks / 10_000_000
	nanos := int32((ticks % 10_000_000) * 100)
	buf := ctx.Buffer()
	buf.WriteInt64(seconds)
	buf.WriteInt32(nanos)
}
func (durationSerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	seconds := buf.ReadInt64(ctx.Err())
	nanos := buf.ReadInt32(ctx.Err())
	v.Set(reflect.ValueOf(time.Duration(seconds)*time.Second + time.Duration(nanos)*time.Nanosecond))
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	byteSliceT   = reflect.TypeOf([]byte(nil))
)

// registerBuiltinSerializers wires every leaf codec from §4.2 to its default
// Go type. Struct fields that want a non-default wire representation for an
// integer (VarInt/Tagged instead of fixed-width) select one of the
// alternates below through a field tag, resolved in the struct codec.
func registerBuiltinSerializers(r *TypeResolver) {
	r.registerBuiltin(reflect.TypeOf(false), BOOL, boolSerializer{})
	r.registerBuiltin(reflect.TypeOf(int8(0)), INT8, int8Serializer{})
	r.registerBuiltin(reflect.TypeOf(uint8(0)), UINT8, uint8Serializer{})
	r.registerBuiltin(reflect.TypeOf(int16(0)), INT16, int16Serializer{})
	r.registerBuiltin(reflect.TypeOf(uint16(0)), UINT16, uint16Serializer{})
	r.registerBuiltin(reflect.TypeOf(int32(0)), INT32, int32Serializer{})
	r.registerBuiltin(reflect.TypeOf(uint32(0)), UINT32, uint32Serializer{})
	r.registerBuiltin(reflect.TypeOf(int64(0)), INT64, int64Serializer{})
	r.registerBuiltin(reflect.TypeOf(uint64(0)), UINT64, uint64Serializer{})
	r.registerBuiltin(reflect.TypeOf(int(0)), VAR_INT64, varInt64Serializer{})
	r.registerBuiltin(reflect.TypeOf(uint(0)), VAR_UINT64, varUint64Serializer{})
	r.registerBuiltin(reflect.TypeOf(float32(0)), FLOAT32, float32Serializer{})
	r.registerBuiltin(reflect.TypeOf(float64(0)), FLOAT64, float64Serializer{})
	r.registerBuiltin(reflect.TypeOf(""), STRING, stringSerializer{})
	r.registerBuiltin(byteSliceT, BINARY, binarySerializer{})
	r.registerBuiltin(timeType, TIMESTAMP, timestampSerializer{})
	r.registerBuiltin(durationType, DURATION, durationSerializer{})
}

// primitiveSerializerByTypeId backs the any-value codec's dispatch table and
// the field skipper, both of which need to go from a wire TypeId straight to
// a Serializer without a Go-type round trip.
func primitiveSerializerByTypeId(id TypeId) (Serializer, bool) {
	switch id {
	case BOOL:
		return boolSerializer{}, true
	case INT8:
		return int8Serializer{}, true
	case UINT8:
		return uint8Serializer{}, true
	case INT16:
		return int16Serializer{}, true
	case UINT16:
		return uint16Serializer{}, true
	case INT32:
		return int32Serializer{}, true
	case VAR_INT32:
		return varInt32Serializer{}, true
	case UINT32:
		return uint32Serializer{}, true
	case VAR_UINT32:
		return varUint32Serializer{}, true
	case INT64:
		return int64Serializer{}, true
	case VAR_INT64:
		return varInt64Serializer{}, true
	case TAGGED_INT64:
		return taggedInt64Serializer{}, true
	case UINT64:
		return uint64Serializer{}, true
	case VAR_UINT64:
		return varUint64Serializer{}, true
	case TAGGED_UINT64:
		return taggedUint64Serializer{}, true
	case FLOAT32:
		return float32Serializer{}, true
	case FLOAT64:
		return float64Serializer{}, true
	case STRING:
		return stringSerializer{}, true
	case BINARY:
		return binarySerializer{}, true
	case DATE:
		return dateSerializer{}, true
	case TIMESTAMP:
		return timestampSerializer{}, true
	case DURATION:
		return durationSerializer{}, true
	default:
		return nil, false
	}
}
