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

// Map entry header bits (§4.8): a single byte precedes every entry or chunk.
const (
	MAP_TRACKING_KEY_REF   = 0b000001
	MAP_KEY_NULL           = 0b000010
	MAP_DECL_KEY_TYPE      = 0b000100
	MAP_TRACKING_VALUE_REF = 0b001000
	MAP_VALUE_NULL         = 0b010000
	MAP_DECL_VALUE_TYPE    = 0b100000

	maxMapChunkSize = 255
)

// NullKeyMap is the null-key-aware map container readDynamicInto produces
// when a MAP payload is read into a destination that is not a Go map: a
// regular non-null map plus a separate (hasNull, nullValue) slot. It has no
// iteration method of its own, and Entries keeps Go's unordered map order.
type NullKeyMap struct {
	HasNull   bool
	NullValue interface{}
	Entries   map[interface{}]interface{}
}

func newAnyMap() *NullKeyMap {
	return &NullKeyMap{Entries: make(map[interface{}]interface{})}
}

func (m *NullKeyMap) Set(key, value interface{}) {
	if key == nil {
		m.HasNull = true
		m.NullValue = value
		return
	}
	m.Entries[key] = value
}

func (m *NullKeyMap) Count() int {
	n := len(m.Entries)
	if m.HasNull {
		n++
	}
	return n
}

// mapSerializer is the chunked map codec for a concrete Go map type. Keys
// and values are grouped into runs of up to 255 non-null entries sharing the
// same declared-type/tracking flags; a null key or null value breaks the run
// and is emitted as its own single-entry header.
type mapSerializer struct {
	keyType, valType             reflect.Type
	declaredKeyFt, declaredValFt TypeMetaFieldType
}

func newMapSerializer(r *TypeResolver, t reflect.Type) *mapSerializer {
	return &mapSerializer{
		keyType:       t.Key(),
		valType:       t.Elem(),
		declaredKeyFt: goFieldWireType(t.Key()),
		declaredValFt: goFieldWireType(t.Elem()),
	}
}

func (s *mapSerializer) TypeId() TypeId { return MAP }

func (s *mapSerializer) Write(ctx *WriteContext, value reflect.Value) {
	buf := ctx.Buffer()
	keys := value.MapKeys()
	buf.WriteLength(len(keys))
	if len(keys) == 0 {
		return
	}

	keyDynamic := NeedsTypeInfoForField(s.declaredKeyFt.TypeId)
	valDynamic := NeedsTypeInfoForField(s.declaredValFt.TypeId)

	keySer, hasKeySer := primitiveSerializerByTypeId(s.declaredKeyFt.TypeId)
	valSer, hasValSer := primitiveSerializerByTypeId(s.declaredValFt.TypeId)

	i := 0
	for i < len(keys) {
		k := keys[i]
		v := value.MapIndex(k)
		keyNil := isNilValue(k)
		valNil := isNilValue(v)

		if keyNil || valNil {
			var header byte
			if keyNil {
				header |= MAP_KEY_NULL
			} else if keyDynamic {
				header |= MAP_TRACKING_KEY_REF
			} else {
				header |= MAP_DECL_KEY_TYPE
			}
			if valNil {
				header |= MAP_VALUE_NULL
			} else if valDynamic {
				header |= MAP_TRACKING_VALUE_REF
			} else {
				header |= MAP_DECL_VALUE_TYPE
			}
			buf.WriteByte_(header)
			if !keyNil {
				writeMapEntrySide(ctx, k, keyDynamic, keySer, hasKeySer, s.keyType)
			}
			if !valNil {
				writeMapEntrySide(ctx, v, valDynamic, valSer, hasValSer, s.valType)
			}
			i++
			continue
		}

		// start a chunk of consecutive non-null entries sharing the same
		// declared/dynamic shape.
		j := i
		for j < len(keys) && j-i < maxMapChunkSize && !isNilValue(keys[j]) && !isNilValue(value.MapIndex(keys[j])) {
			j++
		}
		chunkSize := j - i
		var header byte
		if keyDynamic {
			header |= MAP_TRACKING_KEY_REF
		} else {
			header |= MAP_DECL_KEY_TYPE
		}
		if valDynamic {
			header |= MAP_TRACKING_VALUE_REF
		} else {
			header |= MAP_DECL_VALUE_TYPE
		}
		buf.WriteByte_(header)
		buf.WriteByte_(byte(chunkSize))
		for x := i; x < j; x++ {
			writeMapEntrySide(ctx, keys[x], keyDynamic, keySer, hasKeySer, s.keyType)
			writeMapEntrySide(ctx, value.MapIndex(keys[x]), valDynamic, valSer, hasValSer, s.valType)
		}
		i = j
	}
}

// writeMapEntrySide writes one key or value of a map entry. A dynamic
// (undeclared wire type) side goes through writeValue, the same entry point
// slice.go's dynamicElement branch uses, so it gets depth counting and
// ref/back-reference tracking per element instead of recursing straight into
// the resolved serializer's Write - the gap that let a self-referential
// interface{}-valued map recurse without ever tripping the depth cap.
func writeMapEntrySide(ctx *WriteContext, v reflect.Value, dynamic bool, ser Serializer, hasSer bool, t reflect.Type) {
	if dynamic {
		writeValue(ctx, v, RefModeTracking, true)
		return
	}
	writeMapPayload(ctx, v, ser, hasSer, t)
}

func writeMapPayload(ctx *WriteContext, v reflect.Value, ser Serializer, hasSer bool, t reflect.Type) {
	if hasSer {
		ser.Write(ctx, derefValue(v))
		return
	}
	if rser, _, err := resolveElementSerializer(ctx.TypeResolver(), t); err == nil {
		rser.Write(ctx, derefValue(v))
	} else {
		ctx.SetError(err)
	}
}

func (s *mapSerializer) Read(ctx *ReadContext, value reflect.Value) {
	buf := ctx.Buffer()
	total := buf.ReadLength(ctx.Err())
	if ctx.HasError() || !ctx.CheckMapSize(total) {
		return
	}
	out := reflect.MakeMapWithSize(value.Type(), total)
	// Assigned before any entry is decoded: value and out share the same
	// underlying hmap after Set, so a self-referential entry decoded later
	// in this loop sees a live, non-nil map through a back-reference rather
	// than the zero map value.
	value.Set(out)
	read := 0
	for read < total {
		if ctx.HasError() {
			return
		}
		header := buf.ReadUint8(ctx.Err())
		keyNull := header&MAP_KEY_NULL != 0
		valNull := header&MAP_VALUE_NULL != 0

		if keyNull || valNull {
			var kv, vv reflect.Value
			if !keyNull {
				kv = readMapEntrySide(ctx, header&MAP_TRACKING_KEY_REF != 0, s.keyType)
			} else {
				kv = reflect.Zero(s.keyType)
			}
			if !valNull {
				vv = readMapEntrySide(ctx, header&MAP_TRACKING_VALUE_REF != 0, s.valType)
			} else {
				vv = reflect.Zero(s.valType)
			}
			if !keyNull {
				out.SetMapIndex(kv, vv)
			}
			read++
			continue
		}

		chunkSize := int(buf.ReadUint8(ctx.Err()))
		if chunkSize == 0 {
			ctx.SetError(InvalidDataError("map chunk size is zero"))
			return
		}
		if read+chunkSize > total {
			ctx.SetError(InvalidDataError("map chunk size exceeds declared total length"))
			return
		}
		keyDynamic := header&MAP_TRACKING_KEY_REF != 0
		valDynamic := header&MAP_TRACKING_VALUE_REF != 0

		var keySer, valSer Serializer
		if !keyDynamic {
			keySer = serializerForGoType(ctx.TypeResolver(), s.keyType)
		}
		if !valDynamic {
			valSer = serializerForGoType(ctx.TypeResolver(), s.valType)
		}
		for x := 0; x < chunkSize; x++ {
			if ctx.HasError() {
				return
			}
			kv := readMapChunkSide(ctx, keyDynamic, keySer, s.keyType)
			vv := readMapChunkSide(ctx, valDynamic, valSer, s.valType)
			out.SetMapIndex(kv, vv)
		}
		read += chunkSize
	}
}

// readMapEntrySide and readMapChunkSide mirror writeMapEntrySide: a dynamic
// side goes through readValue (gaining depth counting and back-reference
// resolution, §8 "Cycle support") instead of resolving a fixed serializer and
// calling its Read directly.
func readMapEntrySide(ctx *ReadContext, dynamic bool, t reflect.Type) reflect.Value {
	if dynamic {
		boxed := reflect.New(emptyInterfaceType).Elem()
		readValue(ctx, boxed, RefModeTracking, true)
		return mapSideValueFromBox(boxed, t)
	}
	ser := serializerForGoType(ctx.TypeResolver(), t)
	if ser == nil {
		return reflect.Zero(t)
	}
	v := reflect.New(t).Elem()
	ser.Read(ctx, v)
	return v
}

func readMapChunkSide(ctx *ReadContext, dynamic bool, ser Serializer, t reflect.Type) reflect.Value {
	if dynamic {
		boxed := reflect.New(emptyInterfaceType).Elem()
		readValue(ctx, boxed, RefModeTracking, true)
		return mapSideValueFromBox(boxed, t)
	}
	v := reflect.New(t).Elem()
	ser.Read(ctx, v)
	return v
}

// mapSideValueFromBox unwraps a dynamically-read interface{} box into t, the
// map's declared key/value type - unchanged if t is itself interface{}.
func mapSideValueFromBox(boxed reflect.Value, t reflect.Type) reflect.Value {
	if t == emptyInterfaceType {
		return boxed
	}
	if boxed.IsNil() {
		return reflect.Zero(t)
	}
	return adaptAssignable(boxed.Elem(), t)
}

func serializerForGoType(r *TypeResolver, t reflect.Type) Serializer {
	if ser, ok := primitiveSerializerByTypeId(goFieldWireType(t).TypeId); ok {
		return ser
	}
	if ser, _, err := resolveElementSerializer(r, t); err == nil {
		return ser
	}
	return nil
}

// readAnyMap reads a Map whose declared field type is "object" into a
// NullKeyMap, dispatching each key/value through the dynamic type-info path.
func readAnyMap(ctx *ReadContext, dst *NullKeyMap) {
	buf := ctx.Buffer()
	total := buf.ReadLength(ctx.Err())
	if ctx.HasError() || !ctx.CheckMapSize(total) {
		return
	}
	read := 0
	for read < total {
		if ctx.HasError() {
			return
		}
		header := buf.ReadUint8(ctx.Err())
		keyNull := header&MAP_KEY_NULL != 0
		valNull := header&MAP_VALUE_NULL != 0
		if keyNull || valNull {
			var kv, vv interface{}
			if !keyNull {
				kv = readAnyScalar(ctx)
			}
			if !valNull {
				vv = readAnyScalar(ctx)
			}
			dst.Set(kv, vv)
			read++
			continue
		}
		chunkSize := int(buf.ReadUint8(ctx.Err()))
		if chunkSize == 0 {
			ctx.SetError(InvalidDataError("map chunk size is zero"))
			return
		}
		for x := 0; x < chunkSize; x++ {
			kv := readAnyScalar(ctx)
			vv := readAnyScalar(ctx)
			dst.Set(kv, vv)
		}
		read += chunkSize
	}
}

func readAnyScalar(ctx *ReadContext) interface{} {
	var box interface{}
	dst := reflect.New(emptyInterfaceType).Elem()
	readValue(ctx, dst, RefModeTracking, true)
	if dst.IsValid() && !dst.IsNil() {
		box = dst.Interface()
	}
	return box
}
