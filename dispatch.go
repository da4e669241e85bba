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

// writeValue is the shared entry point struct fields, collection elements
// (dynamic path) and map entries use to serialize one value given its
// RefMode and whether a type-info prefix is needed. It mirrors the data flow
// in §2: ref flag, then optional type-info prefix, then payload.
func writeValue(ctx *WriteContext, v reflect.Value, refMode RefMode, writeType bool) {
	if ctx.HasError() {
		return
	}
	if !ctx.EnterDepth() {
		return
	}
	defer ctx.ExitDepth()

	switch refMode {
	case RefModeTracking:
		if !ctx.RefResolver().WriteRefOrNull(ctx.Buffer(), v) {
			return
		}
	case RefModeNullOnly:
		if !ctx.RefResolver().WriteNullOnly(ctx.Buffer(), isNilValue(v)) {
			return
		}
	}
	v = derefValue(v)
	ser, ti, err := resolveSerializer(ctx.TypeResolver(), v)
	if err != nil {
		ctx.SetError(err)
		return
	}
	if writeType {
		ctx.TypeResolver().WriteTypeInfo(ctx, ti)
	}
	ser.Write(ctx, v)
}

// readValue mirrors writeValue: consumes the ref flag, the optional dynamic
// type-info prefix, and reconstructs into dst (which must be settable and of
// the declared Go type unless readType is true, in which case the dynamic
// descriptor picks the wire kind and dst may be an addressable interface{}
// slot or a concrete destination that readDynamicInto accepts).
func readValue(ctx *ReadContext, dst reflect.Value, refMode RefMode, readType bool) {
	if ctx.HasError() {
		return
	}
	if !ctx.EnterDepth() {
		return
	}
	defer ctx.ExitDepth()

	switch refMode {
	case RefModeTracking:
		flag := ctx.RefResolver().ReadRefFlag(ctx.Buffer(), ctx.Err())
		if ctx.HasError() {
			return
		}
		switch flag {
		case NullFlag:
			setZeroOrNil(dst)
			return
		case RefFlagByte:
			back := ctx.RefResolver().ReadBackReference(ctx.Buffer(), ctx.Err())
			if back.IsValid() {
				dst.Set(adaptAssignable(back, dst.Type()))
			}
			return
		case RefValueFlag:
			// Fresh tracked value: reserve and fill its slot before the
			// payload is decoded. dst is addressable (a struct field or
			// container element), so a back-reference stored now still
			// observes whatever dst's address holds once the payload
			// (below) establishes the value's identity - e.g. slice.go and
			// map.go assign their container header before filling it, so a
			// self-referential element resolves to the same backing store.
			if dst.CanAddr() {
				ctx.RefResolver().StoreRef(ctx.RefResolver().ReserveRefId(), dst)
			}
		}
		// NotNullValueFlag: ref tracking disabled for this value, fall
		// through to payload with no reserved slot.
	case RefModeNullOnly:
		flag := ctx.RefResolver().ReadRefFlag(ctx.Buffer(), ctx.Err())
		if ctx.HasError() {
			return
		}
		if flag == NullFlag {
			setZeroOrNil(dst)
			return
		}
	}

	if readType {
		d := ctx.TypeResolver().ReadDynamicTypeInfo(ctx)
		if ctx.HasError() {
			return
		}
		readDynamicInto(ctx, d, dst)
		return
	}

	target := derefValueForWrite(dst)
	ser, err := lookupSerializerForRead(ctx.TypeResolver(), target.Type())
	if err != nil {
		ctx.SetError(err)
		return
	}
	ser.Read(ctx, target)
}

func resolveSerializer(r *TypeResolver, v reflect.Value) (Serializer, *TypeInfo, *Error) {
	t := v.Type()
	if ti, ok := r.LookupByGoType(t); ok {
		return ti.Serializer, ti, nil
	}
	if t.Kind() == reflect.Struct {
		return newStructSerializer(r, t)
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		ser := newSliceSerializer(r, t)
		return ser, &TypeInfo{GoType: t, WireTypeId: ser.TypeId(), Serializer: ser}, nil
	}
	if t.Kind() == reflect.Map {
		ser := newMapSerializer(r, t)
		return ser, &TypeInfo{GoType: t, WireTypeId: ser.TypeId(), Serializer: ser}, nil
	}
	return nil, nil, TypeNotRegisteredError("no serializer for " + t.String())
}

func lookupSerializerForRead(r *TypeResolver, t reflect.Type) (Serializer, *Error) {
	if ti, ok := r.LookupByGoType(t); ok {
		return ti.Serializer, nil
	}
	if t.Kind() == reflect.Struct {
		ser, _, err := newStructSerializer(r, t)
		return ser, err
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		return newSliceSerializer(r, t), nil
	}
	if t.Kind() == reflect.Map {
		return newMapSerializer(r, t), nil
	}
	return nil, TypeNotRegisteredError("no serializer for " + t.String())
}

// derefValue strips pointer and interface wrappers down to the concrete
// value a serializer actually operates on. Interface unwrapping matters for
// any value pulled out of a []interface{} element or map[K]interface{} entry
// via Index/MapIndex: reflect hands those back as a Kind Interface Value
// whose own Type() is the static interface type, not the boxed value's
// dynamic type, so resolveSerializer would otherwise never find a match.
func derefValue(v reflect.Value) reflect.Value {
	for {
		switch v.Kind() {
		case reflect.Ptr, reflect.Interface:
			if v.IsNil() {
				return v
			}
			v = v.Elem()
		default:
			return v
		}
	}
}

func setZeroOrNil(dst reflect.Value) {
	if !dst.CanSet() {
		return
	}
	dst.Set(reflect.Zero(dst.Type()))
}

func adaptAssignable(src reflect.Value, t reflect.Type) reflect.Value {
	if src.Type().AssignableTo(t) {
		return src
	}
	if src.Type().ConvertibleTo(t) {
		return src.Convert(t)
	}
	return src
}

// readDynamicInto reconstructs a value from a decoded dynamic descriptor into
// dst (the any-value codec's read path). dst is either an addressable
// interface{} slot or a settable value of a concrete Go type: a concrete
// slice or map reads through its own declared serializer, a pointer
// destination gets a freshly allocated struct, and a typed primitive array
// is read only into a slice of the matching registered element type.
func readDynamicInto(ctx *ReadContext, d DynamicTypeInfo, dst reflect.Value) {
	if ser, ok := primitiveSerializerByTypeId(d.WireTypeId); ok {
		goType := leafGoTypeFor(d.WireTypeId)
		tmp := reflect.New(goType).Elem()
		ser.Read(ctx, tmp)
		if ctx.HasError() {
			return
		}
		setInterfaceResult(dst, tmp)
		return
	}
	switch d.WireTypeId {
	case LIST, SET:
		// A concretely Go-typed slice destination (the common case when
		// Unmarshal's top-level target, which always routes through this
		// dynamic path, happens to be e.g. []string) reads through its own
		// declared serializer rather than building a throwaway
		// []interface{}, since that throwaway is never assignable back into
		// a differently-typed slice.
		if dst.Kind() == reflect.Slice && dst.Type() != interfaceSliceType {
			newSliceSerializer(ctx.TypeResolver(), dst.Type()).Read(ctx, dst)
			return
		}
		// dst is bound inside readAnySlice itself, before its fill loop, so
		// a cycle back into dst resolves correctly (§8 "Cycle support").
		readAnySlice(ctx, dst, d.WireTypeId == SET)
	case MAP:
		if dst.Kind() == reflect.Map {
			newMapSerializer(ctx.TypeResolver(), dst.Type()).Read(ctx, dst)
			return
		}
		// m's identity (the pointer) is fixed at allocation; bind it into
		// dst before filling it so a self-referential entry sees the same
		// map rather than nil.
		m := newAnyMap()
		setInterfaceResult(dst, reflect.ValueOf(m))
		readAnyMap(ctx, m)
	case STRUCT, COMPATIBLE_STRUCT, NAMED_STRUCT, NAMED_COMPATIBLE_STRUCT:
		ti, err := ctx.TypeResolver().ResolveDynamicTypeInfo(d)
		if err != nil {
			ctx.SetError(err)
			return
		}
		ss, _, serr := newStructSerializer(ctx.TypeResolver(), ti.GoType)
		if serr != nil {
			ctx.SetError(serr)
			return
		}
		// A *T-typed destination (a pointer field, or the top-level
		// Unmarshal target) needs an actual *T allocated and bound into dst
		// before its fields are decoded: a non-pointer tmp is never
		// assignable to dst's pointer type, and a self-referential field
		// needs dst already holding the real pointer before it recurses.
		if dst.Kind() == reflect.Ptr {
			ptr := reflect.New(ti.GoType)
			dst.Set(ptr)
			target := ptr.Elem()
			if d.CompatMeta != nil {
				ss.readCompatible(ctx, d.CompatMeta, target)
			} else {
				ss.Read(ctx, target)
			}
			return
		}
		tmp := reflect.New(ti.GoType).Elem()
		if d.CompatMeta != nil {
			ss.readCompatible(ctx, d.CompatMeta, tmp)
		} else {
			ss.Read(ctx, tmp)
		}
		setInterfaceResult(dst, tmp)
	default:
		// A typed primitive array reads through the array codec registered
		// for dst's own slice type (e.g. []int32 for INT32_ARRAY).
		if IsPrimitiveArrayType(d.WireTypeId) && dst.Kind() == reflect.Slice {
			if ti, ok := ctx.TypeResolver().LookupByGoType(dst.Type()); ok && ti.WireTypeId == d.WireTypeId {
				ti.Serializer.Read(ctx, dst)
				return
			}
		}
		ctx.SetError(InvalidDataError("unsupported dynamic wire kind"))
	}
}

func setInterfaceResult(dst reflect.Value, v reflect.Value) {
	if dst.Kind() == reflect.Interface || dst.Type() == emptyInterfaceType {
		dst.Set(v)
		return
	}
	if v.Type().AssignableTo(dst.Type()) {
		dst.Set(v)
	}
}

func leafGoTypeFor(id TypeId) reflect.Type {
	switch id {
	case BOOL:
		return reflect.TypeOf(false)
	case INT8:
		return reflect.TypeOf(int8(0))
	case UINT8:
		return reflect.TypeOf(uint8(0))
	case INT16:
		return reflect.TypeOf(int16(0))
	case UINT16:
		return reflect.TypeOf(uint16(0))
	case INT32, VAR_INT32:
		return reflect.TypeOf(int32(0))
	case UINT32, VAR_UINT32:
		return reflect.TypeOf(uint32(0))
	case INT64, VAR_INT64, TAGGED_INT64:
		return reflect.TypeOf(int64(0))
	case UINT64, VAR_UINT64, TAGGED_UINT64:
		return reflect.TypeOf(uint64(0))
	case FLOAT32:
		return reflect.TypeOf(float32(0))
	case FLOAT64:
		return reflect.TypeOf(float64(0))
	case STRING:
		return reflect.TypeOf("")
	case BINARY:
		return byteSliceT
	case DATE, TIMESTAMP:
		return timeType
	case DURATION:
		return durationType
	default:
		return emptyInterfaceType
	}
}
