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

// Collection header bits, in the single byte that follows the varuint32
// length (§4.7).
const (
	COLL_DEFAULT_FLAG         = 0b0000
	COLL_TRACKING_REF         = 0b0001
	COLL_HAS_NULL             = 0b0010
	COLL_IS_DECL_ELEMENT_TYPE = 0b0100
	COLL_IS_SAME_TYPE         = 0b1000
)

// sliceSerializer is the list/set codec for []interface{} and for any typed
// Go slice whose element type isn't one of the primitive fast-path kinds
// handled by arrays.go. It picks between the same-type, declared-element-type
// and dynamic-tag-per-element write paths described in §4.7.
type sliceSerializer struct {
	elemType reflect.Type // nil for []interface{}
	isSet    bool
}

func newSliceSerializer(r *TypeResolver, t reflect.Type) *sliceSerializer {
	s := &sliceSerializer{}
	if t != interfaceSliceType {
		s.elemType = t.Elem()
	}
	return s
}

func (s *sliceSerializer) TypeId() TypeId {
	if s.isSet {
		return SET
	}
	return LIST
}

func (s *sliceSerializer) declaredElementType() (TypeMetaFieldType, bool) {
	if s.elemType == nil {
		return TypeMetaFieldType{}, false
	}
	return goFieldWireType(s.elemType), true
}

func (s *sliceSerializer) Write(ctx *WriteContext, value reflect.Value) {
	buf := ctx.Buffer()
	n := value.Len()
	buf.WriteLength(n)
	if n == 0 {
		return
	}

	declaredFt, hasDeclared := s.declaredElementType()
	dynamicElement := !hasDeclared || NeedsTypeInfoForField(declaredFt.TypeId)

	trackRef := ctx.TrackRef() && !dynamicElement
	hasNull := false
	if hasDeclared && declaredFt.Nullable {
		for i := 0; i < n; i++ {
			if isNilValue(value.Index(i)) {
				hasNull = true
				break
			}
		}
	}

	var header byte = COLL_IS_SAME_TYPE
	if trackRef {
		header |= COLL_TRACKING_REF
	}
	if hasNull {
		header |= COLL_HAS_NULL
	}
	declaredElementType := hasDeclared && !dynamicElement
	if declaredElementType {
		header |= COLL_IS_DECL_ELEMENT_TYPE
	}
	if dynamicElement {
		header &^= COLL_IS_SAME_TYPE
	}
	buf.WriteByte_(header)

	if dynamicElement {
		for i := 0; i < n; i++ {
			writeValue(ctx, value.Index(i), RefModeTracking, true)
		}
		return
	}

	var elemSer Serializer
	if ser, ok := primitiveSerializerByTypeId(declaredFt.TypeId); ok {
		elemSer = ser
	}
	if elemSer == nil {
		// struct/container element: resolve once, reuse for every element.
		if ser, _, err := resolveElementSerializer(ctx.TypeResolver(), s.elemType); err == nil {
			elemSer = ser
		} else {
			ctx.SetError(err)
			return
		}
	}

	if !header1SameType(header) {
		ctx.TypeResolver().WriteTypeInfo(ctx, &TypeInfo{GoType: s.elemType, WireTypeId: declaredFt.TypeId, Serializer: elemSer})
	}

	switch {
	case trackRef:
		for i := 0; i < n; i++ {
			writeValue(ctx, value.Index(i), RefModeTracking, false)
		}
	case hasNull:
		for i := 0; i < n; i++ {
			ev := value.Index(i)
			if isNilValue(ev) {
				buf.WriteInt8(NullFlag)
				continue
			}
			buf.WriteInt8(NotNullValueFlag)
			elemSer.Write(ctx, derefValue(ev))
		}
	default:
		for i := 0; i < n; i++ {
			elemSer.Write(ctx, derefValue(value.Index(i)))
		}
	}
}

func header1SameType(header byte) bool { return header&COLL_IS_SAME_TYPE != 0 }

func resolveElementSerializer(r *TypeResolver, t reflect.Type) (Serializer, *TypeInfo, *Error) {
	if ti, ok := r.LookupByGoType(t); ok {
		return ti.Serializer, ti, nil
	}
	if t.Kind() == reflect.Struct {
		return newStructSerializer(r, t)
	}
	return nil, nil, TypeNotRegisteredError("no serializer for element type " + t.String())
}

func (s *sliceSerializer) Read(ctx *ReadContext, value reflect.Value) {
	buf := ctx.Buffer()
	n := buf.ReadLength(ctx.Err())
	if ctx.HasError() || !ctx.CheckCollectionSize(n) {
		return
	}
	out := reflect.MakeSlice(value.Type(), n, n)
	// Assigned before the fill loop, not after: a trackRef'd field whose
	// reservation is still pending (see dispatch.go's readValue) needs
	// value's slice header valid the moment a self-referential element is
	// decoded, since the header (not the later element writes) is what a
	// back-reference copies.
	value.Set(out)
	if n == 0 {
		return
	}
	header := buf.ReadUint8(ctx.Err())
	if ctx.HasError() {
		return
	}
	sameType := header&COLL_IS_SAME_TYPE != 0
	trackRef := header&COLL_TRACKING_REF != 0
	hasNull := header&COLL_HAS_NULL != 0
	declaredElementType := header&COLL_IS_DECL_ELEMENT_TYPE != 0

	if !sameType {
		for i := 0; i < n; i++ {
			readValue(ctx, out.Index(i), RefModeTracking, true)
		}
		return
	}

	declaredFt, hasDeclared := s.declaredElementType()
	var elemSer Serializer
	if declaredElementType && hasDeclared {
		if ser, ok := primitiveSerializerByTypeId(declaredFt.TypeId); ok {
			elemSer = ser
		} else if ser, _, err := resolveElementSerializer(ctx.TypeResolver(), s.elemType); err == nil {
			elemSer = ser
		} else {
			ctx.SetError(err)
			return
		}
	} else {
		d := ctx.TypeResolver().ReadDynamicTypeInfo(ctx)
		if ctx.HasError() {
			return
		}
		ser, ok := primitiveSerializerByTypeId(d.WireTypeId)
		if !ok {
			ti, err := ctx.TypeResolver().ResolveDynamicTypeInfo(d)
			if err != nil {
				ctx.SetError(err)
				return
			}
			ser = ti.Serializer
		}
		elemSer = ser
	}

	switch {
	case trackRef:
		for i := 0; i < n; i++ {
			readValue(ctx, out.Index(i), RefModeTracking, false)
		}
	case hasNull:
		for i := 0; i < n; i++ {
			flag := buf.ReadInt8(ctx.Err())
			if ctx.HasError() {
				return
			}
			if flag == NullFlag {
				continue
			}
			if flag != NotNullValueFlag {
				ctx.SetError(RefError("illegal null-tag byte in collection element"))
				return
			}
			elemSer.Read(ctx, derefValueForWrite(out.Index(i)))
		}
	default:
		for i := 0; i < n; i++ {
			elemSer.Read(ctx, derefValueForWrite(out.Index(i)))
		}
	}
}

// ---- dynamic any-value slice helpers (List/Set read into []interface{}) ----

// readAnySlice decodes a List/Set into dst, an addressable interface{} slot.
// dst is bound to the backing slice before any element is filled, so a
// self-referential element resolves to this same slice rather than an empty
// placeholder (§8 "Cycle support").
func readAnySlice(ctx *ReadContext, dst reflect.Value, isSet bool) {
	buf := ctx.Buffer()
	n := buf.ReadLength(ctx.Err())
	if ctx.HasError() || !ctx.CheckCollectionSize(n) {
		return
	}
	out := reflect.MakeSlice(interfaceSliceType, n, n)
	setInterfaceResult(dst, out)
	for i := 0; i < n; i++ {
		if ctx.HasError() {
			return
		}
		readValue(ctx, out.Index(i), RefModeTracking, true)
	}
}
