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
	"strings"
	"sync"
)

// structFieldBinding is one field's resolved write/read plan: its index path
// into the Go struct, the wire name it is tagged with, and the declared
// RefMode chosen from its tag/type.
type structFieldBinding struct {
	goIndex  int
	name     string
	nullable bool
	trackRef bool
	wireType TypeMetaFieldType
}

// structSerializer is the struct codec. An evolving struct (the default) is
// written as COMPATIBLE_STRUCT, whose type-info prefix carries a TypeMeta
// describing the exact fields present, so a reader with a different (but
// compatible) local schema can match by name and skip what it doesn't
// recognize. A struct whose evolving override is false is written as plain
// STRUCT with no TypeMeta, and both sides must then agree on the field set
// and order.
type structSerializer struct {
	goType   reflect.Type
	ns       string
	name     string
	fields   []structFieldBinding
	byName   map[string]int
	evolving bool // false: plain STRUCT kind, no TypeMeta, fixed field order

	once    sync.Once
	initErr *Error
}

func fieldWireName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("fory"); ok {
		parts := strings.Split(tag, ",")
		if parts[0] != "" && parts[0] != "-" {
			return parts[0]
		}
	}
	return f.Name
}

func fieldTagOption(f reflect.StructField, opt string) bool {
	tag, ok := f.Tag.Lookup("fory")
	if !ok {
		return false
	}
	for _, p := range strings.Split(tag, ",")[1:] {
		if p == opt {
			return true
		}
	}
	return false
}

// goFieldWireType derives the declared wire TypeMetaFieldType for a Go field
// type, used both to build a write-side TypeMeta and to decide the default
// (non-tag-overridden) serializer for that field.
func goFieldWireType(t reflect.Type) TypeMetaFieldType {
	switch t.Kind() {
	case reflect.Ptr:
		inner := goFieldWireType(t.Elem())
		inner.Nullable = true
		return inner
	case reflect.Bool:
		return TypeMetaFieldType{TypeId: BOOL}
	case reflect.Int8:
		return TypeMetaFieldType{TypeId: INT8}
	case reflect.Uint8:
		return TypeMetaFieldType{TypeId: UINT8}
	case reflect.Int16:
		return TypeMetaFieldType{TypeId: INT16}
	case reflect.Uint16:
		return TypeMetaFieldType{TypeId: UINT16}
	case reflect.Int32:
		return TypeMetaFieldType{TypeId: INT32}
	case reflect.Uint32:
		return TypeMetaFieldType{TypeId: UINT32}
	case reflect.Int, reflect.Int64:
		return TypeMetaFieldType{TypeId: VAR_INT64}
	case reflect.Uint, reflect.Uint64:
		return TypeMetaFieldType{TypeId: VAR_UINT64}
	case reflect.Float32:
		return TypeMetaFieldType{TypeId: FLOAT32}
	case reflect.Float64:
		return TypeMetaFieldType{TypeId: FLOAT64}
	case reflect.String:
		return TypeMetaFieldType{TypeId: STRING}
	case reflect.Slice:
		if arrayId, ok := primitiveArrayTypeIdFor(t.Elem().Kind()); ok {
			return TypeMetaFieldType{TypeId: arrayId}
		}
		return TypeMetaFieldType{TypeId: LIST, Generics: []TypeMetaFieldType{goFieldWireType(t.Elem())}}
	case reflect.Map:
		return TypeMetaFieldType{
			TypeId:   MAP,
			Generics: []TypeMetaFieldType{goFieldWireType(t.Key()), goFieldWireType(t.Elem())},
		}
	case reflect.Struct:
		if t == timeType {
			return TypeMetaFieldType{TypeId: TIMESTAMP}
		}
		return TypeMetaFieldType{TypeId: COMPATIBLE_STRUCT}
	default:
		if t == durationType {
			return TypeMetaFieldType{TypeId: DURATION}
		}
		return TypeMetaFieldType{TypeId: UNKNOWN}
	}
}

func newStructSerializer(r *TypeResolver, t reflect.Type) (*structSerializer, *TypeInfo, *Error) {
	if ti, ok := r.LookupByGoType(t); ok {
		if ss, ok2 := ti.Serializer.(*structSerializer); ok2 {
			return ss, ti, nil
		}
	}
	evolving := true
	if override, explicit := structEvolvingOverride(t); explicit {
		evolving = override
	}
	ss := &structSerializer{goType: t, name: t.Name(), byName: make(map[string]int), evolving: evolving}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" || fieldTagOption(f, "-") {
			continue
		}
		wireName := fieldWireName(f)
		wt := goFieldWireType(f.Type)
		if fieldTagOption(f, "varint") {
			switch wt.TypeId {
			case INT32:
				wt.TypeId = VAR_INT32
			case UINT32:
				wt.TypeId = VAR_UINT32
			case INT64:
				wt.TypeId = VAR_INT64
			case UINT64:
				wt.TypeId = VAR_UINT64
			}
		}
		if fieldTagOption(f, "tagged") {
			switch wt.TypeId {
			case INT64, VAR_INT64:
				wt.TypeId = TAGGED_INT64
			case UINT64, VAR_UINT64:
				wt.TypeId = TAGGED_UINT64
			}
		}
		ss.byName[wireName] = len(ss.fields)
		ss.fields = append(ss.fields, structFieldBinding{
			goIndex:  i,
			name:     wireName,
			nullable: wt.Nullable,
			trackRef: fieldTagOption(f, "ref"),
			wireType: wt,
		})
	}
	kind := COMPATIBLE_STRUCT
	if !evolving {
		kind = STRUCT
	}
	ti := r.RegisterByName(t, kind, "", t.Name(), ss)
	return ss, ti, nil
}

func (s *structSerializer) TypeId() TypeId {
	if s.evolving {
		return COMPATIBLE_STRUCT
	}
	return STRUCT
}

func (s *structSerializer) Write(ctx *WriteContext, value reflect.Value) {
	buf := ctx.Buffer()
	for _, fb := range s.fields {
		fv := value.Field(fb.goIndex)
		refMode := RefModeFrom(fb.nullable, fb.trackRef)
		if ser, ok := primitiveSerializerByTypeId(fb.wireType.TypeId); ok && len(fb.wireType.Generics) == 0 {
			writeScalarField(ctx, ser, fv, refMode)
			continue
		}
		writeValue(ctx, fv, refMode, fb.wireType.TypeId == UNKNOWN || fb.wireType.TypeId == COMPATIBLE_STRUCT)
	}
	_ = buf
}

// writeScalarField writes a non-container field's ref prefix (if any) then
// its payload via the fixed leaf serializer, without a type-info prefix
// (the field's wire type is already pinned by the TypeMeta).
func writeScalarField(ctx *WriteContext, ser Serializer, v reflect.Value, refMode RefMode) {
	switch refMode {
	case RefModeTracking, RefModeNullOnly:
		isNil := v.Kind() == reflect.Ptr && v.IsNil()
		var wrote bool
		if refMode == RefModeTracking {
			wrote = ctx.RefResolver().WriteRefOrNull(ctx.Buffer(), v)
		} else {
			wrote = ctx.RefResolver().WriteNullOnly(ctx.Buffer(), isNil)
		}
		if !wrote {
			return
		}
	}
	ser.Write(ctx, derefValue(v))
}

func (s *structSerializer) Read(ctx *ReadContext, value reflect.Value) {
	for _, fb := range s.fields {
		fv := value.Field(fb.goIndex)
		refMode := RefModeFrom(fb.nullable, fb.trackRef)
		if ser, ok := primitiveSerializerByTypeId(fb.wireType.TypeId); ok && len(fb.wireType.Generics) == 0 {
			readScalarField(ctx, ser, fv, refMode)
			continue
		}
		readValue(ctx, fv, refMode, fb.wireType.TypeId == UNKNOWN || fb.wireType.TypeId == COMPATIBLE_STRUCT)
	}
}

func readScalarField(ctx *ReadContext, ser Serializer, v reflect.Value, refMode RefMode) {
	switch refMode {
	case RefModeTracking, RefModeNullOnly:
		flag := ctx.RefResolver().ReadRefFlag(ctx.Buffer(), ctx.Err())
		if ctx.HasError() {
			return
		}
		if flag == NullFlag {
			setZeroOrNil(v)
			return
		}
	}
	target := derefValueForWrite(v)
	ser.Read(ctx, target)
}

func derefValueForWrite(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return v.Elem()
	}
	return v
}

// readCompatible reads a struct whose wire form carries an explicit TypeMeta
// (because the writer's schema may differ from ours): fields are matched by
// name; fields present in tm but absent locally are consumed and discarded
// by the field skipper; fields present locally but absent in tm are left at
// their zero value.
func (s *structSerializer) readCompatible(ctx *ReadContext, tm *TypeMeta, value reflect.Value) {
	ctx.PushTypeMeta(tm)
	defer ctx.PopTypeMeta()
	for _, rf := range tm.Fields {
		if ctx.HasError() {
			return
		}
		idx, ok := s.byName[rf.Name]
		if !ok {
			skipField(ctx, rf.FieldType)
			continue
		}
		fb := s.fields[idx]
		fv := value.Field(fb.goIndex)
		refMode := RefModeFrom(rf.FieldType.Nullable, rf.FieldType.TrackRef)
		if ser, ok := primitiveSerializerByTypeId(rf.FieldType.TypeId); ok && len(rf.FieldType.Generics) == 0 {
			readScalarField(ctx, ser, fv, refMode)
			continue
		}
		readValue(ctx, fv, refMode, rf.FieldType.TypeId == UNKNOWN || rf.FieldType.TypeId == COMPATIBLE_STRUCT || rf.FieldType.TypeId == NAMED_COMPATIBLE_STRUCT)
	}
}
