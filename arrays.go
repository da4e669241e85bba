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

// Typed primitive arrays (§4.7 "Arrays of primitives") carry a varuint32
// byte-length prefix and fixed-width little-endian elements so the payload
// can be sliced directly, unlike the variable-width "primitive list fast
// path" used for a declared-element-type List<T>.

type boolArraySerializer struct{}

func (boolArraySerializer) TypeId() TypeId { return BOOL_ARRAY }
func (boolArraySerializer) Write(ctx *WriteContext, v reflect.Value) {
	n := v.Len()
	buf := ctx.Buffer()
	buf.WriteLength(n)
	for i := 0; i < n; i++ {
		buf.WriteBool(v.Index(i).Bool())
	}
}
func (boolArraySerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	n := buf.ReadLength(ctx.Err())
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).SetBool(buf.ReadBool(ctx.Err()))
	}
	v.Set(out)
}

type int16ArraySerializer struct{}

func (int16ArraySerializer) TypeId() TypeId { return INT16_ARRAY }
func (int16ArraySerializer) Write(ctx *WriteContext, v reflect.Value) {
	n := v.Len()
	buf := ctx.Buffer()
	buf.WriteLength(n * 2)
	for i := 0; i < n; i++ {
		buf.WriteInt16(int16(v.Index(i).Int()))
	}
}
func (int16ArraySerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	byteLen := buf.ReadLength(ctx.Err())
	if ctx.HasError() {
		return
	}
	n := byteLen / 2
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).SetInt(int64(buf.ReadInt16(ctx.Err())))
	}
	v.Set(out)
}

type int32ArraySerializer struct{}

func (int32ArraySerializer) TypeId() TypeId { return INT32_ARRAY }
func (int32ArraySerializer) Write(ctx *WriteContext, v reflect.Value) {
	n := v.Len()
	buf := ctx.Buffer()
	buf.WriteLength(n * 4)
	for i := 0; i < n; i++ {
		buf.WriteInt32(int32(v.Index(i).Int()))
	}
}
func (int32ArraySerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	byteLen := buf.ReadLength(ctx.Err())
	if ctx.HasError() {
		return
	}
	n := byteLen / 4
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).SetInt(int64(buf.ReadInt32(ctx.Err())))
	}
	v.Set(out)
}

type int64ArraySerializer struct{}

func (int64ArraySerializer) TypeId() TypeId { return INT64_ARRAY }
func (int64ArraySerializer) Write(ctx *WriteContext, v reflect.Value) {
	n := v.Len()
	buf := ctx.Buffer()
	buf.WriteLength(n * 8)
	for i := 0; i < n; i++ {
		buf.WriteInt64(v.Index(i).Int())
	}
}
func (int64ArraySerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	byteLen := buf.ReadLength(ctx.Err())
	if ctx.HasError() {
		return
	}
	n := byteLen / 8
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).SetInt(buf.ReadInt64(ctx.Err()))
	}
	v.Set(out)
}

type float32ArraySerializer struct{}

func (float32ArraySerializer) TypeId() TypeId { return FLOAT32_ARRAY }
func (float32ArraySerializer) Write(ctx *WriteContext, v reflect.Value) {
	n := v.Len()
	buf := ctx.Buffer()
	buf.WriteLength(n * 4)
	for i := 0; i < n; i++ {
		buf.WriteFloat32(float32(v.Index(i).Float()))
	}
}
func (float32ArraySerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	byteLen := buf.ReadLength(ctx.Err())
	if ctx.HasError() {
		return
	}
	n := byteLen / 4
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).SetFloat(float64(buf.ReadFloat32(ctx.Err())))
	}
	v.Set(out)
}

type float64ArraySerializer struct{}

func (float64ArraySerializer) TypeId() TypeId { return FLOAT64_ARRAY }
func (float64ArraySerializer) Write(ctx *WriteContext, v reflect.Value) {
	n := v.Len()
	buf := ctx.Buffer()
	buf.WriteLength(n * 8)
	for i := 0; i < n; i++ {
		buf.WriteFloat64(v.Index(i).Float())
	}
}
func (float64ArraySerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	byteLen := buf.ReadLength(ctx.Err())
	if ctx.HasError() {
		return
	}
	n := byteLen / 8
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).SetFloat(buf.ReadFloat64(ctx.Err()))
	}
	v.Set(out)
}

type int8ArraySerializer struct{}

func (int8ArraySerializer) TypeId() TypeId { return INT8_ARRAY }
func (int8ArraySerializer) Write(ctx *WriteContext, v reflect.Value) {
	n := v.Len()
	buf := ctx.Buffer()
	buf.WriteLength(n)
	for i := 0; i < n; i++ {
		buf.WriteInt8(int8(v.Index(i).Int()))
	}
}
func (int8ArraySerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	n := buf.ReadLength(ctx.Err())
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).SetInt(int64(buf.ReadInt8(ctx.Err())))
	}
	v.Set(out)
}

type uint16ArraySerializer struct{}

func (uint16ArraySerializer) TypeId() TypeId { return UINT16_ARRAY }
func (uint16ArraySerializer) Write(ctx *WriteContext, v reflect.Value) {
	n := v.Len()
	buf := ctx.Buffer()
	buf.WriteLength(n * 2)
	for i := 0; i < n; i++ {
		buf.WriteUint16(uint16(v.Index(i).Uint()))
	}
}
func (uint16ArraySerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	byteLen := buf.ReadLength(ctx.Err())
	if ctx.HasError() {
		return
	}
	n := byteLen / 2
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).SetUint(uint64(buf.ReadUint16(ctx.Err())))
	}
	v.Set(out)
}

type uint32ArraySerializer struct{}

func (uint32ArraySerializer) TypeId() TypeId { return UINT32_ARRAY }
func (uint32ArraySerializer) Write(ctx *WriteContext, v reflect.Value) {
	n := v.Len()
	buf := ctx.Buffer()
	buf.WriteLength(n * 4)
	for i := 0; i < n; i++ {
		buf.WriteUint32(uint32(v.Index(i).Uint()))
	}
}
func (uint32ArraySerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	byteLen := buf.ReadLength(ctx.Err())
	if ctx.HasError() {
		return
	}
	n := byteLen / 4
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).SetUint(uint64(buf.ReadUint32(ctx.Err())))
	}
	v.Set(out)
}

type uint64ArraySerializer struct{}

func (uint64ArraySerializer) TypeId() TypeId { return UINT64_ARRAY }
func (uint64ArraySerializer) Write(ctx *WriteContext, v reflect.Value) {
	n := v.Len()
	buf := ctx.Buffer()
	buf.WriteLength(n * 8)
	for i := 0; i < n; i++ {
		buf.WriteUint64(v.Index(i).Uint())
	}
}
func (uint64ArraySerializer) Read(ctx *ReadContext, v reflect.Value) {
	buf := ctx.Buffer()
	byteLen := buf.ReadLength(ctx.Err())
	if ctx.HasError() {
		return
	}
	n := byteLen / 8
	out := reflect.MakeSlice(v.Type(), n, n)
	for i := 0; i < n; i++ {
		out.Index(i).SetUint(buf.ReadUint64(ctx.Err()))
	}
	v.Set(out)
}

// primitiveArrayTypeIdFor reports the fixed-width array TypeId a Go slice
// element kind maps to, if any; byte slices are excluded since those are
// BINARY, not UINT8_ARRAY, by Go convention.
func primitiveArrayTypeIdFor(k reflect.Kind) (TypeId, bool) {
	switch k {
	case reflect.Bool:
		return BOOL_ARRAY, true
	case reflect.Int8:
		return INT8_ARRAY, true
	case reflect.Int16:
		return INT16_ARRAY, true
	case reflect.Int32:
		return INT32_ARRAY, true
	case reflect.Int64:
		return INT64_ARRAY, true
	case reflect.Uint16:
		return UINT16_ARRAY, true
	case reflect.Uint32:
		return UINT32_ARRAY, true
	case reflect.Uint64:
		return UINT64_ARRAY, true
	case reflect.Float32:
		return FLOAT32_ARRAY, true
	case reflect.Float64:
		return FLOAT64_ARRAY, true
	default:
		return UNKNOWN, false
	}
}

func registerPrimitiveArraySerializers(r *TypeResolver) {
	r.registerBuiltin(reflect.TypeOf([]bool(nil)), BOOL_ARRAY, boolArraySerializer{})
	r.registerBuiltin(reflect.TypeOf([]int8(nil)), INT8_ARRAY, int8ArraySerializer{})
	r.registerBuiltin(reflect.TypeOf([]int16(nil)), INT16_ARRAY, int16ArraySerializer{})
	r.registerBuiltin(reflect.TypeOf([]int32(nil)), INT32_ARRAY, int32ArraySerializer{})
	r.registerBuiltin(reflect.TypeOf([]int64(nil)), INT64_ARRAY, int64ArraySerializer{})
	r.registerBuiltin(reflect.TypeOf([]uint16(nil)), UINT16_ARRAY, uint16ArraySerializer{})
	r.registerBuiltin(reflect.TypeOf([]uint32(nil)), UINT32_ARRAY, uint32ArraySerializer{})
	r.registerBuiltin(reflect.TypeOf([]uint64(nil)), UINT64_ARRAY, uint64ArraySerializer{})
	r.registerBuiltin(reflect.TypeOf([]float32(nil)), FLOAT32_ARRAY, float32ArraySerializer{})
	r.registerBuiltin(reflect.TypeOf([]float64(nil)), FLOAT64_ARRAY, float64ArraySerializer{})
}
