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

// refKey is the identity a value is deduplicated by on the write side:
// pointers, maps, slices, and interface-wrapped versions of any of those
// compare by the address/header they carry, not by contents.
type refKey struct {
	kind uintptr
	ptr  uintptr
}

func referenceIdentity(v reflect.Value) (refKey, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if v.IsNil() {
			return refKey{}, false
		}
		return refKey{kind: uintptr(v.Kind()), ptr: v.Pointer()}, true
	case reflect.Slice:
		if v.IsNil() {
			return refKey{}, false
		}
		return refKey{kind: uintptr(v.Kind()), ptr: v.Pointer()}, true
	case reflect.Interface:
		if v.IsNil() {
			return refKey{}, false
		}
		return referenceIdentity(v.Elem())
	default:
		return refKey{}, false
	}
}

// RefResolver implements the write-side/read-side halves of the reference
// tracking protocol described for object-graph identity preservation: a
// value encountered a second time on write becomes a back-reference instead
// of a full re-encoding, and the read side rebuilds the same identity graph
// by reserving a slot for every RefValue before recursing into its payload.
type RefResolver struct {
	trackRef bool

	// write side
	writtenObjects map[refKey]uint32
	nextWriteId    uint32

	// read side
	readObjects []reflect.Value
	pending     []int
	current     reflect.Value
}

func NewRefResolver(trackRef bool) *RefResolver {
	return &RefResolver{
		trackRef:       trackRef,
		writtenObjects: make(map[refKey]uint32),
	}
}

func (r *RefResolver) TrackingEnabled() bool { return r.trackRef }

func (r *RefResolver) Reset() {
	for k := range r.writtenObjects {
		delete(r.writtenObjects, k)
	}
	r.nextWriteId = 0
	r.readObjects = r.readObjects[:0]
	r.pending = r.pending[:0]
}

// WriteRefOrNull writes the appropriate RefFlag for v (Null / Ref /
// NotNullValue / RefValue) and reports whether the caller must still
// serialize the payload: false means a Null or back-reference flag was
// written and there is nothing more to do; true means a RefValue flag (or,
// when ref tracking is off or v's kind has no identity, a NotNullValue flag)
// was written and the caller must now write the value's payload.
func (r *RefResolver) WriteRefOrNull(buf *ByteBuffer, v reflect.Value) bool {
	if isNilValue(v) {
		buf.WriteInt8(NullFlag)
		return false
	}
	if !r.trackRef {
		buf.WriteInt8(NotNullValueFlag)
		return true
	}
	key, trackable := referenceIdentity(v)
	if !trackable {
		buf.WriteInt8(NotNullValueFlag)
		return true
	}
	if id, seen := r.writtenObjects[key]; seen {
		buf.WriteInt8(RefFlagByte)
		buf.WriteVarUint32(id)
		return false
	}
	r.writtenObjects[key] = r.nextWriteId
	r.nextWriteId++
	buf.WriteInt8(RefValueFlag)
	return true
}

// WriteNullOnly writes a single null-flag byte for RefModeNullOnly fields,
// returning true when the caller should still write the payload.
func (r *RefResolver) WriteNullOnly(buf *ByteBuffer, isNil bool) bool {
	if isNil {
		buf.WriteInt8(NullFlag)
		return false
	}
	buf.WriteInt8(NotNullValueFlag)
	return true
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}

// ReadRefFlag reads the single flag byte every ref-tracked or nullable field
// is prefixed by.
func (r *RefResolver) ReadRefFlag(buf *ByteBuffer, err *Error) int8 {
	return buf.ReadInt8(err)
}

// ReadBackReference reads the varuint32 ref id following a back-reference
// flag and returns the previously stored value.
func (r *RefResolver) ReadBackReference(buf *ByteBuffer, err *Error) reflect.Value {
	id := buf.ReadVarUint32(err)
	if err.HasError() {
		return reflect.Value{}
	}
	return r.GetReadObject(int(id))
}

// ReserveRefId pushes a null slot for an in-flight RefValue read and returns
// its index; the slot must be filled with StoreRef before the value's
// children are read, so a cyclic child can resolve a back-reference to it.
func (r *RefResolver) ReserveRefId() int {
	id := len(r.readObjects)
	r.readObjects = append(r.readObjects, reflect.Value{})
	r.pending = append(r.pending, id)
	return id
}

// StoreRef fills a previously reserved slot once the value's identity is
// fixed, and pops it from the pending stack.
func (r *RefResolver) StoreRef(id int, v reflect.Value) {
	r.readObjects[id] = v
	r.current = v
	if n := len(r.pending); n > 0 && r.pending[n-1] == id {
		r.pending = r.pending[:n-1]
	}
}

func (r *RefResolver) GetReadObject(id int) reflect.Value {
	if id < 0 || id >= len(r.readObjects) {
		return reflect.Value{}
	}
	return r.readObjects[id]
}

// GetCurrentReadObject returns the value most recently passed to StoreRef.
func (r *RefResolver) GetCurrentReadObject() reflect.Value {
	return r.current
}
