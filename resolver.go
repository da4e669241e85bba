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
	"fmt"
	"reflect"
	"sync"
)

// Serializer is the uniform codec interface every wire kind implements: a
// typed write/read pair operating through WriteContext/ReadContext, plus the
// static TypeId it serializes as (used for dynamic-any dispatch and array
// element headers).
type Serializer interface {
	TypeId() TypeId
	Write(ctx *WriteContext, value reflect.Value)
	Read(ctx *ReadContext, value reflect.Value)
}

// RegisterMode records whether a user kind (Struct/Enum/Ext/Union) has been
// registered by id, by name, or both; Mixed disambiguation is an error state
// reported on a dynamic read.
type RegisterMode int8

const (
	RegisterModeUnset RegisterMode = iota
	RegisterModeIdOnly
	RegisterModeNameOnly
	RegisterModeMixed
)

// TypeInfo binds a Go type to its wire identity and codec.
type TypeInfo struct {
	GoType     reflect.Type
	WireTypeId TypeId

	HasUserId  bool
	UserTypeId uint32

	HasName   bool
	Namespace string
	TypeName  string

	Serializer Serializer

	// Compatible-struct support: present only for STRUCT/COMPATIBLE_STRUCT kinds.
	CompatibleReader func(ctx *ReadContext, tm *TypeMeta, value reflect.Value)
}

func (t *TypeInfo) nameKey() string { return t.Namespace + "\x00" + t.TypeName }

// TypeResolver is the process-wide (or per-Fory-instance) registry mapping
// Go types to TypeInfo and back, by user type id or by (namespace, name).
// Struct bindings are created lazily: the first lookup for an unregistered
// struct type builds and registers its TypeInfo, and later lookups hit it
// directly. Slice and map serializers that are not registered are built
// afresh on every lookup and are not cached.
type TypeResolver struct {
	mu sync.RWMutex

	byGoType     map[reflect.Type]*TypeInfo
	byUserTypeId map[uint32]*TypeInfo
	byName       map[string]*TypeInfo
	kindMode     map[TypeId]RegisterMode

	version uint64
}

func NewTypeResolver() *TypeResolver {
	r := &TypeResolver{
		byGoType:     make(map[reflect.Type]*TypeInfo),
		byUserTypeId: make(map[uint32]*TypeInfo),
		byName:       make(map[string]*TypeInfo),
		kindMode:     make(map[TypeId]RegisterMode),
	}
	registerBuiltinSerializers(r)
	registerPrimitiveArraySerializers(r)
	return r
}

func (r *TypeResolver) bumpVersion() { r.version++ }

func (r *TypeResolver) setKindMode(kind TypeId, byName bool) {
	existing := r.kindMode[kind]
	var this RegisterMode
	if byName {
		this = RegisterModeNameOnly
	} else {
		this = RegisterModeIdOnly
	}
	switch {
	case existing == RegisterModeUnset:
		r.kindMode[kind] = this
	case existing != this:
		r.kindMode[kind] = RegisterModeMixed
	}
}

// RegisterByID binds goType to userTypeId under the given wire kind.
func (r *TypeResolver) RegisterByID(goType reflect.Type, kind TypeId, userTypeId uint32, ser Serializer) *TypeInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	ti := &TypeInfo{GoType: goType, WireTypeId: kind, HasUserId: true, UserTypeId: userTypeId, Serializer: ser}
	r.byGoType[goType] = ti
	r.byUserTypeId[userTypeId] = ti
	r.setKindMode(kind, false)
	r.bumpVersion()
	log.Debugf("registered %s as kind=%d id=%d (registry version %d)", goType, kind, userTypeId, r.version)
	return ti
}

// RegisterByName binds goType to (namespace, typeName) under the given wire kind.
func (r *TypeResolver) RegisterByName(goType reflect.Type, kind TypeId, namespace, typeName string, ser Serializer) *TypeInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	ti := &TypeInfo{GoType: goType, WireTypeId: kind, HasName: true, Namespace: namespace, TypeName: typeName, Serializer: ser}
	r.byGoType[goType] = ti
	r.byName[ti.nameKey()] = ti
	r.setKindMode(kind, true)
	r.bumpVersion()
	log.Debugf("registered %s as kind=%d name=%s.%s (registry version %d)", goType, kind, namespace, typeName, r.version)
	return ti
}

func (r *TypeResolver) registerBuiltin(goType reflect.Type, kind TypeId, ser Serializer) {
	r.byGoType[goType] = &TypeInfo{GoType: goType, WireTypeId: kind, Serializer: ser}
}

func (r *TypeResolver) LookupByGoType(t reflect.Type) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ti, ok := r.byGoType[t]
	return ti, ok
}

func (r *TypeResolver) LookupByUserTypeId(id uint32) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ti, ok := r.byUserTypeId[id]
	return ti, ok
}

func (r *TypeResolver) LookupByName(namespace, name string) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ti, ok := r.byName[namespace+"\x00"+name]
	return ti, ok
}

func (r *TypeResolver) ModeFor(kind TypeId) RegisterMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.kindMode[kind]
}

// TypeInfoFor resolves a runtime value's dynamic-dispatch TypeInfo by its Go
// type, stripping every level of pointer indirection first; an interface
// value is looked up by its static interface type, not unwrapped.
func (r *TypeResolver) TypeInfoFor(value reflect.Value) (*TypeInfo, *Error) {
	t := value.Type()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if ti, ok := r.LookupByGoType(t); ok {
		return ti, nil
	}
	return nil, TypeNotRegisteredError(fmt.Sprintf("no serializer registered for %s", t.String()))
}

// WriteTypeInfo emits the dynamic type prefix the read side's
// ReadDynamicTypeInfo consumes: a varuint32 wire kind, then either a TypeMeta
// (compatible-struct kinds), a (namespace,name) pair (name-registered kinds),
// or a varuint32 user id (id-registered kinds). Primitive/container kinds
// with no user identity write only the wire kind.
func (r *TypeResolver) WriteTypeInfo(ctx *WriteContext, ti *TypeInfo) {
	buf := ctx.Buffer()
	buf.WriteVarUint32(uint32(uint16(ti.WireTypeId)))
	if !IsUserTypeKind(ti.WireTypeId) {
		return
	}
	switch ti.WireTypeId {
	case COMPATIBLE_STRUCT, NAMED_COMPATIBLE_STRUCT:
		tm := r.buildTypeMeta(ti)
		writeTypeMeta(buf, tm)
	case NAMED_STRUCT, NAMED_ENUM, NAMED_EXT, NAMED_UNION:
		writeMetaString(buf, ti.Namespace)
		writeMetaString(buf, ti.TypeName)
	default:
		if ti.HasName {
			writeMetaString(buf, ti.Namespace)
			writeMetaString(buf, ti.TypeName)
		} else {
			buf.WriteVarUint32(ti.UserTypeId)
		}
	}
}

// buildTypeMeta reflects a struct TypeInfo's Go fields into a TypeMeta; used
// by WriteTypeInfo for the write-side type-info prefix. A struct codec's own
// field bindings are used when present, so the TypeMeta carries each field's
// ref/varint/tagged tag options exactly as the writer applies them.
func (r *TypeResolver) buildTypeMeta(ti *TypeInfo) *TypeMeta {
	tm := &TypeMeta{RegisterByName: ti.HasName, UserTypeId: ti.UserTypeId, Namespace: ti.Namespace, TypeName: ti.TypeName}
	if ss, ok := ti.Serializer.(*structSerializer); ok {
		for _, fb := range ss.fields {
			ft := fb.wireType
			ft.TrackRef = fb.trackRef
			tm.Fields = append(tm.Fields, TypeMetaFieldInfo{Name: fb.name, FieldType: ft})
		}
		return tm
	}
	t := ti.GoType
	if t == nil {
		return tm
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		ft := goFieldWireType(f.Type)
		tm.Fields = append(tm.Fields, TypeMetaFieldInfo{Name: fieldWireName(f), FieldType: ft})
	}
	return tm
}

// ReadDynamicTypeInfo reads the prefix WriteTypeInfo emits and produces a
// descriptor the any-value codec and struct codec dispatch on.
func (r *TypeResolver) ReadDynamicTypeInfo(ctx *ReadContext) DynamicTypeInfo {
	buf := ctx.Buffer()
	kind := TypeId(int16(buf.ReadVarUint32(ctx.Err())))
	if ctx.HasError() {
		return DynamicTypeInfo{}
	}
	d := DynamicTypeInfo{WireTypeId: kind}
	if !IsUserTypeKind(kind) {
		return d
	}
	switch kind {
	case COMPATIBLE_STRUCT, NAMED_COMPATIBLE_STRUCT:
		tm := readTypeMeta(buf, ctx.Err())
		d.CompatMeta = tm
		if tm != nil {
			d.HasUserId = !tm.RegisterByName
			d.UserTypeId = tm.UserTypeId
			d.HasName = tm.RegisterByName
			d.Namespace = tm.Namespace
			d.TypeName = tm.TypeName
		}
	case NAMED_STRUCT, NAMED_ENUM, NAMED_EXT, NAMED_UNION:
		d.HasName = true
		d.Namespace = readMetaString(buf, ctx.Err())
		d.TypeName = readMetaString(buf, ctx.Err())
	default:
		switch r.ModeFor(kind) {
		case RegisterModeNameOnly:
			d.HasName = true
			d.Namespace = readMetaString(buf, ctx.Err())
			d.TypeName = readMetaString(buf, ctx.Err())
		case RegisterModeMixed:
			ctx.Err().Set(ErrKindInvalidData, "ambiguous dynamic type registration mode")
		default:
			d.HasUserId = true
			d.UserTypeId = buf.ReadVarUint32(ctx.Err())
		}
	}
	return d
}

// ResolveDynamicTypeInfo maps a decoded descriptor back to a registered
// TypeInfo, by user id or by name.
func (r *TypeResolver) ResolveDynamicTypeInfo(d DynamicTypeInfo) (*TypeInfo, *Error) {
	if d.HasName {
		if ti, ok := r.LookupByName(d.Namespace, d.TypeName); ok {
			return ti, nil
		}
		return nil, TypeNotRegisteredError(fmt.Sprintf("no type registered for name %s.%s", d.Namespace, d.TypeName))
	}
	if d.HasUserId {
		if ti, ok := r.LookupByUserTypeId(d.UserTypeId); ok {
			return ti, nil
		}
		return nil, TypeNotRegisteredError(fmt.Sprintf("no type registered for id %d", d.UserTypeId))
	}
	return nil, TypeNotRegisteredError("dynamic type descriptor carries neither name nor id")
}
