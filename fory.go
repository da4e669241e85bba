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

const defaultMaxDepth = 512

// Config holds the construction-time switches every Fory instance is built
// from. Xlang defaults on: this package only ever speaks the cross-language
// wire protocol, there is no separate Go-only mode.
type Config struct {
	Xlang                    bool
	TrackRef                 bool
	Compatible               bool
	CheckStructVersion       bool
	EnableReflectionFallback bool
	MaxDepth                 int

	MaxStringBytes    uint32
	MaxCollectionSize uint32
	MaxMapSize        uint32
}

// Option mutates a Config under construction.
type Option func(*Config)

func WithXlang(v bool) Option                    { return func(c *Config) { c.Xlang = v } }
func WithTrackRef(v bool) Option                 { return func(c *Config) { c.TrackRef = v } }
func WithCompatible(v bool) Option                { return func(c *Config) { c.Compatible = v } }
func WithCheckStructVersion(v bool) Option        { return func(c *Config) { c.CheckStructVersion = v } }
func WithEnableReflectionFallback(v bool) Option  { return func(c *Config) { c.EnableReflectionFallback = v } }
func WithMaxDepth(n int) Option                   { return func(c *Config) { c.MaxDepth = n } }
func WithMaxStringBytes(n uint32) Option          { return func(c *Config) { c.MaxStringBytes = n } }
func WithMaxCollectionSize(n uint32) Option       { return func(c *Config) { c.MaxCollectionSize = n } }
func WithMaxMapSize(n uint32) Option              { return func(c *Config) { c.MaxMapSize = n } }

// Fory is one configured serializer instance: a type registry plus the
// switches governing ref tracking, schema compatibility, and resource
// ceilings applied uniformly to every Marshal/Unmarshal call it makes.
type Fory struct {
	config       Config
	typeResolver *TypeResolver
}

// New builds a Fory with every default: cross-language wire format, no ref
// tracking, compatible (evolving, TypeMeta-carrying) struct encoding unless a
// struct overrides it, depth capped at 512, and no size ceilings.
func New(opts ...Option) *Fory {
	cfg := Config{Xlang: true, MaxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxDepth <= 0 {
		log.Errorf("invalid MaxDepth %d: must be positive", cfg.MaxDepth)
		panic(InvalidDataError("MaxDepth must be positive"))
	}
	return &Fory{config: cfg, typeResolver: NewTypeResolver()}
}

// NewFory is an alias of New kept for call sites that spell construction
// with the protocol's own name.
func NewFory(opts ...Option) *Fory { return New(opts...) }

// Register binds a Go type to a numeric user type id, usable from any
// process that registers the same id for the same wire shape.
func (f *Fory) Register(value interface{}, userTypeId uint32) error {
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	ser, _, err := newStructSerializer(f.typeResolver, t)
	if err != nil {
		return err
	}
	f.typeResolver.RegisterByID(t, ser.TypeId(), userTypeId, ser)
	return nil
}

// RegisterStruct is an alias of Register kept for call sites that want the
// registration call to name what it operates on.
func (f *Fory) RegisterStruct(value interface{}, userTypeId uint32) error {
	return f.Register(value, userTypeId)
}

// RegisterNamed binds a Go type to a (namespace, typeName) pair instead of a
// numeric id, for schemas that identify types by name across languages.
func (f *Fory) RegisterNamed(value interface{}, namespace, typeName string) error {
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	ser, _, err := newStructSerializer(f.typeResolver, t)
	if err != nil {
		return err
	}
	kind := NAMED_COMPATIBLE_STRUCT
	if !ser.evolving {
		kind = NAMED_STRUCT
	}
	f.typeResolver.RegisterByName(t, kind, namespace, typeName, ser)
	return nil
}

// Marshal serializes value into a fresh byte slice using this instance's
// configuration.
func (f *Fory) Marshal(value interface{}) (_ []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicToError(r)
		}
	}()
	buf := NewByteBuffer(nil)
	ctx := newWriteContext(buf, f.typeResolver, f.config)
	rv := reflect.ValueOf(value)
	writeValue(ctx, rv, RefModeFrom(true, f.config.TrackRef), true)
	if ctx.HasError() {
		log.Errorf("marshal failed: %s", ctx.Err().Error())
		return nil, ctx.Err()
	}
	return buf.GetData(), nil
}

// Serialize is an alias of Marshal kept for call sites spelled after the
// protocol's own verb.
func (f *Fory) Serialize(value interface{}) ([]byte, error) { return f.Marshal(value) }

// Unmarshal decodes data into dst, which must be a non-nil pointer.
func (f *Fory) Unmarshal(data []byte, dst interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicToError(r)
		}
	}()
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return InvalidDataError("Unmarshal destination must be a non-nil pointer")
	}
	buf := NewByteBuffer(data)
	ctx := newReadContext(buf, f.typeResolver, f.config)
	readValue(ctx, rv.Elem(), RefModeFrom(true, f.config.TrackRef), true)
	if ctx.HasError() {
		log.Errorf("unmarshal failed: %s", ctx.Err().Error())
		return ctx.Err()
	}
	return nil
}

// Deserialize is an alias of Unmarshal kept for call sites spelled after the
// protocol's own verb.
func (f *Fory) Deserialize(data []byte, dst interface{}) error { return f.Unmarshal(data, dst) }

func panicToError(r interface{}) error {
	if e, ok := r.(*Error); ok {
		return e
	}
	if e, ok := r.(error); ok {
		return InvalidDataError(e.Error())
	}
	return InvalidDataError("panic during serialization")
}
