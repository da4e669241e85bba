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


// WriteContext is the scoped state threaded through one top-level Marshal
// call: the byte writer, the ref writer, the type resolver, whether ref
// tracking and compatible mode are on, and a recursion depth counter bounded
// by Config.MaxDepth.
type WriteContext struct {
	buffer      *ByteBuffer
	refResolver *RefResolver
	resolver    *TypeResolver
	trackRef    bool
	compatible  bool
	maxDepth    int
	depth       int
	err         *Error
}

func newWriteContext(buf *ByteBuffer, resolver *TypeResolver, cfg Config) *WriteContext {
	return &WriteContext{
		buffer:      buf,
		refResolver: NewRefResolver(cfg.TrackRef),
		resolver:    resolver,
		trackRef:    cfg.TrackRef,
		compatible:  cfg.Compatible,
		maxDepth:    cfg.MaxDepth,
		err:         &Error{},
	}
}

func (c *WriteContext) Buffer() *ByteBuffer          { return c.buffer }
func (c *WriteContext) RefResolver() *RefResolver    { return c.refResolver }
func (c *WriteContext) TypeResolver() *TypeResolver  { return c.resolver }
func (c *WriteContext) TrackRef() bool               { return c.trackRef }
func (c *WriteContext) Compatible() bool             { return c.compatible }
func (c *WriteContext) Err() *Error                  { return c.err }
func (c *WriteContext) HasError() bool               { return c.err.HasError() }
func (c *WriteContext) SetError(e *Error) {
	if e == nil {
		return
	}
	c.err.Set(e.Kind(), e.message)
}

// EnterDepth increments the recursion counter and reports whether the call
// must abort because config.maxDepth was exceeded.
func (c *WriteContext) EnterDepth() bool {
	c.depth++
	if c.depth > c.maxDepth {
		c.err.Set(ErrKindInvalidData, "recursion depth exceeded")
		return false
	}
	return true
}

func (c *WriteContext) ExitDepth() { c.depth-- }

// RefMode resolves the RefMode to use for a value given its declared
// nullability, honoring the context's global trackRef switch.
func (c *WriteContext) RefMode(nullable bool) RefMode {
	if c.trackRef {
		return RefModeTracking
	}
	return RefModeFrom(nullable, false)
}

// ReadContext mirrors WriteContext on the read side, additionally carrying a
// stack of dynamic type descriptors and a stack of TypeMetas currently
// driving a compatible-struct read.
type ReadContext struct {
	buffer      *ByteBuffer
	refResolver *RefResolver
	resolver    *TypeResolver
	trackRef    bool
	compatible  bool
	maxDepth    int
	depth       int
	err         *Error

	dynamicStack []DynamicTypeInfo
	metaStack    []*TypeMeta

	maxStringBytes     uint32
	maxCollectionSize  uint32
	maxMapSize         uint32
}

func newReadContext(buf *ByteBuffer, resolver *TypeResolver, cfg Config) *ReadContext {
	return &ReadContext{
		buffer:            buf,
		refResolver:       NewRefResolver(cfg.TrackRef),
		resolver:          resolver,
		trackRef:          cfg.TrackRef,
		compatible:        cfg.Compatible,
		maxDepth:          cfg.MaxDepth,
		err:               &Error{},
		maxStringBytes:    cfg.MaxStringBytes,
		maxCollectionSize: cfg.MaxCollectionSize,
		maxMapSize:        cfg.MaxMapSize,
	}
}

// CheckStringBytes reports (by setting ctx's error) whether n exceeds the
// configured string length ceiling; a zero ceiling means unlimited.
func (c *ReadContext) CheckStringBytes(n int) bool {
	if c.maxStringBytes > 0 && uint32(n) > c.maxStringBytes {
		c.err.Set(ErrKindInvalidData, "string exceeds configured MaxStringBytes")
		return false
	}
	return true
}

// CheckCollectionSize reports whether n exceeds the configured collection
// length ceiling; a zero ceiling means unlimited.
func (c *ReadContext) CheckCollectionSize(n int) bool {
	if c.maxCollectionSize > 0 && uint32(n) > c.maxCollectionSize {
		c.err.Set(ErrKindInvalidData, "collection exceeds configured MaxCollectionSize")
		return false
	}
	return true
}

// CheckMapSize reports whether n exceeds the configured map length ceiling;
// a zero ceiling means unlimited.
func (c *ReadContext) CheckMapSize(n int) bool {
	if c.maxMapSize > 0 && uint32(n) > c.maxMapSize {
		c.err.Set(ErrKindInvalidData, "map exceeds configured MaxMapSize")
		return false
	}
	return true
}

func (c *ReadContext) Buffer() *ByteBuffer         { return c.buffer }
func (c *ReadContext) RefResolver() *RefResolver   { return c.refResolver }
func (c *ReadContext) TypeResolver() *TypeResolver { return c.resolver }
func (c *ReadContext) TrackRef() bool              { return c.trackRef }
func (c *ReadContext) Compatible() bool            { return c.compatible }
func (c *ReadContext) Err() *Error                 { return c.err }
func (c *ReadContext) HasError() bool              { return c.err.HasError() }
func (c *ReadContext) SetError(e *Error) {
	if e == nil {
		return
	}
	c.err.Set(e.Kind(), e.message)
}

func (c *ReadContext) EnterDepth() bool {
	c.depth++
	if c.depth > c.maxDepth {
		c.err.Set(ErrKindInvalidData, "recursion depth exceeded")
		return false
	}
	return true
}

func (c *ReadContext) ExitDepth() { c.depth-- }

func (c *ReadContext) RefMode(nullable bool) RefMode {
	if c.trackRef {
		return RefModeTracking
	}
	return RefModeFrom(nullable, false)
}

func (c *ReadContext) PushDynamicTypeInfo(d DynamicTypeInfo) { c.dynamicStack = append(c.dynamicStack, d) }

func (c *ReadContext) PopDynamicTypeInfo() {
	if n := len(c.dynamicStack); n > 0 {
		c.dynamicStack = c.dynamicStack[:n-1]
	}
}

func (c *ReadContext) CurrentDynamicTypeInfo() (DynamicTypeInfo, bool) {
	if n := len(c.dynamicStack); n > 0 {
		return c.dynamicStack[n-1], true
	}
	return DynamicTypeInfo{}, false
}

func (c *ReadContext) PushTypeMeta(tm *TypeMeta) { c.metaStack = append(c.metaStack, tm) }

func (c *ReadContext) PopTypeMeta() {
	if n := len(c.metaStack); n > 0 {
		c.metaStack = c.metaStack[:n-1]
	}
}

func (c *ReadContext) CurrentTypeMeta() *TypeMeta {
	if n := len(c.metaStack); n > 0 {
		return c.metaStack[n-1]
	}
	return nil
}

// DynamicTypeInfo is the in-flight descriptor produced when the read side
// decodes a dynamic type prefix; it is pushed on the read context for the
// duration of the value it describes.
type DynamicTypeInfo struct {
	WireTypeId  TypeId
	UserTypeId  uint32
	HasUserId   bool
	Namespace   string
	TypeName    string
	HasName     bool
	CompatMeta  *TypeMeta
}
