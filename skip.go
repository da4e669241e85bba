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

// skipField consumes exactly one value of the declared field type from ctx's
// buffer without materializing it, using the same RefMode the writer used.
// This is what lets a reader tolerate fields its local schema doesn't know
// about: the TypeMeta tells it how many bytes to discard.
func skipField(ctx *ReadContext, ft TypeMetaFieldType) {
	refMode := RefModeFrom(ft.Nullable, ft.TrackRef)
	switch refMode {
	case RefModeTracking, RefModeNullOnly:
		flag := ctx.RefResolver().ReadRefFlag(ctx.Buffer(), ctx.Err())
		if ctx.HasError() {
			return
		}
		if flag == NullFlag {
			return
		}
		if refMode == RefModeTracking && flag == RefFlagByte {
			ctx.Buffer().ReadVarUint32(ctx.Err())
			return
		}
	}
	skipPayload(ctx, ft)
}

func skipPayload(ctx *ReadContext, ft TypeMetaFieldType) {
	if ctx.HasError() {
		return
	}
	buf := ctx.Buffer()
	switch ft.TypeId {
	case BOOL, INT8, UINT8:
		buf.Skip(1, ctx.Err())
	case INT16, UINT16:
		buf.Skip(2, ctx.Err())
	case INT32, UINT32, FLOAT32:
		buf.Skip(4, ctx.Err())
	case INT64, UINT64, FLOAT64:
		buf.Skip(8, ctx.Err())
	case VAR_INT32, VAR_UINT32:
		buf.ReadVarUint32(ctx.Err())
	case VAR_INT64, VAR_UINT64:
		buf.ReadVarUint64(ctx.Err())
	case TAGGED_INT64:
		buf.ReadTaggedInt64(ctx.Err())
	case TAGGED_UINT64:
		buf.ReadTaggedUint64(ctx.Err())
	case STRING:
		readStringPayload(buf, ctx.Err())
	case BINARY:
		buf.ReadBinary(ctx.Err())
	case ENUM, NAMED_ENUM:
		buf.ReadVarUint32(ctx.Err())
	case LIST, SET:
		skipList(ctx, ft)
	case MAP:
		skipMap(ctx, ft)
	case UNION, TYPED_UNION, NAMED_UNION:
		ctx.SetError(InvalidDataError("unsupported compatible field type"))
	default:
		ctx.SetError(InvalidDataError("unsupported compatible field type"))
	}
}

func skipList(ctx *ReadContext, ft TypeMetaFieldType) {
	buf := ctx.Buffer()
	n := buf.ReadLength(ctx.Err())
	if ctx.HasError() || n == 0 {
		return
	}
	header := buf.ReadUint8(ctx.Err())
	declaredType := header&COLL_IS_DECL_ELEMENT_TYPE != 0
	var elemFt TypeMetaFieldType
	if len(ft.Generics) > 0 {
		elemFt = ft.Generics[0]
	} else {
		elemFt = TypeMetaFieldType{TypeId: STRING}
	}
	if !declaredType {
		ctx.SetError(InvalidDataError("unsupported compatible field type"))
		return
	}
	trackRef := header&COLL_TRACKING_REF != 0
	hasNull := header&COLL_HAS_NULL != 0
	for i := 0; i < n; i++ {
		if ctx.HasError() {
			return
		}
		switch {
		case trackRef:
			flag := ctx.RefResolver().ReadRefFlag(buf, ctx.Err())
			if ctx.HasError() {
				return
			}
			if flag == NullFlag {
				continue
			}
			if flag == RefFlagByte {
				buf.ReadVarUint32(ctx.Err())
				continue
			}
			skipPayload(ctx, elemFt)
		case hasNull:
			flag := buf.ReadInt8(ctx.Err())
			if ctx.HasError() {
				return
			}
			if flag == NullFlag {
				continue
			}
			skipPayload(ctx, elemFt)
		default:
			skipPayload(ctx, elemFt)
		}
	}
}

// skipMap mirrors mapSerializer.Read's chunking (§4.8): a null key or null
// value breaks the run into a single-entry header with no chunk-size byte,
// while a run of non-null entries shares one header plus a chunkSize byte.
func skipMap(ctx *ReadContext, ft TypeMetaFieldType) {
	buf := ctx.Buffer()
	total := buf.ReadLength(ctx.Err())
	if ctx.HasError() {
		return
	}
	var keyFt, valFt TypeMetaFieldType
	if len(ft.Generics) == 2 {
		keyFt, valFt = ft.Generics[0], ft.Generics[1]
	} else {
		keyFt, valFt = TypeMetaFieldType{TypeId: STRING}, TypeMetaFieldType{TypeId: STRING}
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
			if !keyNull {
				skipPayload(ctx, keyFt)
			}
			if !valNull {
				skipPayload(ctx, valFt)
			}
			read++
			continue
		}
		chunkSize := int(buf.ReadUint8(ctx.Err()))
		if ctx.HasError() {
			return
		}
		if chunkSize == 0 {
			ctx.SetError(InvalidDataError("map chunk size is zero"))
			return
		}
		for i := 0; i < chunkSize; i++ {
			skipPayload(ctx, keyFt)
			skipPayload(ctx, valFt)
		}
		read += chunkSize
	}
}
