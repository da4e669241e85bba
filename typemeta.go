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

// TypeMetaFieldType is a declared field type: a TypeId plus nullable/trackRef
// bits, plus an ordered list of generic arguments (one entry for list/set,
// two for map, empty otherwise). Generic arguments nest with an 8-bit,
// header-less TypeId when they have no further generics of their own; a
// generic argument that itself needs nullable/trackRef/further nesting is
// encoded the same way as a root TypeMetaFieldType.
type TypeMetaFieldType struct {
	TypeId   TypeId
	Nullable bool
	TrackRef bool
	Generics []TypeMetaFieldType
}

const (
	fieldNameEncodingTag = 3 // reserved encoding code: field chosen by numeric tag, not name
)

// TypeMetaFieldInfo pairs a field's wire identity (name, or numeric tag using
// the reserved encoding code 3) with its declared type.
type TypeMetaFieldInfo struct {
	Name     string // synthesized as "$tag{FieldId}" when ByTag is true
	ByTag    bool
	FieldId  uint32
	FieldType TypeMetaFieldType
}

// TypeMeta is the self-describing schema a compatible-struct value carries on
// the wire. Identity is either (userTypeId) for id-registered types or
// (namespace, typeName) for name-registered types, chosen by RegisterByName.
type TypeMeta struct {
	RegisterByName bool
	UserTypeId     uint32
	Namespace      string
	TypeName       string
	Fields         []TypeMetaFieldInfo
}

// ---- field type (generics-capable) ----

func encodeFieldType(buf *ByteBuffer, ft TypeMetaFieldType, nested bool) {
	if nested && len(ft.Generics) == 0 {
		// embedded leaf generic argument: header-less 8-bit type id
		buf.WriteUint8(uint8(ft.TypeId))
		return
	}
	tag := (uint32(uint16(ft.TypeId)) << 2)
	if ft.Nullable {
		tag |= 0x1
	}
	if ft.TrackRef {
		tag |= 0x2
	}
	buf.WriteVarUint32(tag)
	buf.WriteVarUint32(uint32(len(ft.Generics)))
	for _, g := range ft.Generics {
		encodeFieldType(buf, g, true)
	}
}

func decodeFieldType(buf *ByteBuffer, err *Error, nested bool) TypeMetaFieldType {
	if nested {
		// peek: an embedded leaf generic uses a raw 8-bit id with no generics
		// of its own; callers that need nested generics-of-generics use the
		// root form instead, so a plain byte always means "no further nesting".
		id := buf.ReadUint8(err)
		return TypeMetaFieldType{TypeId: TypeId(id)}
	}
	tag := buf.ReadVarUint32(err)
	ft := TypeMetaFieldType{
		TypeId:   TypeId(int16(tag >> 2)),
		Nullable: tag&0x1 != 0,
		TrackRef: tag&0x2 != 0,
	}
	n := buf.ReadVarUint32(err)
	if err.HasError() {
		return ft
	}
	ft.Generics = make([]TypeMetaFieldType, 0, n)
	for i := uint32(0); i < n; i++ {
		if err.HasError() {
			break
		}
		ft.Generics = append(ft.Generics, decodeFieldType(buf, err, true))
	}
	return ft
}

// ---- field info ----

func encodeFieldInfo(buf *ByteBuffer, f TypeMetaFieldInfo) {
	var encCode byte
	var nameBytes []byte
	if f.ByTag {
		encCode = fieldNameEncodingTag
	} else {
		ms := EncodeMetaString(f.Name)
		encCode = byte(ms.Encoding)
		nameBytes = ms.Bytes
	}
	size := len(nameBytes)
	sizeField := size
	ext := sizeField >= 0xF
	if ext {
		sizeField = 0xF
	}
	var header byte
	if f.FieldType.Nullable {
		header |= 0x1
	}
	if f.FieldType.TrackRef {
		header |= 0x2
	}
	header |= encCode << 2
	header |= byte(sizeField) << 4
	buf.WriteByte_(header)
	if ext {
		buf.WriteVarUint32(uint32(size - 0xF))
	}
	if f.ByTag {
		buf.WriteVarUint32(f.FieldId)
	} else {
		buf.Write(nameBytes)
	}
	encodeFieldType(buf, f.FieldType, false)
}

func decodeFieldInfo(buf *ByteBuffer, err *Error) TypeMetaFieldInfo {
	header := buf.ReadUint8(err)
	nullable := header&0x1 != 0
	trackRef := header&0x2 != 0
	encCode := (header >> 2) & 0x3
	size := int(header >> 4)
	if size == 0xF {
		size += int(buf.ReadVarUint32(err))
	}
	var info TypeMetaFieldInfo
	if encCode == fieldNameEncodingTag {
		info.ByTag = true
		info.FieldId = buf.ReadVarUint32(err)
		info.Name = tagFieldName(info.FieldId)
	} else {
		data := buf.ReadSpan(size, err)
		cp := make([]byte, len(data))
		copy(cp, data)
		info.Name = DecodeMetaString(MetaString{Encoding: MetaStringEncoding(encCode), Bytes: cp})
	}
	ft := decodeFieldType(buf, err, false)
	ft.Nullable = nullable
	ft.TrackRef = trackRef
	info.FieldType = ft
	return info
}

func tagFieldName(id uint32) string {
	return "$tag" + uitoa(id)
}

func uitoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// ---- body / header ----

func encodeTypeMetaBody(buf *ByteBuffer, tm *TypeMeta) {
	n := len(tm.Fields)
	nField := n
	ext := nField >= 0x1F
	if ext {
		nField = 0x1F
	}
	var b0 byte = byte(nField)
	if tm.RegisterByName {
		b0 |= 0x20
	}
	buf.WriteByte_(b0)
	if ext {
		buf.WriteVarUint32(uint32(n - 0x1F))
	}
	if tm.RegisterByName {
		writeMetaString(buf, tm.Namespace)
		writeMetaString(buf, tm.TypeName)
	} else {
		buf.WriteVarUint32(tm.UserTypeId)
	}
	for _, f := range tm.Fields {
		encodeFieldInfo(buf, f)
	}
}

func decodeTypeMetaBody(buf *ByteBuffer, err *Error) *TypeMeta {
	tm := &TypeMeta{}
	b0 := buf.ReadUint8(err)
	tm.RegisterByName = b0&0x20 != 0
	n := int(b0 & 0x1F)
	if n == 0x1F {
		n += int(buf.ReadVarUint32(err))
	}
	if tm.RegisterByName {
		tm.Namespace = readMetaString(buf, err)
		tm.TypeName = readMetaString(buf, err)
	} else {
		tm.UserTypeId = buf.ReadVarUint32(err)
	}
	if err.HasError() {
		return tm
	}
	tm.Fields = make([]TypeMetaFieldInfo, 0, n)
	for i := 0; i < n; i++ {
		if err.HasError() {
			break
		}
		tm.Fields = append(tm.Fields, decodeFieldInfo(buf, err))
	}
	return tm
}

const (
	typeMetaCompressedFlag    = 0x1
	typeMetaHasFieldsMetaFlag = 0x2
	typeMetaSizeExtSentinel   = 0xFF
)

// writeTypeMeta emits `header(u64) [size-ext(varuint)] body`. compressed is
// always false: the spec rejects compressed TypeMeta as EncodingError,
// since the compression scheme itself is out of scope.
func writeTypeMeta(buf *ByteBuffer, tm *TypeMeta) {
	body := NewByteBuffer(nil)
	encodeTypeMetaBody(body, tm)
	payload := body.GetData()
	hash := bodyHash50(payload)
	size := len(payload)
	sizeField := size
	ext := sizeField >= typeMetaSizeExtSentinel
	if ext {
		sizeField = typeMetaSizeExtSentinel
	}
	header := (hash << 14) | int64(sizeField<<2) | typeMetaHasFieldsMetaFlag
	buf.WriteInt64(header)
	if ext {
		buf.WriteVarUint32(uint32(size - typeMetaSizeExtSentinel))
	}
	buf.Write(payload)
}

func readTypeMeta(buf *ByteBuffer, err *Error) *TypeMeta {
	header := buf.ReadInt64(err)
	if err.HasError() {
		return nil
	}
	if header&typeMetaCompressedFlag != 0 {
		err.Set(ErrKindEncodingError, "compressed TypeMeta is not supported")
		return nil
	}
	size := int((header >> 2) & 0xFF)
	if size == typeMetaSizeExtSentinel {
		size += int(buf.ReadVarUint32(err))
	}
	_ = size // body self-delimits via its own field/name encoding; size is a hint
	return decodeTypeMetaBody(buf, err)
}

// verifyTypeMetaHash recomputes the body hash over a freshly re-encoded
// TypeMeta and compares it against the header's stored hash.
func verifyTypeMetaHash(header int64, tm *TypeMeta) bool {
	body := NewByteBuffer(nil)
	encodeTypeMetaBody(body, tm)
	return bodyHash50(body.GetData())<<14 == header&^0x3FFF
}
