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

// MetaStringEncoding names one of the compression schemes a namespace,
// type name or field name may be packed with. The core treats MetaString
// compression as an opaque collaborator; this file
// provides the minimal oracle the TypeMeta codec needs and does not attempt
// the full MetaString compression scheme (lower-special / upper-camel /
// packed-digits) that the outer Fory implementations use to shrink common
// identifiers.
type MetaStringEncoding uint8

const (
	MetaStringEncodingUtf8 MetaStringEncoding = iota
	MetaStringEncodingLowerSpecial
	MetaStringEncodingAllToLowerSpecial
)

// MetaString is an encoded (namespace, type name, field name) payload plus
// the encoding tag it was packed with.
type MetaString struct {
	Encoding MetaStringEncoding
	Bytes    []byte
}

// EncodeMetaString is the write-side oracle: every value round-trips through
// plain UTF-8. A fuller implementation would choose the tightest of the three
// encodings per string; since MetaString compression itself is out of scope
// for this core, UTF-8 is always correct and always legal.
func EncodeMetaString(s string) MetaString {
	return MetaString{Encoding: MetaStringEncodingUtf8, Bytes: []byte(s)}
}

// DecodeMetaString is the read-side oracle's inverse.
func DecodeMetaString(ms MetaString) string {
	return string(ms.Bytes)
}

func writeMetaString(buf *ByteBuffer, s string) {
	ms := EncodeMetaString(s)
	buf.WriteVarUint32(uint32(len(ms.Bytes)))
	buf.WriteByte_(byte(ms.Encoding))
	buf.Write(ms.Bytes)
}

func readMetaString(buf *ByteBuffer, err *Error) string {
	n := int(buf.ReadVarUint32(err))
	if err.HasError() {
		return ""
	}
	enc := MetaStringEncoding(buf.ReadUint8(err))
	if err.HasError() {
		return ""
	}
	data := buf.ReadSpan(n, err)
	if err.HasError() {
		return ""
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return DecodeMetaString(MetaString{Encoding: enc, Bytes: cp})
}
