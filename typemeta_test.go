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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeMetaRoundTripByID(t *testing.T) {
	tm := &TypeMeta{
		UserTypeId: 42,
		Fields: []TypeMetaFieldInfo{
			{Name: "a", FieldType: TypeMetaFieldType{TypeId: INT32}},
			{Name: "b", FieldType: TypeMetaFieldType{TypeId: STRING, Nullable: true}},
			{Name: "c", FieldType: TypeMetaFieldType{
				TypeId:   LIST,
				Generics: []TypeMetaFieldType{{TypeId: STRING}},
			}},
		},
	}

	buf := NewByteBuffer(nil)
	writeTypeMeta(buf, tm)

	buf.SetReaderIndex(0)
	err := &Error{}
	got := readTypeMeta(buf, err)
	require.False(t, err.HasError())
	require.NotNil(t, got)

	require.Equal(t, tm.RegisterByName, got.RegisterByName)
	require.Equal(t, tm.UserTypeId, got.UserTypeId)
	require.Len(t, got.Fields, len(tm.Fields))
	for i, f := range tm.Fields {
		require.Equal(t, f.Name, got.Fields[i].Name)
		require.Equal(t, f.FieldType.TypeId, got.Fields[i].FieldType.TypeId)
		require.Equal(t, f.FieldType.Nullable, got.Fields[i].FieldType.Nullable)
		require.Len(t, got.Fields[i].FieldType.Generics, len(f.FieldType.Generics))
	}
}

func TestTypeMetaRoundTripByName(t *testing.T) {
	tm := &TypeMeta{
		RegisterByName: true,
		Namespace:      "pkg",
		TypeName:       "Widget",
		Fields: []TypeMetaFieldInfo{
			{Name: "count", FieldType: TypeMetaFieldType{TypeId: VAR_INT64}},
		},
	}

	buf := NewByteBuffer(nil)
	writeTypeMeta(buf, tm)
	buf.SetReaderIndex(0)

	err := &Error{}
	got := readTypeMeta(buf, err)
	require.False(t, err.HasError())
	require.True(t, got.RegisterByName)
	require.Equal(t, "pkg", got.Namespace)
	require.Equal(t, "Widget", got.TypeName)
	require.Len(t, got.Fields, 1)
	require.Equal(t, "count", got.Fields[0].Name)
}

func TestTypeMetaManyFieldsTriggersSizeExtension(t *testing.T) {
	tm := &TypeMeta{UserTypeId: 1}
	for i := 0; i < 40; i++ {
		tm.Fields = append(tm.Fields, TypeMetaFieldInfo{
			Name:      "f" + string(rune('a'+i%26)) + uitoa(uint32(i)),
			FieldType: TypeMetaFieldType{TypeId: INT32},
		})
	}

	buf := NewByteBuffer(nil)
	writeTypeMeta(buf, tm)
	buf.SetReaderIndex(0)

	err := &Error{}
	got := readTypeMeta(buf, err)
	require.False(t, err.HasError())
	require.Len(t, got.Fields, 40)
}

func TestTypeMetaCompressedRejected(t *testing.T) {
	tm := &TypeMeta{UserTypeId: 7}
	buf := NewByteBuffer(nil)
	writeTypeMeta(buf, tm)

	// flip the compressed bit that writeTypeMeta never sets, to exercise the
	// reader's rejection path (§4.3: compressed meta is out of scope).
	data := append([]byte(nil), buf.GetData()...)
	data[0] |= typeMetaCompressedFlag
	tampered := NewByteBuffer(data)

	err := &Error{}
	got := readTypeMeta(tampered, err)
	require.True(t, err.HasError())
	require.Equal(t, ErrKindEncodingError, err.Kind())
	require.Nil(t, got)
}
