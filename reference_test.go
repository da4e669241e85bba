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
	"testing"

	"github.com/stretchr/testify/require"
)

type refLeaf struct {
	Value int32
}

type refNode struct {
	Name string
	Next *refNode `fory:",ref"`
}

func TestMarshalUnmarshalStructRoundTrip(t *testing.T) {
	f := New()
	require.NoError(t, f.Register(&refLeaf{}, 1))

	data, err := f.Marshal(&refLeaf{Value: 7})
	require.NoError(t, err)

	var got refLeaf
	require.NoError(t, f.Unmarshal(data, &got))
	require.Equal(t, int32(7), got.Value)
}

// TestSelfReferentialPointerCycle exercises §8 "Cycle support": a node whose
// ref-tracked pointer field points back at itself must round-trip to a node
// whose field points at itself by identity, not a second copy.
func TestSelfReferentialPointerCycle(t *testing.T) {
	f := New(WithTrackRef(true))
	require.NoError(t, f.Register(&refNode{}, 1))

	n := &refNode{Name: "root"}
	n.Next = n

	data, err := f.Marshal(n)
	require.NoError(t, err)

	var got *refNode
	require.NoError(t, f.Unmarshal(data, &got))
	require.NotNil(t, got)
	require.Equal(t, "root", got.Name)
	require.True(t, got == got.Next, "Next must point back at the same node, not a copy")
}

// TestSelfReferentialMap exercises §8 Scenario 5 directly: a
// map[string]interface{} whose own value holds the map itself. Without
// routing dynamic map values through writeValue/readValue for depth counting
// and ref tracking, this recurses without bound; here it must round-trip to
// a map whose "self" entry points back at the same map, not hang or crash.
func TestSelfReferentialMap(t *testing.T) {
	f := New(WithTrackRef(true))

	m := map[string]interface{}{"name": "root"}
	m["self"] = m

	data, err := f.Marshal(m)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, f.Unmarshal(data, &got))
	require.Equal(t, "root", got["name"])
	gotSelf, ok := got["self"].(map[string]interface{})
	require.True(t, ok, "self entry must decode back into a map[string]interface{}")
	require.True(t, reflect.ValueOf(gotSelf).Pointer() == reflect.ValueOf(got).Pointer(),
		"self must point back at the same map, not a copy")
}
