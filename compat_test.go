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

type compatWriterShape struct {
	A int32
	B string
}

type compatReaderShape struct {
	A int32
}

// TestCompatibleStructDropsUnknownField exercises a writer and reader that
// register different Go shapes under the same user type id (§8 "Schema
// evolution"): the writer's extra field B must be consumed and discarded by
// the field skipper rather than confusing the reader's decode of A.
func TestCompatibleStructDropsUnknownField(t *testing.T) {
	writer := New()
	require.NoError(t, writer.Register(&compatWriterShape{}, 9))

	data, err := writer.Marshal(&compatWriterShape{A: 42, B: "dropped"})
	require.NoError(t, err)

	reader := New()
	require.NoError(t, reader.Register(&compatReaderShape{}, 9))

	var got compatReaderShape
	require.NoError(t, reader.Unmarshal(data, &got))
	require.Equal(t, int32(42), got.A)
}

// TestMapChunkedRoundTrip drives map.go's Write past a single 255-entry
// chunk boundary (§4.8 "Map chunk accounting") so the round trip only
// succeeds if the reader's declared-type chunk loop consumes exactly the
// number of entries each chunk header claims.
func TestMapChunkedRoundTrip(t *testing.T) {
	f := New()

	const n = 300
	in := make(map[string]int32, n)
	for i := 0; i < n; i++ {
		in[string(rune('a'+i%26))+string(rune('A'+i/26))] = int32(i)
	}

	data, err := f.Marshal(in)
	require.NoError(t, err)

	var out map[string]int32
	require.NoError(t, f.Unmarshal(data, &out))
	require.Equal(t, in, out)
}
