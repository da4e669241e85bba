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

import "github.com/spaolacci/murmur3"

// murmurSeed is the fixed seed used for every body hash in this protocol.
const murmurSeed = 47

// bodyHash50 computes the 50-bit TypeMeta body hash: the low 64 bits of the
// x64-128 variant of MurmurHash3 over body, seeded with murmurSeed, shifted
// left 14 bits and made non-negative so it packs into the header's top bits
// alongside the two flag bits and the size byte.
func bodyHash50(body []byte) int64 {
	h1, _ := murmur3.Sum128WithSeed(body, murmurSeed)
	h := int64(h1) << 14
	if h < 0 {
		h = -h
	}
	return h
}
