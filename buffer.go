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
	"encoding/binary"
	"math"
)

// MaxInt32 bounds slice/array lengths that must round-trip through a signed
// 32-bit length prefix on other Fory language ports.
const MaxInt32 = int(^uint32(0) >> 1)

// ByteBuffer is the little-endian, growable read/write cursor every codec in
// this package is built on top of. Fixed-width reads record an OutOfBounds
// error on the supplied accumulator and return the zero value instead of
// panicking; callers check HasError opportunistically rather than after every
// single read.
type ByteBuffer struct {
	data        []byte
	readerIndex int
	writerIndex int
}

// NewByteBuffer wraps an existing slice for reading, or starts a fresh
// zero-length buffer for writing when data is nil.
func NewByteBuffer(data []byte) *ByteBuffer {
	return &ByteBuffer{data: data, writerIndex: len(data)}
}

func (b *ByteBuffer) ReaderIndex() int { return b.readerIndex }
func (b *ByteBuffer) WriterIndex() int { return b.writerIndex }

func (b *ByteBuffer) SetReaderIndex(i int) { b.readerIndex = i }
func (b *ByteBuffer) SetWriterIndex(i int) { b.writerIndex = i }

func (b *ByteBuffer) remaining() int { return b.writerIndex - b.readerIndex }

// MoveBack rewinds the reader cursor by n bytes.
func (b *ByteBuffer) MoveBack(n int) { b.readerIndex -= n }

func (b *ByteBuffer) GetData() []byte { return b.data[:b.writerIndex] }

func (b *ByteBuffer) checkBound(err *Error, n int) bool {
	if b.remaining() < n {
		err.SetOutOfBounds(b.readerIndex, n, b.writerIndex)
		return false
	}
	return true
}

// Reserve grows the backing array so the next n bytes can be appended without
// repeated reallocation; it does not advance writerIndex.
func (b *ByteBuffer) Reserve(n int) {
	need := b.writerIndex + n
	if cap(b.data) >= need {
		return
	}
	grown := make([]byte, len(b.data), need*2+16)
	copy(grown, b.data)
	b.data = grown
}

func (b *ByteBuffer) grow(n int) []byte {
	b.Reserve(n)
	if b.writerIndex+n > len(b.data) {
		b.data = b.data[:b.writerIndex+n]
	}
	start := b.writerIndex
	b.writerIndex += n
	return b.data[start:b.writerIndex]
}

// Write appends raw bytes verbatim.
func (b *ByteBuffer) Write(p []byte) {
	copy(b.grow(len(p)), p)
}

func (b *ByteBuffer) WriteByte_(v byte) {
	b.grow(1)[0] = v
}

// SetByte back-patches a single already-written byte, used for chunk-size
// back-patching in the map codec.
func (b *ByteBuffer) SetByte(index int, v byte) {
	b.data[index] = v
}

func (b *ByteBuffer) SetBytes(index int, p []byte) {
	copy(b.data[index:], p)
}

func (b *ByteBuffer) ReadByte() (byte, error) {
	if b.remaining() < 1 {
		return 0, OutOfBoundsError(b.readerIndex, 1, b.writerIndex)
	}
	v := b.data[b.readerIndex]
	b.readerIndex++
	return v, nil
}

// ---- fixed width ----

func (b *ByteBuffer) WriteBool(v bool) {
	if v {
		b.WriteByte_(1)
	} else {
		b.WriteByte_(0)
	}
}

func (b *ByteBuffer) ReadBool(err *Error) bool {
	if !b.checkBound(err, 1) {
		return false
	}
	v := b.data[b.readerIndex] != 0
	b.readerIndex++
	return v
}

func (b *ByteBuffer) WriteInt8(v int8) { b.WriteByte_(byte(v)) }

func (b *ByteBuffer) ReadInt8(err *Error) int8 {
	if !b.checkBound(err, 1) {
		return 0
	}
	v := int8(b.data[b.readerIndex])
	b.readerIndex++
	return v
}

func (b *ByteBuffer) WriteUint8(v uint8) { b.WriteByte_(v) }

func (b *ByteBuffer) ReadUint8(err *Error) uint8 {
	if !b.checkBound(err, 1) {
		return 0
	}
	v := b.data[b.readerIndex]
	b.readerIndex++
	return v
}

func (b *ByteBuffer) WriteInt16(v int16) { binary.LittleEndian.PutUint16(b.grow(2), uint16(v)) }

func (b *ByteBuffer) ReadInt16(err *Error) int16 {
	if !b.checkBound(err, 2) {
		return 0
	}
	v := int16(binary.LittleEndian.Uint16(b.data[b.readerIndex:]))
	b.readerIndex += 2
	return v
}

func (b *ByteBuffer) WriteUint16(v uint16) { binary.LittleEndian.PutUint16(b.grow(2), v) }

func (b *ByteBuffer) ReadUint16(err *Error) uint16 {
	if !b.checkBound(err, 2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(b.data[b.readerIndex:])
	b.readerIndex += 2
	return v
}

func (b *ByteBuffer) WriteInt32(v int32) { binary.LittleEndian.PutUint32(b.grow(4), uint32(v)) }

func (b *ByteBuffer) ReadInt32(err *Error) int32 {
	if !b.checkBound(err, 4) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(b.data[b.readerIndex:]))
	b.readerIndex += 4
	return v
}

func (b *ByteBuffer) WriteUint32(v uint32) { binary.LittleEndian.PutUint32(b.grow(4), v) }

func (b *ByteBuffer) ReadUint32(err *Error) uint32 {
	if !b.checkBound(err, 4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(b.data[b.readerIndex:])
	b.readerIndex += 4
	return v
}

func (b *ByteBuffer) WriteInt64(v int64) { binary.LittleEndian.PutUint64(b.grow(8), uint64(v)) }

func (b *ByteBuffer) ReadInt64(err *Error) int64 {
	if !b.checkBound(err, 8) {
		return 0
	}
	v := int64(binary.LittleEndian.Uint64(b.data[b.readerIndex:]))
	b.readerIndex += 8
	return v
}

func (b *ByteBuffer) WriteUint64(v uint64) { binary.LittleEndian.PutUint64(b.grow(8), v) }

func (b *ByteBuffer) ReadUint64(err *Error) uint64 {
	if !b.checkBound(err, 8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(b.data[b.readerIndex:])
	b.readerIndex += 8
	return v
}

func (b *ByteBuffer) WriteFloat32(v float32) { b.WriteUint32(math.Float32bits(v)) }

func (b *ByteBuffer) ReadFloat32(err *Error) float32 {
	return math.Float32frombits(b.ReadUint32(err))
}

func (b *ByteBuffer) WriteFloat64(v float64) { b.WriteUint64(math.Float64bits(v)) }

func (b *ByteBuffer) ReadFloat64(err *Error) float64 {
	return math.Float64frombits(b.ReadUint64(err))
}

// ---- varint / zigzag / tagged ----

// WriteVarUint32 is standard unsigned LEB128, capped at 5 bytes.
func (b *ByteBuffer) WriteVarUint32(v uint32) {
	for v >= 0x80 {
		b.WriteByte_(byte(v) | 0x80)
		v >>= 7
	}
	b.WriteByte_(byte(v))
}

func (b *ByteBuffer) ReadVarUint32(err *Error) uint32 {
	var result uint32
	var shift uint
	for i := 0; i < 5; i++ {
		if !b.checkBound(err, 1) {
			return 0
		}
		byt := b.data[b.readerIndex]
		b.readerIndex++
		result |= uint32(byt&0x7F) << shift
		if byt&0x80 == 0 {
			return result
		}
		shift += 7
	}
	err.Set(ErrKindEncodingError, "varuint32 too long")
	return 0
}

// WriteVaruint32Small7 is the same wire format as WriteVarUint32; kept as a
// distinct name because callers reach for it at sites where the value is
// known to usually fit in a single byte (TypeMeta/field headers).
func (b *ByteBuffer) WriteVaruint32Small7(v uint32) { b.WriteVarUint32(v) }

func (b *ByteBuffer) ReadVaruint32Small7(err *Error) uint32 { return b.ReadVarUint32(err) }

// WriteVarUint64 is standard unsigned LEB128 for 64-bit values. The last of 9
// groups carries the remaining 8 bits raw with no continuation bit, per the
// byte codec contract in the spec.
func (b *ByteBuffer) WriteVarUint64(v uint64) {
	for i := 0; i < 8; i++ {
		if v>>7 == 0 {
			b.WriteByte_(byte(v))
			return
		}
		b.WriteByte_(byte(v)|0x80)
		v >>= 7
	}
	b.WriteByte_(byte(v))
}

func (b *ByteBuffer) ReadVarUint64(err *Error) uint64 {
	var result uint64
	var shift uint
	for i := 0; i < 9; i++ {
		if !b.checkBound(err, 1) {
			return 0
		}
		byt := b.data[b.readerIndex]
		b.readerIndex++
		if i == 8 {
			result |= uint64(byt) << shift
			return result
		}
		result |= uint64(byt&0x7F) << shift
		if byt&0x80 == 0 {
			return result
		}
		shift += 7
	}
	return result
}

func zigzag32(v int32) uint32 { return uint32((v << 1) ^ (v >> 31)) }
func unzigzag32(v uint32) int32 { return int32(v>>1) ^ -int32(v&1) }
func zigzag64(v int64) uint64 { return uint64((v << 1) ^ (v >> 63)) }
func unzigzag64(v uint64) int64 { return int64(v>>1) ^ -int64(v&1) }

func (b *ByteBuffer) WriteVarint32(v int32) { b.WriteVarUint32(zigzag32(v)) }
func (b *ByteBuffer) ReadVarint32(err *Error) int32 { return unzigzag32(b.ReadVarUint32(err)) }

func (b *ByteBuffer) WriteVarint64(v int64) { b.WriteVarUint64(zigzag64(v)) }
func (b *ByteBuffer) ReadVarint64(err *Error) int64 { return unzigzag64(b.ReadVarUint64(err)) }

// WriteVarUint36Small packs a value that must fit in 36 bits (the string
// header is (byteLen<<2)|encoding, so byteLen effectively uses 34 bits), with
// an explicit overflow check at 2^36 as required by the spec.
func (b *ByteBuffer) WriteVarUint36Small(v uint64, err *Error) {
	if v>>36 != 0 {
		err.Set(ErrKindEncodingError, "value exceeds varuint36small range")
		return
	}
	b.WriteVarUint64(v)
}

func (b *ByteBuffer) ReadVarUint36Small(err *Error) uint64 {
	return b.ReadVarUint64(err)
}

// WriteTaggedInt64/WriteTaggedUint64: if the value fits in 31 bits it is
// packed as `value<<1` in a fixed 4-byte little-endian word (low bit 0);
// otherwise a single 0x01 marker byte followed by the full 8-byte value.
func (b *ByteBuffer) WriteTaggedInt64(v int64) {
	if v >= -(1<<30) && v <= (1<<30)-1 {
		b.WriteUint32(uint32(v) << 1)
		return
	}
	b.WriteByte_(0x01)
	b.WriteInt64(v)
}

func (b *ByteBuffer) ReadTaggedInt64(err *Error) int64 {
	if !b.checkBound(err, 4) {
		return 0
	}
	first := b.data[b.readerIndex]
	if first&0x01 != 0 {
		b.readerIndex++
		return b.ReadInt64(err)
	}
	v := b.ReadUint32(err)
	return int64(int32(v) >> 1)
}

func (b *ByteBuffer) WriteTaggedUint64(v uint64) {
	if v <= (1<<31)-1 {
		b.WriteUint32(uint32(v) << 1)
		return
	}
	b.WriteByte_(0x01)
	b.WriteUint64(v)
}

func (b *ByteBuffer) ReadTaggedUint64(err *Error) uint64 {
	if !b.checkBound(err, 4) {
		return 0
	}
	first := b.data[b.readerIndex]
	if first&0x01 != 0 {
		b.readerIndex++
		return b.ReadUint64(err)
	}
	v := b.ReadUint32(err)
	return uint64(v >> 1)
}

// ---- length-prefixed helpers ----

// WriteLength writes a count as an unsigned varint; Fory reserves the wire
// concept of a signed i32 length but every container in this package is
// non-negative so varuint32 is used directly.
func (b *ByteBuffer) WriteLength(n int) { b.WriteVarUint32(uint32(n)) }

func (b *ByteBuffer) ReadLength(err *Error) int { return int(b.ReadVarUint32(err)) }

func (b *ByteBuffer) WriteBinary(p []byte) {
	b.WriteVarUint32(uint32(len(p)))
	b.Write(p)
}

func (b *ByteBuffer) ReadBinary(err *Error) []byte {
	n := int(b.ReadVarUint32(err))
	if err.HasError() || !b.checkBound(err, n) {
		return nil
	}
	out := make([]byte, n)
	copy(out, b.data[b.readerIndex:b.readerIndex+n])
	b.readerIndex += n
	return out
}

// ReadSpan returns a zero-copy view of the next n bytes without advancing the
// cursor state beyond them; callers that need to retain it must copy.
func (b *ByteBuffer) ReadSpan(n int, err *Error) []byte {
	if !b.checkBound(err, n) {
		return nil
	}
	span := b.data[b.readerIndex : b.readerIndex+n]
	b.readerIndex += n
	return span
}

func (b *ByteBuffer) Skip(n int, err *Error) {
	if !b.checkBound(err, n) {
		return
	}
	b.readerIndex += n
}
