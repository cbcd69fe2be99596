// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta

import (
	"encoding/binary"
)

// byteReader reads binary data from an immutable, caller owned buffer.
// All offsets are relative to the start of b.
// The byte order is set once, when the header is parsed, and never changed.
type byteReader struct {
	b         []byte
	byteOrder binary.ByteOrder
}

func newByteReader(b []byte, byteOrder binary.ByteOrder) byteReader {
	return byteReader{b: b, byteOrder: byteOrder}
}

func (r byteReader) len() int {
	return len(r.b)
}

// inRange reports whether [off, off+n) is within the buffer.
// The arithmetic is done in int64 so a 32-bit offset read from the data
// can never overflow.
func (r byteReader) inRange(off, n int64) bool {
	return off >= 0 && n >= 0 && off+n <= int64(len(r.b))
}

// bytes returns a sub slice of the buffer. The slice is not copied.
func (r byteReader) bytes(off, n int64) ([]byte, error) {
	if !r.inRange(off, n) {
		return nil, newInvalidFormatErrorf("range [%d:%d] out of bounds (%d)", off, off+n, len(r.b))
	}
	return r.b[off : off+n : off+n], nil
}

// sub returns a reader limited to [off, off+n) sharing the same byte order.
func (r byteReader) sub(off, n int64) (byteReader, error) {
	b, err := r.bytes(off, n)
	if err != nil {
		return byteReader{}, err
	}
	return byteReader{b: b, byteOrder: r.byteOrder}, nil
}

func (r byteReader) read1(off int64) (uint8, error) {
	b, err := r.bytes(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r byteReader) read2(off int64) (uint16, error) {
	const n = 2
	b, err := r.bytes(off, n)
	if err != nil {
		return 0, err
	}
	return r.byteOrder.Uint16(b), nil
}

func (r byteReader) read2s(off int64) (int16, error) {
	v, err := r.read2(off)
	return int16(v), err
}

func (r byteReader) read4(off int64) (uint32, error) {
	const n = 4
	b, err := r.bytes(off, n)
	if err != nil {
		return 0, err
	}
	return r.byteOrder.Uint32(b), nil
}

func (r byteReader) read4s(off int64) (int32, error) {
	v, err := r.read4(off)
	return int32(v), err
}

// readU8Fixed8 reads an unsigned 8.8 fixed point number.
func (r byteReader) readU8Fixed8(off int64) (float64, error) {
	v, err := r.read2(off)
	if err != nil {
		return 0, err
	}
	return float64(v) / 256, nil
}

// readS15Fixed16 reads a signed 15.16 fixed point number.
func (r byteReader) readS15Fixed16(off int64) (float64, error) {
	v, err := r.read4s(off)
	if err != nil {
		return 0, err
	}
	return float64(v) / 65536, nil
}

// fourCC reads a 4 byte signature. Signatures are always big endian.
func (r byteReader) fourCC(off int64) (fourCC, error) {
	b, err := r.bytes(off, 4)
	if err != nil {
		return 0, err
	}
	return fourCC(binary.BigEndian.Uint32(b)), nil
}

// fourCC is a 4 byte ICC signature, e.g. 'desc' or 'mluc'.
type fourCC uint32

func (f fourCC) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(f))
	return printableString(string(b[:]))
}
