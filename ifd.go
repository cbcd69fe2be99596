// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta

import (
	"math"
	"strings"
	"unicode"
)

const (
	ifdEntrySize      = 12
	ifdCountSize      = 2
	ifdNextOffsetSize = 4
)

// A tag is represented in 12 bytes:
//   - 2 bytes for the tag ID
//   - 2 bytes for the data type
//   - 4 bytes for the number of data values of the specified type
//   - 4 bytes for the value itself, if it fits, otherwise for a pointer to another location where the data may be found;
//     this could be a pointer to the beginning of another IFD.
type ifdEntry struct {
	tag   uint16
	typ   exifType
	count uint32

	// valuePos is the position of the 4 byte value field relative to the TIFF header.
	valuePos int64
}

type ifd struct {
	entries []ifdEntry
	// next is the offset of the next IFD, 0 if none.
	next uint32
}

func (f ifd) find(tag uint16) (ifdEntry, bool) {
	for _, e := range f.entries {
		if e.tag == tag {
			return e, true
		}
	}
	return ifdEntry{}, false
}

// readIFD reads the directory at offset, relative to the TIFF header in r.
func (d *Decoder) readIFD(r byteReader, offset uint32, namespace string) (ifd, error) {
	var f ifd
	numTags, err := r.read2(int64(offset))
	if err != nil {
		return f, err
	}
	if uint32(numTags) > d.opts.LimitNumIFDEntries {
		d.opts.Warnf("exif: %s: entry count %d exceeds limit %d", namespace, numTags, d.opts.LimitNumIFDEntries)
		return f, newInvalidFormatErrorf("exif: %s: entry count %d exceeds limit %d", namespace, numTags, d.opts.LimitNumIFDEntries)
	}

	start := int64(offset) + ifdCountSize
	tableLen := int64(numTags) * ifdEntrySize
	if !r.inRange(start, tableLen+ifdNextOffsetSize) {
		return f, newInvalidFormatErrorf("exif: %s: directory with %d entries exceeds buffer", namespace, numTags)
	}

	f.entries = make([]ifdEntry, numTags)
	for i := range f.entries {
		pos := start + int64(i)*ifdEntrySize
		tag, _ := r.read2(pos)
		typ, _ := r.read2(pos + 2)
		count, _ := r.read4(pos + 4)
		f.entries[i] = ifdEntry{
			tag:      tag,
			typ:      exifType(typ),
			count:    count,
			valuePos: pos + 8,
		}
	}
	f.next, _ = r.read4(start + tableLen)

	return f, nil
}

// valueBytes resolves the raw value bytes of e.
// Values up to 4 bytes are stored inline in the entry; larger values are
// stored at an offset relative to the TIFF header.
func (d *Decoder) valueBytes(r byteReader, e ifdEntry) ([]byte, error) {
	size, ok := exifTypeSize[e.typ]
	if !ok {
		return nil, newInvalidFormatErrorf("exif: unknown EXIF type %d for tag 0x%04x", e.typ, e.tag)
	}
	if e.count == 0 {
		return nil, newNotFoundErrorf("exif: tag 0x%04x has no values", e.tag)
	}
	valLen := int64(size) * int64(e.count)
	if valLen <= 4 {
		return r.bytes(e.valuePos, valLen)
	}
	if valLen > int64(d.opts.LimitTagSize) {
		return nil, newInvalidFormatErrorf("exif: tag 0x%04x size %d exceeds limit %d", e.tag, valLen, d.opts.LimitTagSize)
	}
	valueOffset, err := r.read4(e.valuePos)
	if err != nil {
		return nil, err
	}
	return r.bytes(int64(valueOffset), valLen)
}

func (d *Decoder) asString(r byteReader, e ifdEntry) (string, error) {
	if e.typ != exifTypeUnsignedASCII {
		return "", newInvalidFormatErrorf("exif: tag 0x%04x: expected ASCII, got %s", e.tag, e.typ)
	}
	b, err := d.valueBytes(r, e)
	if err != nil {
		return "", err
	}
	s := strings.TrimRightFunc(toString(trimTrailingNulls(b)), unicode.IsSpace)
	if s == "" {
		return "", newNotFoundErrorf("exif: tag 0x%04x is empty", e.tag)
	}
	return s, nil
}

// asUint reads the first value of an unsigned integer entry.
// LONG tags are also accepted when written as SHORT or BYTE.
func (d *Decoder) asUint(r byteReader, e ifdEntry) (uint32, error) {
	switch e.typ {
	case exifTypeUnsignedByte, exifTypeUndef, exifTypeUnsignedShort, exifTypeUnsignedLong:
	default:
		return 0, newInvalidFormatErrorf("exif: tag 0x%04x: expected unsigned integer, got %s", e.tag, e.typ)
	}
	b, err := d.valueBytes(r, e)
	if err != nil {
		return 0, err
	}
	vr := newByteReader(b, r.byteOrder)
	switch e.typ {
	case exifTypeUnsignedShort:
		v, err := vr.read2(0)
		return uint32(v), err
	case exifTypeUnsignedLong:
		return vr.read4(0)
	default:
		v, err := vr.read1(0)
		return uint32(v), err
	}
}

// asInt reads the first value of a signed integer entry.
func (d *Decoder) asInt(r byteReader, e ifdEntry) (int32, error) {
	switch e.typ {
	case exifTypeSignedShort:
		b, err := d.valueBytes(r, e)
		if err != nil {
			return 0, err
		}
		v, err := newByteReader(b, r.byteOrder).read2s(0)
		return int32(v), err
	case exifTypeSignedLong:
		b, err := d.valueBytes(r, e)
		if err != nil {
			return 0, err
		}
		return newByteReader(b, r.byteOrder).read4s(0)
	default:
		v, err := d.asUint(r, e)
		return int32(v), err
	}
}

func (d *Decoder) asRats(r byteReader, e ifdEntry, n int) ([]Rat[uint32], error) {
	if e.typ != exifTypeUnsignedRat {
		return nil, newInvalidFormatErrorf("exif: tag 0x%04x: expected RATIONAL, got %s", e.tag, e.typ)
	}
	if e.count < uint32(n) {
		return nil, newInvalidFormatErrorf("exif: tag 0x%04x: expected %d values, got %d", e.tag, n, e.count)
	}
	b, err := d.valueBytes(r, e)
	if err != nil {
		return nil, err
	}
	vr := newByteReader(b, r.byteOrder)
	rats := make([]Rat[uint32], n)
	for i := range rats {
		num, err := vr.read4(int64(i) * 8)
		if err != nil {
			return nil, err
		}
		den, err := vr.read4(int64(i)*8 + 4)
		if err != nil {
			return nil, err
		}
		rats[i] = NewRat(num, den)
	}
	return rats, nil
}

func (d *Decoder) asRat(r byteReader, e ifdEntry) (Rat[uint32], error) {
	rats, err := d.asRats(r, e, 1)
	if err != nil {
		return Rat[uint32]{}, err
	}
	return rats[0], nil
}

// asSRat reads a signed rational. Some encoders write unsigned rationals
// for signed fields, those are accepted as long as they fit.
func (d *Decoder) asSRat(r byteReader, e ifdEntry) (Rat[int32], error) {
	switch e.typ {
	case exifTypeSignedRat, exifTypeUnsignedRat:
	default:
		return Rat[int32]{}, newInvalidFormatErrorf("exif: tag 0x%04x: expected SRATIONAL, got %s", e.tag, e.typ)
	}
	b, err := d.valueBytes(r, e)
	if err != nil {
		return Rat[int32]{}, err
	}
	vr := newByteReader(b, r.byteOrder)
	num, err := vr.read4(0)
	if err != nil {
		return Rat[int32]{}, err
	}
	den, err := vr.read4(4)
	if err != nil {
		return Rat[int32]{}, err
	}
	if e.typ == exifTypeUnsignedRat && (num > math.MaxInt32 || den > math.MaxInt32) {
		return Rat[int32]{}, newInvalidFormatErrorf("exif: tag 0x%04x: RATIONAL %d/%d overflows SRATIONAL", e.tag, num, den)
	}
	return NewRat(int32(num), int32(den)), nil
}
