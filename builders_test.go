// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta_test

import (
	"encoding/binary"
	"math"

	xunicode "golang.org/x/text/encoding/unicode"
)

// tiffBuilder builds synthetic EXIF payloads.
type tiffBuilder struct {
	bo    binary.ByteOrder
	ifds  []*tiffIFD
	blobs []*tiffBlob
}

type tiffIFD struct {
	b       *tiffBuilder
	entries []tiffEntry
	next    *tiffIFD
	offset  uint32
}

type tiffEntry struct {
	tag, typ   uint16
	count      uint32
	data       []byte
	ref        func() uint32
	dataOffset uint32
}

type tiffBlob struct {
	data   []byte
	offset uint32
}

func newTIFFBuilder(bo binary.ByteOrder) *tiffBuilder {
	return &tiffBuilder{bo: bo}
}

// ifd adds a new directory. The first one added is IFD0.
func (b *tiffBuilder) ifd() *tiffIFD {
	f := &tiffIFD{b: b}
	b.ifds = append(b.ifds, f)
	return f
}

func (b *tiffBuilder) blob(data []byte) *tiffBlob {
	bl := &tiffBlob{data: data}
	b.blobs = append(b.blobs, bl)
	return bl
}

func (f *tiffIFD) add(tag, typ uint16, count uint32, data []byte) *tiffIFD {
	f.entries = append(f.entries, tiffEntry{tag: tag, typ: typ, count: count, data: data})
	return f
}

// ascii adds a NUL terminated string.
func (f *tiffIFD) ascii(tag uint16, s string) *tiffIFD {
	data := append([]byte(s), 0)
	return f.add(tag, 2, uint32(len(data)), data)
}

// asciiRaw adds a string without the NUL terminator.
func (f *tiffIFD) asciiRaw(tag uint16, s string) *tiffIFD {
	return f.add(tag, 2, uint32(len(s)), []byte(s))
}

func (f *tiffIFD) byte1(tag uint16, v uint8) *tiffIFD {
	return f.add(tag, 1, 1, []byte{v})
}

func (f *tiffIFD) short(tag uint16, v uint16) *tiffIFD {
	data := make([]byte, 2)
	f.b.bo.PutUint16(data, v)
	return f.add(tag, 3, 1, data)
}

func (f *tiffIFD) long(tag uint16, v uint32) *tiffIFD {
	data := make([]byte, 4)
	f.b.bo.PutUint32(data, v)
	return f.add(tag, 4, 1, data)
}

// rational adds num/den pairs.
func (f *tiffIFD) rational(tag uint16, pairs ...uint32) *tiffIFD {
	data := make([]byte, 4*len(pairs))
	for i, v := range pairs {
		f.b.bo.PutUint32(data[i*4:], v)
	}
	return f.add(tag, 5, uint32(len(pairs)/2), data)
}

func (f *tiffIFD) srational(tag uint16, num, den int32) *tiffIFD {
	data := make([]byte, 8)
	f.b.bo.PutUint32(data, uint32(num))
	f.b.bo.PutUint32(data[4:], uint32(den))
	return f.add(tag, 10, 1, data)
}

// pointer adds a LONG entry holding the offset of sub.
func (f *tiffIFD) pointer(tag uint16, sub *tiffIFD) *tiffIFD {
	f.entries = append(f.entries, tiffEntry{tag: tag, typ: 4, count: 1, ref: func() uint32 { return sub.offset }})
	return f
}

// blobOffset adds a LONG entry holding the offset of bl.
func (f *tiffIFD) blobOffset(tag uint16, bl *tiffBlob) *tiffIFD {
	f.entries = append(f.entries, tiffEntry{tag: tag, typ: 4, count: 1, ref: func() uint32 { return bl.offset }})
	return f
}

// tiff returns the TIFF structure, starting with the byte order marker.
func (b *tiffBuilder) tiff() []byte {
	off := uint32(8)
	for _, f := range b.ifds {
		f.offset = off
		off += 2 + 12*uint32(len(f.entries)) + 4
		for i := range f.entries {
			e := &f.entries[i]
			if len(e.data) > 4 {
				e.dataOffset = off
				off += uint32(len(e.data))
			}
		}
	}
	for _, bl := range b.blobs {
		bl.offset = off
		off += uint32(len(bl.data))
	}

	buf := make([]byte, off)
	if b.bo == binary.LittleEndian {
		copy(buf, "II")
	} else {
		copy(buf, "MM")
	}
	b.bo.PutUint16(buf[2:], 42)
	if len(b.ifds) > 0 {
		b.bo.PutUint32(buf[4:], b.ifds[0].offset)
	}

	for _, f := range b.ifds {
		pos := f.offset
		b.bo.PutUint16(buf[pos:], uint16(len(f.entries)))
		pos += 2
		for _, e := range f.entries {
			b.bo.PutUint16(buf[pos:], e.tag)
			b.bo.PutUint16(buf[pos+2:], e.typ)
			b.bo.PutUint32(buf[pos+4:], e.count)
			switch {
			case e.ref != nil:
				b.bo.PutUint32(buf[pos+8:], e.ref())
			case len(e.data) <= 4:
				copy(buf[pos+8:pos+12], e.data)
			default:
				b.bo.PutUint32(buf[pos+8:], e.dataOffset)
				copy(buf[e.dataOffset:], e.data)
			}
			pos += 12
		}
		if f.next != nil {
			b.bo.PutUint32(buf[pos:], f.next.offset)
		}
	}

	for _, bl := range b.blobs {
		copy(buf[bl.offset:], bl.data)
	}

	return buf
}

// jxl returns the payload as stored in a JPEG XL Exif box.
func (b *tiffBuilder) jxl() []byte {
	return append([]byte{0, 0, 0, 0}, b.tiff()...)
}

// jxlWithMarker returns the payload with the "Exif\x00\x00" marker after the offset field.
func (b *tiffBuilder) jxlWithMarker() []byte {
	return append([]byte{0, 0, 0, 0, 'E', 'x', 'i', 'f', 0, 0}, b.tiff()...)
}

// iccBuilder builds synthetic ICC profiles.
type iccBuilder struct {
	class      string
	colorSpace string
	version    [2]byte
	intent     uint32
	tags       []iccTag
}

type iccTag struct {
	sig  string
	data []byte
}

func newICCBuilder() *iccBuilder {
	return &iccBuilder{class: "mntr", colorSpace: "RGB ", version: [2]byte{4, 0x30}}
}

func (b *iccBuilder) tag(sig string, data []byte) *iccBuilder {
	b.tags = append(b.tags, iccTag{sig: sig, data: data})
	return b
}

func (b *iccBuilder) bytes() []byte {
	tableEnd := 132 + 12*len(b.tags)
	size := tableEnd
	offsets := make([]int, len(b.tags))
	for i, t := range b.tags {
		size = (size + 3) &^ 3
		offsets[i] = size
		size += len(t.data)
	}

	buf := make([]byte, size)
	binary.BigEndian.PutUint32(buf[0:], uint32(size))
	copy(buf[4:8], "jxlm")
	buf[8], buf[9] = b.version[0], b.version[1]
	copy(buf[12:16], b.class)
	copy(buf[16:20], b.colorSpace)
	copy(buf[20:24], "XYZ ")
	copy(buf[36:40], "acsp")
	binary.BigEndian.PutUint32(buf[64:], b.intent)
	binary.BigEndian.PutUint32(buf[128:], uint32(len(b.tags)))
	for i, t := range b.tags {
		pos := 132 + 12*i
		copy(buf[pos:pos+4], t.sig)
		binary.BigEndian.PutUint32(buf[pos+4:], uint32(offsets[i]))
		binary.BigEndian.PutUint32(buf[pos+8:], uint32(len(t.data)))
		copy(buf[offsets[i]:], t.data)
	}
	return buf
}

func s15Fixed16(v float64) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(int32(math.Round(v*65536))))
	return b
}

func iccTypeHeader(typ string) []byte {
	return append([]byte(typ), 0, 0, 0, 0)
}

func mlucTag(s string) []byte {
	u, err := xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	b := iccTypeHeader("mluc")
	b = binary.BigEndian.AppendUint32(b, 1)  // record count
	b = binary.BigEndian.AppendUint32(b, 12) // record size
	b = append(b, "enUS"...)
	b = binary.BigEndian.AppendUint32(b, uint32(len(u)))
	b = binary.BigEndian.AppendUint32(b, 28)
	return append(b, u...)
}

func textTag(s string) []byte {
	b := iccTypeHeader("text")
	b = append(b, s...)
	return append(b, 0)
}

func descTag(s string) []byte {
	b := iccTypeHeader("desc")
	b = binary.BigEndian.AppendUint32(b, uint32(len(s)+1))
	b = append(b, s...)
	b = append(b, 0)
	// Empty Unicode and ScriptCode parts.
	return append(b, make([]byte, 4+4+2+1+67)...)
}

func xyzTag(x, y, z float64) []byte {
	b := iccTypeHeader("XYZ ")
	b = append(b, s15Fixed16(x)...)
	b = append(b, s15Fixed16(y)...)
	return append(b, s15Fixed16(z)...)
}

func curvGammaTag(gamma float64) []byte {
	b := iccTypeHeader("curv")
	b = binary.BigEndian.AppendUint32(b, 1)
	b = binary.BigEndian.AppendUint16(b, uint16(math.Round(gamma*256)))
	return append(b, 0, 0)
}

func curvTableTag(n int) []byte {
	b := iccTypeHeader("curv")
	b = binary.BigEndian.AppendUint32(b, uint32(n))
	for i := range n {
		b = binary.BigEndian.AppendUint16(b, uint16(i*65535/max(n-1, 1)))
	}
	return b
}

func curvIdentityTag() []byte {
	b := iccTypeHeader("curv")
	return binary.BigEndian.AppendUint32(b, 0)
}

func paraTag(functionType uint16, params ...float64) []byte {
	b := iccTypeHeader("para")
	b = binary.BigEndian.AppendUint16(b, functionType)
	b = append(b, 0, 0)
	for _, p := range params {
		b = append(b, s15Fixed16(p)...)
	}
	return b
}

func cicpTag(primaries, transfer uint8) []byte {
	b := iccTypeHeader("cicp")
	return append(b, primaries, transfer, 0, 1)
}
