// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

var exifMarker = []byte("Exif\x00\x00")

const (
	exifMinSize = 12
	// The EXIF payload starts with a 4 byte offset to the TIFF header.
	exifTIFFOffsetSize = 4
	tiffHeaderSize     = 8
)

// ByteRange is a range of bytes in the buffer passed to the decoder.
type ByteRange struct {
	Offset int
	Length int
}

// End returns the offset just past the range.
func (r ByteRange) End() int {
	return r.Offset + r.Length
}

// EXIF holds the EXIF fields we care about.
// Every field is nil if it's not present in the data.
type EXIF struct {
	// IFD0.
	Make             *string
	Model            *string
	Software         *string
	ImageDescription *string
	Copyright        *string
	Artist           *string
	DateTime         *string
	Orientation      *Orientation
	// ImageWidth and ImageHeight are the dimensions declared in the metadata,
	// which may not match the actual image.
	ImageWidth  *uint32
	ImageHeight *uint32

	// EXIF sub-IFD.
	DateTimeOriginal      *string
	DateTimeDigitized     *string
	ExposureTime          *Rat[uint32]
	FNumber               *Rat[uint32]
	ISO                   *uint16
	FocalLength           *Rat[uint32]
	FocalLengthIn35mmFilm *uint16
	Flash                 *uint16
	ExposureProgram       *ExposureProgram
	MeteringMode          *MeteringMode
	ExposureBias          *Rat[int32]

	// GPS sub-IFD.
	GPSLatitude    *GPSCoordinate
	GPSLongitude   *GPSCoordinate
	GPSAltitude    *Rat[uint32]
	GPSAltitudeRef *uint8

	// Thumbnail is the location of the embedded thumbnail (IFD1) in the
	// buffer passed to the decoder.
	Thumbnail *ByteRange
}

// HasGPS reports whether both latitude and longitude are set.
func (x EXIF) HasGPS() bool {
	return x.GPSLatitude != nil && x.GPSLongitude != nil
}

// LatLong returns the GPS position in decimal degrees.
func (x EXIF) LatLong() (lat, long float64, ok bool) {
	if !x.HasGPS() {
		return 0, 0, false
	}
	return x.GPSLatitude.Decimal(), x.GPSLongitude.Decimal(), true
}

// Altitude returns the GPS altitude in meters, negative below sea level.
func (x EXIF) Altitude() (float64, bool) {
	if x.GPSAltitude == nil {
		return 0, false
	}
	alt := x.GPSAltitude.Float64()
	if x.GPSAltitudeRef != nil && *x.GPSAltitudeRef == 1 {
		alt = -alt
	}
	return alt, true
}

// FlashFired reports whether bit 0 of the Flash field is set.
func (x EXIF) FlashFired() bool {
	return x.Flash != nil && *x.Flash&1 == 1
}

// HasThumbnail reports whether an embedded thumbnail was located.
func (x EXIF) HasThumbnail() bool {
	return x.Thumbnail != nil
}

// ThumbnailBytes returns a copy of the thumbnail bytes in b, which must be the
// buffer the EXIF was decoded from.
// It returns nil if there is no thumbnail or if the range is not within b.
func (x EXIF) ThumbnailBytes(b []byte) []byte {
	if x.Thumbnail == nil {
		return nil
	}
	start, n := x.Thumbnail.Offset, x.Thumbnail.Length
	if start < 0 || n < 0 || start > len(b) || n > len(b)-start {
		return nil
	}
	return bytes.Clone(b[start : start+n])
}

// exifDateTimeLayout is the layout of the EXIF date/time fields.
const exifDateTimeLayout = "2006:01:02 15:04:05"

// CaptureTime parses DateTimeOriginal, falling back to DateTime, in the local time zone.
func (x EXIF) CaptureTime() (time.Time, error) {
	s := x.DateTimeOriginal
	if s == nil {
		s = x.DateTime
	}
	if s == nil {
		return time.Time{}, newNotFoundErrorf("exif: no date/time")
	}
	return time.ParseInLocation(exifDateTimeLayout, *s, time.Local)
}

// tiffHeader is the decoded TIFF header of an EXIF payload.
type tiffHeader struct {
	// base is the position of the TIFF header in the input buffer.
	base int
	// r reads the data following the TIFF header; all IFD offsets are relative to it.
	r    byteReader
	ifd0 uint32
}

func (d *Decoder) readTIFFHeader(b []byte) (tiffHeader, error) {
	var h tiffHeader
	if len(b) < exifMinSize {
		return h, newInvalidFormatErrorf("exif: payload too short: %d bytes", len(b))
	}

	switch {
	case bytes.Equal(b[exifTIFFOffsetSize:exifTIFFOffsetSize+len(exifMarker)], exifMarker):
		h.base = exifTIFFOffsetSize + len(exifMarker)
	case bytes.HasPrefix(b, exifMarker):
		// JPEG APP1 style, no TIFF offset field.
		h.base = len(exifMarker)
	default:
		h.base = exifTIFFOffsetSize
	}

	if len(b)-h.base < tiffHeaderSize {
		return h, newInvalidFormatErrorf("exif: TIFF header truncated")
	}

	// The byte order marker reads the same in both byte orders.
	tiff := newByteReader(b[h.base:], binary.BigEndian)
	byteOrderTag, _ := tiff.read2(0)
	switch byteOrderTag {
	case byteOrderBigEndian:
		tiff.byteOrder = binary.BigEndian
	case byteOrderLittleEndian:
		tiff.byteOrder = binary.LittleEndian
	default:
		return h, newInvalidFormatErrorf("exif: invalid byte order marker 0x%04x", byteOrderTag)
	}

	if magic, _ := tiff.read2(2); magic != meaningOfLife {
		return h, newInvalidFormatErrorf("exif: invalid TIFF magic number %d", magic)
	}

	h.ifd0, _ = tiff.read4(4)
	if h.ifd0 < tiffHeaderSize || int64(h.ifd0) >= int64(tiff.len()) {
		return h, newInvalidFormatErrorf("exif: invalid IFD0 offset %d", h.ifd0)
	}
	h.r = tiff

	return h, nil
}

// readRoot reads the TIFF header and IFD0.
// A failure here fails the entire decode.
func (d *Decoder) readRoot(b []byte) (tiffHeader, ifd, error) {
	h, err := d.readTIFFHeader(b)
	if err != nil {
		return h, ifd{}, err
	}
	ifd0, err := d.readIFD(h.r, h.ifd0, "IFD0")
	if err != nil {
		return h, ifd{}, err
	}
	return h, ifd0, nil
}

// readSubIFD follows the IFD pointer tag in parent.
// A broken sub directory is treated as empty so it does not take the
// rest of the record down with it.
func (d *Decoder) readSubIFD(h tiffHeader, parent ifd, pointerTag uint16, namespace string) (ifd, bool) {
	e, found := parent.find(pointerTag)
	if !found {
		return ifd{}, false
	}
	offset, err := d.asUint(h.r, e)
	if err == nil {
		var f ifd
		if f, err = d.readIFD(h.r, offset, namespace); err == nil {
			return f, true
		}
	}
	d.opts.Warnf("exif: skipping %s: %s", namespace, err)
	return ifd{}, false
}

// field decodes tag in f using decode.
// It returns nil if the tag is absent or its value can't be decoded.
func field[T any](d *Decoder, f ifd, tag uint16, decode func(ifdEntry) (T, error)) *T {
	e, found := f.find(tag)
	if !found {
		return nil
	}
	v, err := decode(e)
	if err != nil {
		if !IsNotFound(err) {
			d.opts.Warnf("exif: tag 0x%04x: %s", tag, err)
		}
		return nil
	}
	return &v
}

// exifFields binds the typed value decoders to one TIFF buffer.
type exifFields struct {
	d *Decoder
	r byteReader
}

func (c exifFields) str(e ifdEntry) (string, error) {
	return c.d.asString(c.r, e)
}

func (c exifFields) u32(e ifdEntry) (uint32, error) {
	return c.d.asUint(c.r, e)
}

// u16 reads a SHORT field, also accepting a LONG as long as the value fits.
func (c exifFields) u16(e ifdEntry) (uint16, error) {
	v, err := c.d.asUint(c.r, e)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint16 {
		return 0, newInvalidFormatErrorf("exif: tag 0x%04x: value %d out of range for SHORT", e.tag, v)
	}
	return uint16(v), nil
}

func (c exifFields) u8(e ifdEntry) (uint8, error) {
	v, err := c.d.asUint(c.r, e)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint8 {
		return 0, newInvalidFormatErrorf("exif: tag 0x%04x: value %d out of range for BYTE", e.tag, v)
	}
	return uint8(v), nil
}

func (c exifFields) rat(e ifdEntry) (Rat[uint32], error) {
	return c.d.asRat(c.r, e)
}

func (c exifFields) srat(e ifdEntry) (Rat[int32], error) {
	return c.d.asSRat(c.r, e)
}

func (c exifFields) orientation(e ifdEntry) (Orientation, error) {
	v, err := c.d.asUint(c.r, e)
	if err != nil {
		return 0, err
	}
	o := Orientation(v)
	if v > 0xffff || !o.valid() {
		return 0, newNotFoundErrorf("exif: orientation %d out of range", v)
	}
	return o, nil
}

func (c exifFields) exposureProgram(e ifdEntry) (ExposureProgram, error) {
	v, err := c.u16(e)
	return ExposureProgram(v), err
}

func (c exifFields) meteringMode(e ifdEntry) (MeteringMode, error) {
	v, err := c.u16(e)
	return MeteringMode(v), err
}

// gpsCoordinate decodes a degree/minute/second triple, using the
// hemisphere from refTag.
func (c exifFields) gpsCoordinate(f ifd, refTag, tag uint16) *GPSCoordinate {
	var ref byte
	if s := field(c.d, f, refTag, c.str); s != nil {
		ref = (*s)[0]
	}
	return field(c.d, f, tag, func(e ifdEntry) (GPSCoordinate, error) {
		rats, err := c.d.asRats(c.r, e, 3)
		if err != nil {
			return GPSCoordinate{}, err
		}
		return GPSCoordinate{Degrees: rats[0], Minutes: rats[1], Seconds: rats[2], Ref: ref}, nil
	})
}

// thumbnail locates the IFD1 thumbnail, if any.
func (d *Decoder) thumbnail(b []byte, h tiffHeader, ifd0 ifd) *ByteRange {
	if ifd0.next == 0 {
		return nil
	}
	ifd1, err := d.readIFD(h.r, ifd0.next, "IFD1")
	if err != nil {
		d.opts.Warnf("exif: skipping IFD1: %s", err)
		return nil
	}
	c := exifFields{d: d, r: h.r}
	offset := field(d, ifd1, tagThumbnailOffset, c.u32)
	length := field(d, ifd1, tagThumbnailLength, c.u32)
	if offset == nil || length == nil || *length == 0 {
		return nil
	}
	start := int64(h.base) + int64(*offset)
	if !newByteReader(b, h.r.byteOrder).inRange(start, int64(*length)) {
		d.opts.Warnf("exif: thumbnail [%d:%d] out of bounds (%d)", start, start+int64(*length), len(b))
		return nil
	}
	return &ByteRange{Offset: int(start), Length: int(*length)}
}

func (d *Decoder) decodeEXIF(b []byte) (EXIF, error) {
	var x EXIF
	h, ifd0, err := d.readRoot(b)
	if err != nil {
		return x, err
	}
	c := exifFields{d: d, r: h.r}

	x.Make = field(d, ifd0, tagMake, c.str)
	x.Model = field(d, ifd0, tagModel, c.str)
	x.Software = field(d, ifd0, tagSoftware, c.str)
	x.ImageDescription = field(d, ifd0, tagImageDescription, c.str)
	x.Copyright = field(d, ifd0, tagCopyright, c.str)
	x.Artist = field(d, ifd0, tagArtist, c.str)
	x.DateTime = field(d, ifd0, tagDateTime, c.str)
	x.Orientation = field(d, ifd0, tagOrientation, c.orientation)
	x.ImageWidth = field(d, ifd0, tagImageWidth, c.u32)
	x.ImageHeight = field(d, ifd0, tagImageLength, c.u32)

	if exifIFD, ok := d.readSubIFD(h, ifd0, tagExifIFDPointer, "IFD0/ExifIFD"); ok {
		x.ExposureTime = field(d, exifIFD, tagExposureTime, c.rat)
		x.FNumber = field(d, exifIFD, tagFNumber, c.rat)
		x.ISO = field(d, exifIFD, tagISOSpeedRatings, c.u16)
		x.DateTimeOriginal = field(d, exifIFD, tagDateTimeOriginal, c.str)
		x.DateTimeDigitized = field(d, exifIFD, tagDateTimeDigitized, c.str)
		x.ExposureBias = field(d, exifIFD, tagExposureBiasValue, c.srat)
		x.MeteringMode = field(d, exifIFD, tagMeteringMode, c.meteringMode)
		x.ExposureProgram = field(d, exifIFD, tagExposureProgram, c.exposureProgram)
		x.Flash = field(d, exifIFD, tagFlash, c.u16)
		x.FocalLength = field(d, exifIFD, tagFocalLength, c.rat)
		x.FocalLengthIn35mmFilm = field(d, exifIFD, tagFocalLengthIn35mmFilm, c.u16)
		if x.ImageWidth == nil {
			x.ImageWidth = field(d, exifIFD, tagPixelXDimension, c.u32)
		}
		if x.ImageHeight == nil {
			x.ImageHeight = field(d, exifIFD, tagPixelYDimension, c.u32)
		}
	}

	if gpsIFD, ok := d.readSubIFD(h, ifd0, tagGPSIFDPointer, "IFD0/GPSInfoIFD"); ok {
		x.GPSLatitude = c.gpsCoordinate(gpsIFD, tagGPSLatitudeRef, tagGPSLatitude)
		x.GPSLongitude = c.gpsCoordinate(gpsIFD, tagGPSLongitudeRef, tagGPSLongitude)
		x.GPSAltitudeRef = field(d, gpsIFD, tagGPSAltitudeRef, c.u8)
		x.GPSAltitude = field(d, gpsIFD, tagGPSAltitude, c.rat)
	}

	x.Thumbnail = d.thumbnail(b, h, ifd0)

	return x, nil
}

func (d *Decoder) decodeEXIFThumbnail(b []byte) (ByteRange, error) {
	h, ifd0, err := d.readRoot(b)
	if err != nil {
		return ByteRange{}, err
	}
	if r := d.thumbnail(b, h, ifd0); r != nil {
		return *r, nil
	}
	return ByteRange{}, newNotFoundErrorf("exif: no thumbnail")
}

func (d *Decoder) decodeEXIFMakeModel(b []byte) (string, string, error) {
	h, ifd0, err := d.readRoot(b)
	if err != nil {
		return "", "", err
	}
	c := exifFields{d: d, r: h.r}
	mk := field(d, ifd0, tagMake, c.str)
	model := field(d, ifd0, tagModel, c.str)
	if mk == nil && model == nil {
		return "", "", newNotFoundErrorf("exif: no make or model")
	}
	var smk, smodel string
	if mk != nil {
		smk = *mk
	}
	if model != nil {
		smodel = *model
	}
	return smk, smodel, nil
}

func (d *Decoder) decodeEXIFDateTime(b []byte) (string, error) {
	h, ifd0, err := d.readRoot(b)
	if err != nil {
		return "", err
	}
	c := exifFields{d: d, r: h.r}
	if exifIFD, ok := d.readSubIFD(h, ifd0, tagExifIFDPointer, "IFD0/ExifIFD"); ok {
		if s := field(d, exifIFD, tagDateTimeOriginal, c.str); s != nil {
			return *s, nil
		}
	}
	if s := field(d, ifd0, tagDateTime, c.str); s != nil {
		return *s, nil
	}
	return "", newNotFoundErrorf("exif: no date/time")
}

func (d *Decoder) decodeEXIFOrientation(b []byte) (Orientation, error) {
	h, ifd0, err := d.readRoot(b)
	if err != nil {
		return OrientationUnspecified, err
	}
	c := exifFields{d: d, r: h.r}
	if o := field(d, ifd0, tagOrientation, c.orientation); o != nil {
		return *o, nil
	}
	return OrientationUnspecified, newNotFoundErrorf("exif: no orientation")
}
