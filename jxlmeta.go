// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package jxlmeta decodes ICC color profiles and EXIF metadata from the
// byte buffers extracted from JPEG XL (or JPEG) metadata boxes.
//
// All decoding is done on the caller's buffer without copying it, and is safe
// for concurrent use. Malformed, truncated or crafted input never panics;
// every entry point returns an error instead, which can be inspected with
// IsNotFound and IsInvalidFormat.
package jxlmeta

import (
	"fmt"
)

const (
	defaultLimitNumICCTags    = 100
	defaultLimitNumIFDEntries = 500
	defaultLimitTagSize       = 65535
)

// Options contains the options for the Decoder.
type Options struct {
	// Warnf will be called for each warning, e.g. a tag that could not be decoded.
	Warnf func(string, ...any)

	// LimitNumICCTags is the maximum number of tags in the ICC tag table.
	// Profiles declaring more are rejected.
	// Default value is 100.
	LimitNumICCTags uint32

	// LimitNumIFDEntries is the maximum number of entries in an EXIF IFD.
	// Directories declaring more are rejected.
	// Default value is 500.
	LimitNumIFDEntries uint32

	// LimitTagSize is the maximum size in bytes of an EXIF tag value to read.
	// Tag values larger than this will be skipped.
	// Default value is 65535.
	LimitTagSize uint32
}

// Decoder decodes ICC profiles and EXIF data.
// It holds no state besides its options and is safe for concurrent use.
type Decoder struct {
	opts Options
}

// NewDecoder creates a new Decoder with the given options.
func NewDecoder(opts Options) *Decoder {
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}
	if opts.LimitNumICCTags == 0 {
		opts.LimitNumICCTags = defaultLimitNumICCTags
	}
	if opts.LimitNumIFDEntries == 0 {
		opts.LimitNumIFDEntries = defaultLimitNumIFDEntries
	}
	if opts.LimitTagSize == 0 {
		opts.LimitTagSize = defaultLimitTagSize
	}
	return &Decoder{opts: opts}
}

var defaultDecoder = NewDecoder(Options{})

// DecodeICCHeader decodes the 128 byte header of the ICC profile in b.
func DecodeICCHeader(b []byte) (ICCHeader, error) {
	return defaultDecoder.DecodeICCHeader(b)
}

// DecodeICCDescription returns the profile description ('desc' tag) of the ICC profile in b.
func DecodeICCDescription(b []byte) (string, error) {
	return defaultDecoder.DecodeICCDescription(b)
}

// DecodeColorSpace decodes the color space described by the ICC profile in b.
func DecodeColorSpace(b []byte) (ColorSpace, error) {
	return defaultDecoder.DecodeColorSpace(b)
}

// DecodeEXIF decodes the EXIF payload in b.
func DecodeEXIF(b []byte) (EXIF, error) {
	return defaultDecoder.DecodeEXIF(b)
}

// DecodeEXIFThumbnail locates the embedded thumbnail in the EXIF payload in b.
func DecodeEXIFThumbnail(b []byte) (ByteRange, error) {
	return defaultDecoder.DecodeEXIFThumbnail(b)
}

// DecodeEXIFMakeModel returns the camera make and model from the EXIF payload in b.
func DecodeEXIFMakeModel(b []byte) (make, model string, err error) {
	return defaultDecoder.DecodeEXIFMakeModel(b)
}

// DecodeEXIFDateTime returns the capture date/time from the EXIF payload in b.
func DecodeEXIFDateTime(b []byte) (string, error) {
	return defaultDecoder.DecodeEXIFDateTime(b)
}

// DecodeEXIFOrientation returns the orientation from the EXIF payload in b.
func DecodeEXIFOrientation(b []byte) (Orientation, error) {
	return defaultDecoder.DecodeEXIFOrientation(b)
}

// DecodeICCHeader decodes the 128 byte header of the ICC profile in b.
func (d *Decoder) DecodeICCHeader(b []byte) (h ICCHeader, err error) {
	defer d.recoverErr(&err)
	return d.decodeICCHeader(b)
}

// DecodeICCDescription returns the profile description ('desc' tag) of the ICC profile in b.
func (d *Decoder) DecodeICCDescription(b []byte) (s string, err error) {
	defer d.recoverErr(&err)
	if _, err := d.decodeICCHeader(b); err != nil {
		return "", err
	}
	tag, err := d.findICCTag(b, iccTagDescription)
	if err != nil {
		return "", err
	}
	return d.decodeICCText(tag)
}

// DecodeColorSpace decodes the color space described by the ICC profile in b.
func (d *Decoder) DecodeColorSpace(b []byte) (cs ColorSpace, err error) {
	defer d.recoverErr(&err)
	return d.decodeColorSpace(b)
}

// DecodeEXIF decodes the EXIF payload in b.
//
// b is expected to start with the 4 byte TIFF header offset as stored in a
// JPEG XL Exif box, optionally followed by an "Exif\x00\x00" marker.
// A payload starting with the marker, as in a JPEG APP1 segment, is also accepted.
func (d *Decoder) DecodeEXIF(b []byte) (x EXIF, err error) {
	defer d.recoverErr(&err)
	return d.decodeEXIF(b)
}

// DecodeEXIFThumbnail locates the embedded thumbnail in the EXIF payload in b.
// The returned range is relative to the start of b.
func (d *Decoder) DecodeEXIFThumbnail(b []byte) (r ByteRange, err error) {
	defer d.recoverErr(&err)
	return d.decodeEXIFThumbnail(b)
}

// DecodeEXIFMakeModel returns the camera make and model from the EXIF payload in b.
// One of them may be empty, but not both.
func (d *Decoder) DecodeEXIFMakeModel(b []byte) (make, model string, err error) {
	defer d.recoverErr(&err)
	return d.decodeEXIFMakeModel(b)
}

// DecodeEXIFDateTime returns the capture date/time from the EXIF payload in b,
// DateTimeOriginal if set, else DateTime.
func (d *Decoder) DecodeEXIFDateTime(b []byte) (s string, err error) {
	defer d.recoverErr(&err)
	return d.decodeEXIFDateTime(b)
}

// DecodeEXIFOrientation returns the orientation from the EXIF payload in b.
// Values outside 1-8 are reported as not found.
func (d *Decoder) DecodeEXIFOrientation(b []byte) (o Orientation, err error) {
	defer d.recoverErr(&err)
	return d.decodeEXIFOrientation(b)
}

// recoverErr turns a panic into an invalid format error.
// It must be called directly by defer.
func (d *Decoder) recoverErr(err *error) {
	r := recover()
	if r == nil {
		return
	}
	var err2 error
	if errp, ok := r.(error); ok {
		err2 = newInvalidFormatError(errp)
	} else {
		err2 = newInvalidFormatError(fmt.Errorf("unknown panic: %v", r))
	}
	d.opts.Warnf("recovered from panic: %s", err2)
	*err = err2
}
