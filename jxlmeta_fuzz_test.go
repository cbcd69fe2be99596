// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta_test

import (
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/bep/jxlmeta"
)

func FuzzDecodeEXIF(f *testing.F) {
	f.Add(cameraEXIF(binary.LittleEndian).jxl())
	f.Add(cameraEXIF(binary.BigEndian).jxlWithMarker())
	b := newTIFFBuilder(binary.LittleEndian)
	b.ifd().ascii(0x010f, "Canon").short(0x0112, 6)
	f.Add(b.jxl())

	f.Fuzz(func(t *testing.T, data []byte) {
		d := fuzzDecoder(t)
		x, err := d.DecodeEXIF(data)
		checkFuzzErr(t, err)
		if err == nil && x.Thumbnail != nil && x.Thumbnail.End() > len(data) {
			t.Fatalf("thumbnail range %v exceeds buffer size %d", *x.Thumbnail, len(data))
		}
		_, err = d.DecodeEXIFThumbnail(data)
		checkFuzzErr(t, err)
		_, _, err = d.DecodeEXIFMakeModel(data)
		checkFuzzErr(t, err)
		_, err = d.DecodeEXIFDateTime(data)
		checkFuzzErr(t, err)
		_, err = d.DecodeEXIFOrientation(data)
		checkFuzzErr(t, err)
	})
}

func FuzzDecodeICC(f *testing.F) {
	f.Add(srgbProfile().bytes())
	f.Add(srgbProfile().tag("cicp", cicpTag(9, 16)).bytes())
	f.Add(newICCBuilder().tag("desc", descTag("Gray")).tag("kTRC", curvTableTag(16)).bytes())

	f.Fuzz(func(t *testing.T, data []byte) {
		d := fuzzDecoder(t)
		_, err := d.DecodeICCHeader(data)
		checkFuzzErr(t, err)
		_, err = d.DecodeICCDescription(data)
		checkFuzzErr(t, err)
		cs, err := d.DecodeColorSpace(data)
		checkFuzzErr(t, err)
		if err == nil {
			_ = cs.Describe()
		}
	})
}

func fuzzDecoder(t *testing.T) *jxlmeta.Decoder {
	return jxlmeta.NewDecoder(jxlmeta.Options{
		Warnf: func(format string, args ...any) {
			if s := fmt.Sprintf(format, args...); strings.Contains(s, "recovered from panic") {
				t.Fatal(s)
			}
		},
	})
}

func checkFuzzErr(t *testing.T, err error) {
	t.Helper()
	if err != nil && !jxlmeta.IsInvalidFormat(err) && !jxlmeta.IsNotFound(err) {
		t.Fatalf("unknown error: %v %T", err, err)
	}
}
