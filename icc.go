// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta

import (
	"encoding/binary"
	"fmt"
)

const (
	iccHeaderSize     = 128
	iccTagCountOffset = 128
	iccTagTableOffset = 132
	iccTagEntrySize   = 12
	iccMinTagDataSize = 8

	iccFileSignature fourCC = 0x61637370 // 'acsp'
)

// ICC tag signatures.
const (
	iccTagDescription fourCC = 0x64657363 // 'desc'
	iccTagWhitePoint  fourCC = 0x77747074 // 'wtpt'
	iccTagRedXYZ      fourCC = 0x7258595a // 'rXYZ'
	iccTagGreenXYZ    fourCC = 0x6758595a // 'gXYZ'
	iccTagBlueXYZ     fourCC = 0x6258595a // 'bXYZ'
	iccTagRedTRC      fourCC = 0x72545243 // 'rTRC'
	iccTagGrayTRC     fourCC = 0x6b545243 // 'kTRC'
	iccTagCICP        fourCC = 0x63696370 // 'cicp'
)

// ICC tag type signatures.
const (
	iccTypeMultiLocalizedUnicode fourCC = 0x6d6c7563 // 'mluc'
	iccTypeText                  fourCC = 0x74657874 // 'text'
	iccTypeTextDescription       fourCC = 0x64657363 // 'desc'
	iccTypeXYZ                   fourCC = 0x58595a20 // 'XYZ '
	iccTypeCurve                 fourCC = 0x63757276 // 'curv'
	iccTypeParametricCurve       fourCC = 0x70617261 // 'para'
	iccTypeCICP                  fourCC = 0x63696370 // 'cicp'
)

// ProfileClass is the ICC profile/device class.
type ProfileClass int

const (
	ProfileClassUnknown ProfileClass = iota
	ProfileClassInput
	ProfileClassDisplay
	ProfileClassOutput
	ProfileClassDeviceLink
	ProfileClassColorSpace
	ProfileClassAbstract
	ProfileClassNamedColor
)

var profileClassSignatures = map[fourCC]ProfileClass{
	0x73636e72: ProfileClassInput,      // 'scnr'
	0x6d6e7472: ProfileClassDisplay,    // 'mntr'
	0x70727472: ProfileClassOutput,     // 'prtr'
	0x6c696e6b: ProfileClassDeviceLink, // 'link'
	0x73706163: ProfileClassColorSpace, // 'spac'
	0x61627374: ProfileClassAbstract,   // 'abst'
	0x6e6d636c: ProfileClassNamedColor, // 'nmcl'
}

func (c ProfileClass) String() string {
	switch c {
	case ProfileClassInput:
		return "Input"
	case ProfileClassDisplay:
		return "Display"
	case ProfileClassOutput:
		return "Output"
	case ProfileClassDeviceLink:
		return "DeviceLink"
	case ProfileClassColorSpace:
		return "ColorSpace"
	case ProfileClassAbstract:
		return "Abstract"
	case ProfileClassNamedColor:
		return "NamedColor"
	default:
		return "Unknown"
	}
}

// DataColorSpace is the color space of the data in the profile.
type DataColorSpace int

const (
	DataColorSpaceUnknown DataColorSpace = iota
	DataColorSpaceRGB
	DataColorSpaceGray
	DataColorSpaceCMYK
	DataColorSpaceXYZ
	DataColorSpaceLab
)

var dataColorSpaceSignatures = map[fourCC]DataColorSpace{
	0x52474220: DataColorSpaceRGB,  // 'RGB '
	0x47524159: DataColorSpaceGray, // 'GRAY'
	0x434d594b: DataColorSpaceCMYK, // 'CMYK'
	0x58595a20: DataColorSpaceXYZ,  // 'XYZ '
	0x4c616220: DataColorSpaceLab,  // 'Lab '
}

func (c DataColorSpace) String() string {
	switch c {
	case DataColorSpaceRGB:
		return "RGB"
	case DataColorSpaceGray:
		return "Gray"
	case DataColorSpaceCMYK:
		return "CMYK"
	case DataColorSpaceXYZ:
		return "XYZ"
	case DataColorSpaceLab:
		return "Lab"
	default:
		return "Unknown"
	}
}

// RenderingIntent is the ICC rendering intent.
type RenderingIntent int

const (
	RenderingIntentPerceptual RenderingIntent = iota
	RenderingIntentRelativeColorimetric
	RenderingIntentSaturation
	RenderingIntentAbsoluteColorimetric
)

func (i RenderingIntent) String() string {
	switch i {
	case RenderingIntentPerceptual:
		return "Perceptual"
	case RenderingIntentRelativeColorimetric:
		return "RelativeColorimetric"
	case RenderingIntentSaturation:
		return "Saturation"
	case RenderingIntentAbsoluteColorimetric:
		return "AbsoluteColorimetric"
	default:
		return fmt.Sprintf("RenderingIntent(%d)", int(i))
	}
}

// ICCVersion is the profile format version, e.g. 4.3.0.
type ICCVersion struct {
	Major  uint8
	Minor  uint8
	Bugfix uint8
}

func (v ICCVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Bugfix)
}

// ICCHeader holds the fields decoded from the 128 byte ICC profile header.
type ICCHeader struct {
	// Size is the profile size in bytes as declared in the header.
	Size            uint32
	Version         ICCVersion
	Class           ProfileClass
	ColorSpace      DataColorSpace
	RenderingIntent RenderingIntent
}

func (d *Decoder) decodeICCHeader(b []byte) (ICCHeader, error) {
	var h ICCHeader
	if len(b) < iccHeaderSize {
		return h, newInvalidFormatErrorf("icc: profile too short: %d bytes", len(b))
	}
	r := newByteReader(b, binary.BigEndian)

	var err error
	if h.Size, err = r.read4(0); err != nil {
		return h, err
	}

	version, err := r.bytes(8, 2)
	if err != nil {
		return h, err
	}
	h.Version = ICCVersion{
		Major:  version[0],
		Minor:  version[1] >> 4,
		Bugfix: version[1] & 0x0f,
	}

	class, err := r.fourCC(12)
	if err != nil {
		return h, err
	}
	h.Class = profileClassSignatures[class]

	colorSpace, err := r.fourCC(16)
	if err != nil {
		return h, err
	}
	h.ColorSpace = dataColorSpaceSignatures[colorSpace]

	if sig, err := r.fourCC(36); err == nil && sig != iccFileSignature {
		d.opts.Warnf("icc: unexpected file signature %q", sig)
	}

	intent, err := r.read4(64)
	if err != nil {
		return h, err
	}
	h.RenderingIntent = RenderingIntent(intent & 0x3)

	return h, nil
}

// findICCTag scans the tag table for sig and returns the tag's data span.
// The returned slice shares memory with b.
func (d *Decoder) findICCTag(b []byte, sig fourCC) ([]byte, error) {
	r := newByteReader(b, binary.BigEndian)

	count, err := r.read4(iccTagCountOffset)
	if err != nil {
		return nil, err
	}
	if count > d.opts.LimitNumICCTags {
		d.opts.Warnf("icc: tag count %d exceeds limit %d", count, d.opts.LimitNumICCTags)
		return nil, newInvalidFormatErrorf("icc: tag count %d exceeds limit %d", count, d.opts.LimitNumICCTags)
	}
	if !r.inRange(iccTagTableOffset, int64(count)*iccTagEntrySize) {
		return nil, newInvalidFormatErrorf("icc: tag table with %d entries exceeds profile size %d", count, len(b))
	}

	for i := range int64(count) {
		pos := iccTagTableOffset + i*iccTagEntrySize
		entrySig, _ := r.fourCC(pos)
		if entrySig != sig {
			continue
		}
		offset, _ := r.read4(pos + 4)
		length, _ := r.read4(pos + 8)
		if length < iccMinTagDataSize || !r.inRange(int64(offset), int64(length)) {
			d.opts.Warnf("icc: tag %q has invalid span offset=%d length=%d", sig, offset, length)
			continue
		}
		return r.bytes(int64(offset), int64(length))
	}

	return nil, newNotFoundErrorf("icc: tag %q", sig)
}
