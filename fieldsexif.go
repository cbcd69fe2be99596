// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta

import "fmt"

const (
	byteOrderBigEndian    = 0x4d4d // "MM"
	byteOrderLittleEndian = 0x4949 // "II"
	meaningOfLife         = 42
)

// IFD0 tags.
const (
	tagImageWidth       = 0x0100
	tagImageLength      = 0x0101
	tagImageDescription = 0x010e
	tagMake             = 0x010f
	tagModel            = 0x0110
	tagOrientation      = 0x0112
	tagSoftware         = 0x0131
	tagDateTime         = 0x0132
	tagArtist           = 0x013b
	tagCopyright        = 0x8298
	tagExifIFDPointer   = 0x8769
	tagGPSIFDPointer    = 0x8825
)

// EXIF sub-IFD tags.
const (
	tagExposureTime          = 0x829a
	tagFNumber               = 0x829d
	tagExposureProgram       = 0x8822
	tagISOSpeedRatings       = 0x8827
	tagDateTimeOriginal      = 0x9003
	tagDateTimeDigitized     = 0x9004
	tagExposureBiasValue     = 0x9204
	tagMeteringMode          = 0x9207
	tagFlash                 = 0x9209
	tagFocalLength           = 0x920a
	tagPixelXDimension       = 0xa002
	tagPixelYDimension       = 0xa003
	tagFocalLengthIn35mmFilm = 0xa405
)

// GPS sub-IFD tags.
const (
	tagGPSLatitudeRef  = 0x0001
	tagGPSLatitude     = 0x0002
	tagGPSLongitudeRef = 0x0003
	tagGPSLongitude    = 0x0004
	tagGPSAltitudeRef  = 0x0005
	tagGPSAltitude     = 0x0006
)

// IFD1 (thumbnail) tags.
const (
	tagThumbnailOffset = 0x0201
	tagThumbnailLength = 0x0202
)

// exifType represents the basic tiff tag data types.
type exifType uint16

const (
	exifTypeUnsignedByte  exifType = 1
	exifTypeUnsignedASCII exifType = 2
	exifTypeUnsignedShort exifType = 3
	exifTypeUnsignedLong  exifType = 4
	exifTypeUnsignedRat   exifType = 5
	exifTypeSignedByte    exifType = 6
	exifTypeUndef         exifType = 7
	exifTypeSignedShort   exifType = 8
	exifTypeSignedLong    exifType = 9
	exifTypeSignedRat     exifType = 10
	exifTypeSignedFloat   exifType = 11
	exifTypeSignedDouble  exifType = 12
)

// Size in bytes of each type.
var exifTypeSize = map[exifType]uint32{
	exifTypeUnsignedByte:  1,
	exifTypeUnsignedASCII: 1,
	exifTypeUnsignedShort: 2,
	exifTypeUnsignedLong:  4,
	exifTypeUnsignedRat:   8,
	exifTypeSignedByte:    1,
	exifTypeUndef:         1,
	exifTypeSignedShort:   2,
	exifTypeSignedLong:    4,
	exifTypeSignedRat:     8,
	exifTypeSignedFloat:   4,
	exifTypeSignedDouble:  8,
}

func (t exifType) String() string {
	switch t {
	case exifTypeUnsignedByte:
		return "BYTE"
	case exifTypeUnsignedASCII:
		return "ASCII"
	case exifTypeUnsignedShort:
		return "SHORT"
	case exifTypeUnsignedLong:
		return "LONG"
	case exifTypeUnsignedRat:
		return "RATIONAL"
	case exifTypeSignedByte:
		return "SBYTE"
	case exifTypeUndef:
		return "UNDEFINED"
	case exifTypeSignedShort:
		return "SSHORT"
	case exifTypeSignedLong:
		return "SLONG"
	case exifTypeSignedRat:
		return "SRATIONAL"
	case exifTypeSignedFloat:
		return "FLOAT"
	case exifTypeSignedDouble:
		return "DOUBLE"
	default:
		return fmt.Sprintf("exifType(%d)", uint16(t))
	}
}

// Orientation is the EXIF orientation.
type Orientation uint16

const (
	OrientationUnspecified Orientation = iota
	OrientationNormal
	OrientationFlipH
	OrientationRotate180
	OrientationFlipV
	OrientationTranspose
	OrientationRotate270
	OrientationTransverse
	OrientationRotate90
)

func (o Orientation) valid() bool {
	return o >= OrientationNormal && o <= OrientationRotate90
}

func (o Orientation) String() string {
	switch o {
	case OrientationNormal:
		return "Normal"
	case OrientationFlipH:
		return "FlipH"
	case OrientationRotate180:
		return "Rotate180"
	case OrientationFlipV:
		return "FlipV"
	case OrientationTranspose:
		return "Transpose"
	case OrientationRotate270:
		return "Rotate270"
	case OrientationTransverse:
		return "Transverse"
	case OrientationRotate90:
		return "Rotate90"
	default:
		return "Unspecified"
	}
}

// ExposureProgram is the EXIF exposure program.
type ExposureProgram uint16

const (
	ExposureProgramNotDefined ExposureProgram = iota
	ExposureProgramManual
	ExposureProgramNormal
	ExposureProgramAperturePriority
	ExposureProgramShutterPriority
	ExposureProgramCreative
	ExposureProgramAction
	ExposureProgramPortrait
	ExposureProgramLandscape
)

var exposureProgramNames = [...]string{
	"Not defined",
	"Manual",
	"Normal program",
	"Aperture priority",
	"Shutter priority",
	"Creative program",
	"Action program",
	"Portrait mode",
	"Landscape mode",
}

func (p ExposureProgram) String() string {
	if int(p) < len(exposureProgramNames) {
		return exposureProgramNames[p]
	}
	return fmt.Sprintf("ExposureProgram(%d)", uint16(p))
}

// MeteringMode is the EXIF metering mode.
type MeteringMode uint16

const (
	MeteringModeUnknown               MeteringMode = 0
	MeteringModeAverage               MeteringMode = 1
	MeteringModeCenterWeightedAverage MeteringMode = 2
	MeteringModeSpot                  MeteringMode = 3
	MeteringModeMultiSpot             MeteringMode = 4
	MeteringModePattern               MeteringMode = 5
	MeteringModePartial               MeteringMode = 6
	MeteringModeOther                 MeteringMode = 255
)

func (m MeteringMode) String() string {
	switch m {
	case MeteringModeUnknown:
		return "Unknown"
	case MeteringModeAverage:
		return "Average"
	case MeteringModeCenterWeightedAverage:
		return "Center-weighted average"
	case MeteringModeSpot:
		return "Spot"
	case MeteringModeMultiSpot:
		return "Multi-spot"
	case MeteringModePattern:
		return "Pattern"
	case MeteringModePartial:
		return "Partial"
	case MeteringModeOther:
		return "Other"
	default:
		return fmt.Sprintf("MeteringMode(%d)", uint16(m))
	}
}
