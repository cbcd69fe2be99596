// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta

import (
	"encoding/binary"
	"math"
	"strings"

	xunicode "golang.org/x/text/encoding/unicode"
)

// XYZ is a CIE XYZ tristimulus value.
type XYZ struct {
	X, Y, Z float32
}

// approxEqual reports whether all components are within tol of o.
func (v XYZ) approxEqual(o XYZ, tol float64) bool {
	return math.Abs(float64(v.X-o.X)) <= tol &&
		math.Abs(float64(v.Y-o.Y)) <= tol &&
		math.Abs(float64(v.Z-o.Z)) <= tol
}

// TransferFunction classifies a tone reproduction curve.
type TransferFunction int

const (
	TransferFunctionUnknown TransferFunction = iota
	TransferFunctionLinear
	TransferFunctionGamma
	TransferFunctionParametric
	TransferFunctionLookupTable
	TransferFunctionSRGB
	TransferFunctionPQ
	TransferFunctionHLG
)

func (t TransferFunction) String() string {
	switch t {
	case TransferFunctionLinear:
		return "Linear"
	case TransferFunctionGamma:
		return "Gamma"
	case TransferFunctionParametric:
		return "Parametric"
	case TransferFunctionLookupTable:
		return "LookupTable"
	case TransferFunctionSRGB:
		return "sRGB"
	case TransferFunctionPQ:
		return "PQ"
	case TransferFunctionHLG:
		return "HLG"
	default:
		return "Unknown"
	}
}

// toneCurve is the decoded 'rTRC'/'kTRC' tag.
type toneCurve struct {
	function TransferFunction
	// gamma is only set for the pure power curve forms.
	gamma *float32
}

// CICPPrimaries is a subset of the ITU-T H.273 colour primaries code points.
type CICPPrimaries int

const (
	CICPPrimariesUnknown CICPPrimaries = iota
	CICPPrimariesBT709
	CICPPrimariesBT2020
	CICPPrimariesDisplayP3
)

var cicpPrimariesCodes = map[uint8]CICPPrimaries{
	1:  CICPPrimariesBT709,
	9:  CICPPrimariesBT2020,
	12: CICPPrimariesDisplayP3,
}

func (p CICPPrimaries) String() string {
	switch p {
	case CICPPrimariesBT709:
		return "BT.709"
	case CICPPrimariesBT2020:
		return "BT.2020"
	case CICPPrimariesDisplayP3:
		return "Display P3"
	default:
		return "Unknown"
	}
}

// CICPTransfer is a subset of the ITU-T H.273 transfer characteristics code points.
type CICPTransfer int

const (
	CICPTransferUnknown CICPTransfer = iota
	CICPTransferBT709
	CICPTransferSRGB
	CICPTransferBT2020_10
	CICPTransferBT2020_12
	CICPTransferPQ
	CICPTransferHLG
)

var cicpTransferCodes = map[uint8]CICPTransfer{
	1:  CICPTransferBT709,
	13: CICPTransferSRGB,
	14: CICPTransferBT2020_10,
	15: CICPTransferBT2020_12,
	16: CICPTransferPQ,
	18: CICPTransferHLG,
}

func (t CICPTransfer) String() string {
	switch t {
	case CICPTransferBT709:
		return "BT.709"
	case CICPTransferSRGB:
		return "sRGB"
	case CICPTransferBT2020_10:
		return "BT.2020 10-bit"
	case CICPTransferBT2020_12:
		return "BT.2020 12-bit"
	case CICPTransferPQ:
		return "PQ"
	case CICPTransferHLG:
		return "HLG"
	default:
		return "Unknown"
	}
}

// transferFunction returns the TRC classification this code point overrides,
// if any.
func (t CICPTransfer) transferFunction() (TransferFunction, bool) {
	switch t {
	case CICPTransferPQ:
		return TransferFunctionPQ, true
	case CICPTransferHLG:
		return TransferFunctionHLG, true
	case CICPTransferSRGB:
		return TransferFunctionSRGB, true
	default:
		return TransferFunctionUnknown, false
	}
}

// CICP holds the coding-independent code points from the 'cicp' tag.
type CICP struct {
	Primaries CICPPrimaries
	Transfer  CICPTransfer

	// The raw code points, also for values not mapped above.
	PrimariesCode          uint8
	TransferCode           uint8
	MatrixCoefficientsCode uint8
	FullRange              bool
}

func iccTagType(tag []byte) (fourCC, error) {
	return newByteReader(tag, binary.BigEndian).fourCC(0)
}

// decodeICCText decodes a 'desc' tag in any of its three encodings.
func (d *Decoder) decodeICCText(tag []byte) (string, error) {
	typ, err := iccTagType(tag)
	if err != nil {
		return "", err
	}
	switch typ {
	case iccTypeMultiLocalizedUnicode:
		return decodeMultiLocalizedUnicode(tag)
	case iccTypeText:
		return toString(trimTrailingNulls(tag[8:])), nil
	case iccTypeTextDescription:
		return decodeTextDescription(tag)
	default:
		d.opts.Warnf("icc: unsupported text type %q", typ)
		return "", newNotFoundErrorf("icc: unsupported text type %q", typ)
	}
}

// decodeMultiLocalizedUnicode returns the first record of a v4 'mluc' tag.
// Offsets in the record are relative to the start of the tag.
func decodeMultiLocalizedUnicode(tag []byte) (string, error) {
	r := newByteReader(tag, binary.BigEndian)
	count, err := r.read4(8)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", newNotFoundErrorf("icc: mluc tag has no records")
	}
	length, err := r.read4(20)
	if err != nil {
		return "", err
	}
	offset, err := r.read4(24)
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int64(offset), int64(length))
	if err != nil {
		return "", err
	}
	s, err := xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return "", newInvalidFormatError(err)
	}
	return strings.TrimRight(string(s), "\x00"), nil
}

// decodeTextDescription decodes the ASCII part of a v2 'desc' tag.
func decodeTextDescription(tag []byte) (string, error) {
	r := newByteReader(tag, binary.BigEndian)
	length, err := r.read4(8)
	if err != nil {
		return "", err
	}
	b, err := r.bytes(12, int64(length))
	if err != nil {
		return "", err
	}
	return toString(cutAtNull(b)), nil
}

func decodeICCXYZ(tag []byte) (XYZ, error) {
	r := newByteReader(tag, binary.BigEndian)
	typ, err := r.fourCC(0)
	if err != nil {
		return XYZ{}, err
	}
	if typ != iccTypeXYZ {
		return XYZ{}, newInvalidFormatErrorf("icc: expected XYZ type, got %q", typ)
	}
	var v [3]float64
	for i := range v {
		if v[i], err = r.readS15Fixed16(8 + int64(i)*4); err != nil {
			return XYZ{}, err
		}
	}
	return XYZ{X: float32(v[0]), Y: float32(v[1]), Z: float32(v[2])}, nil
}

// classifyGamma returns Linear for gamma values within 0.01 of 1.
func classifyGamma(gamma float64) toneCurve {
	g := float32(gamma)
	if math.Abs(gamma-1) <= 0.01 {
		return toneCurve{function: TransferFunctionLinear, gamma: &g}
	}
	return toneCurve{function: TransferFunctionGamma, gamma: &g}
}

func (d *Decoder) decodeICCToneCurve(tag []byte) (toneCurve, error) {
	r := newByteReader(tag, binary.BigEndian)
	typ, err := r.fourCC(0)
	if err != nil {
		return toneCurve{}, err
	}

	switch typ {
	case iccTypeCurve:
		count, err := r.read4(8)
		if err != nil {
			return toneCurve{}, err
		}
		switch count {
		case 0:
			return classifyGamma(1), nil
		case 1:
			gamma, err := r.readU8Fixed8(12)
			if err != nil {
				return toneCurve{}, err
			}
			return classifyGamma(gamma), nil
		default:
			return toneCurve{function: TransferFunctionLookupTable}, nil
		}
	case iccTypeParametricCurve:
		functionType, err := r.read2(8)
		if err != nil {
			return toneCurve{}, err
		}
		if functionType != 0 {
			// The other function types add a linear segment; we don't need their parameters.
			return toneCurve{function: TransferFunctionParametric}, nil
		}
		gamma, err := r.readS15Fixed16(12)
		if err != nil {
			return toneCurve{}, err
		}
		return classifyGamma(gamma), nil
	default:
		d.opts.Warnf("icc: unsupported curve type %q", typ)
		return toneCurve{function: TransferFunctionUnknown}, nil
	}
}

func decodeICCCICP(tag []byte) (CICP, error) {
	r := newByteReader(tag, binary.BigEndian)
	typ, err := r.fourCC(0)
	if err != nil {
		return CICP{}, err
	}
	if typ != iccTypeCICP {
		return CICP{}, newInvalidFormatErrorf("icc: expected cicp type, got %q", typ)
	}
	b, err := r.bytes(8, 4)
	if err != nil {
		return CICP{}, err
	}
	return CICP{
		Primaries:              cicpPrimariesCodes[b[0]],
		Transfer:               cicpTransferCodes[b[1]],
		PrimariesCode:          b[0],
		TransferCode:           b[1],
		MatrixCoefficientsCode: b[2],
		FullRange:              b[3] != 0,
	}, nil
}
