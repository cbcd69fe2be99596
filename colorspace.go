// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta

import (
	"fmt"
)

// colorTolerance is the maximum per component difference when comparing
// XYZ values against the reference values below.
const colorTolerance = 0.002

// Reference white points.
var (
	whitePointD50 = XYZ{0.9642, 1.0, 0.8249}
	whitePointD65 = XYZ{0.9505, 1.0, 1.0890}
)

// Reference colorants, chromatically adapted to the D50 PCS illuminant
// as stored in the rXYZ/gXYZ/bXYZ tags.
var (
	primariesSRGB = [3]XYZ{
		{0.4361, 0.2225, 0.0139},
		{0.3851, 0.7169, 0.0971},
		{0.1431, 0.0606, 0.7141},
	}
	primariesDisplayP3 = [3]XYZ{
		{0.5151, 0.2412, -0.0011},
		{0.2920, 0.6922, 0.0419},
		{0.1571, 0.0666, 0.7841},
	}
	primariesRec2020 = [3]XYZ{
		{0.6734, 0.2790, -0.0019},
		{0.1656, 0.6753, 0.0300},
		{0.1251, 0.0456, 0.7973},
	}
)

// ColorSpace is the color space described by an ICC profile, synthesized from
// its white point, colorant, tone curve and CICP tags.
// Every field is nil if the corresponding tag is absent or could not be decoded.
type ColorSpace struct {
	WhitePoint *XYZ
	Red        *XYZ
	Green      *XYZ
	Blue       *XYZ

	// TransferFunction is the classification of the red (or gray) TRC,
	// overridden by the CICP transfer code for sRGB, PQ and HLG.
	TransferFunction *TransferFunction

	// Gamma is set for pure power curves only.
	Gamma *float32

	CICP *CICP
}

func (d *Decoder) decodeColorSpace(b []byte) (ColorSpace, error) {
	var cs ColorSpace
	if _, err := d.decodeICCHeader(b); err != nil {
		return cs, err
	}

	var found bool

	// lookup returns nil for absent or broken tags; only a broken tag table
	// fails the whole decode.
	lookup := func(sig fourCC) ([]byte, error) {
		tag, err := d.findICCTag(b, sig)
		if err != nil {
			if IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return tag, nil
	}

	xyz := func(sig fourCC) (*XYZ, error) {
		tag, err := lookup(sig)
		if err != nil || tag == nil {
			return nil, err
		}
		v, err := decodeICCXYZ(tag)
		if err != nil {
			d.opts.Warnf("icc: tag %q: %s", sig, err)
			return nil, nil
		}
		found = true
		return &v, nil
	}

	var err error
	if cs.WhitePoint, err = xyz(iccTagWhitePoint); err != nil {
		return cs, err
	}
	if cs.Red, err = xyz(iccTagRedXYZ); err != nil {
		return cs, err
	}
	if cs.Green, err = xyz(iccTagGreenXYZ); err != nil {
		return cs, err
	}
	if cs.Blue, err = xyz(iccTagBlueXYZ); err != nil {
		return cs, err
	}

	trc, err := lookup(iccTagRedTRC)
	if err != nil {
		return cs, err
	}
	if trc == nil {
		// Gray profiles.
		if trc, err = lookup(iccTagGrayTRC); err != nil {
			return cs, err
		}
	}
	if trc != nil {
		curve, err := d.decodeICCToneCurve(trc)
		if err != nil {
			d.opts.Warnf("icc: tone curve: %s", err)
		} else {
			found = true
			tf := curve.function
			cs.TransferFunction = &tf
			cs.Gamma = curve.gamma
		}
	}

	cicpTag, err := lookup(iccTagCICP)
	if err != nil {
		return cs, err
	}
	if cicpTag != nil {
		cicp, err := decodeICCCICP(cicpTag)
		if err != nil {
			d.opts.Warnf("icc: cicp: %s", err)
		} else {
			found = true
			cs.CICP = &cicp
			// CICP is the authoritative signal for HDR transfer functions.
			if tf, ok := cicp.Transfer.transferFunction(); ok {
				cs.TransferFunction = &tf
				cs.Gamma = nil
			}
		}
	}

	if !found {
		return cs, newNotFoundErrorf("icc: no color space tags")
	}

	return cs, nil
}

func (cs ColorSpace) transfer() TransferFunction {
	if cs.TransferFunction == nil {
		return TransferFunctionUnknown
	}
	return *cs.TransferFunction
}

func (cs ColorSpace) hasPrimaries(ref [3]XYZ) bool {
	if cs.Red == nil || cs.Green == nil || cs.Blue == nil {
		return false
	}
	return cs.Red.approxEqual(ref[0], colorTolerance) &&
		cs.Green.approxEqual(ref[1], colorTolerance) &&
		cs.Blue.approxEqual(ref[2], colorTolerance)
}

// cicpPrimaries returns the CICP primaries if known, else Unknown.
func (cs ColorSpace) cicpPrimaries() CICPPrimaries {
	if cs.CICP == nil {
		return CICPPrimariesUnknown
	}
	return cs.CICP.Primaries
}

// HasSRGBPrimaries reports whether the colorants match sRGB/BT.709.
func (cs ColorSpace) HasSRGBPrimaries() bool {
	return cs.hasPrimaries(primariesSRGB)
}

// HasDisplayP3Primaries reports whether the colorants match Display P3.
func (cs ColorSpace) HasDisplayP3Primaries() bool {
	return cs.hasPrimaries(primariesDisplayP3)
}

// HasRec2020Primaries reports whether the colorants match Rec. 2020.
func (cs ColorSpace) HasRec2020Primaries() bool {
	return cs.hasPrimaries(primariesRec2020)
}

// Gamut returns the primaries of the profile.
// A recognized CICP primaries code takes precedence over the colorant tags.
func (cs ColorSpace) Gamut() CICPPrimaries {
	if p := cs.cicpPrimaries(); p != CICPPrimariesUnknown {
		return p
	}
	switch {
	case cs.HasDisplayP3Primaries():
		return CICPPrimariesDisplayP3
	case cs.HasRec2020Primaries():
		return CICPPrimariesBT2020
	case cs.HasSRGBPrimaries():
		return CICPPrimariesBT709
	default:
		return CICPPrimariesUnknown
	}
}

// IsD65 reports whether the white point is D65.
func (cs ColorSpace) IsD65() bool {
	return cs.WhitePoint != nil && cs.WhitePoint.approxEqual(whitePointD65, colorTolerance)
}

// IsD50 reports whether the white point is D50.
func (cs ColorSpace) IsD50() bool {
	return cs.WhitePoint != nil && cs.WhitePoint.approxEqual(whitePointD50, colorTolerance)
}

// IsPQ reports whether the transfer function is SMPTE ST 2084 (PQ).
func (cs ColorSpace) IsPQ() bool {
	return cs.transfer() == TransferFunctionPQ
}

// IsHLG reports whether the transfer function is Hybrid Log-Gamma.
func (cs ColorSpace) IsHLG() bool {
	return cs.transfer() == TransferFunctionHLG
}

// IsHDR reports whether the transfer function is PQ or HLG.
func (cs ColorSpace) IsHDR() bool {
	return cs.IsPQ() || cs.IsHLG()
}

// IsLinear reports whether the transfer function is linear.
func (cs ColorSpace) IsLinear() bool {
	return cs.transfer() == TransferFunctionLinear
}

// IsSRGB reports whether this looks like an SDR sRGB profile.
func (cs ColorSpace) IsSRGB() bool {
	return cs.Gamut() == CICPPrimariesBT709 && !cs.IsHDR() && !cs.IsLinear()
}

// IsDisplayP3 reports whether this looks like an SDR Display P3 profile.
func (cs ColorSpace) IsDisplayP3() bool {
	return cs.Gamut() == CICPPrimariesDisplayP3 && !cs.IsHDR() && !cs.IsLinear()
}

// IsRec2020 reports whether this uses Rec. 2020 primaries, with any transfer function.
func (cs ColorSpace) IsRec2020() bool {
	return cs.Gamut() == CICPPrimariesBT2020
}

// Describe returns a short human readable label, e.g. "Display P3 (PQ)".
func (cs ColorSpace) Describe() string {
	var gamut string
	switch cs.Gamut() {
	case CICPPrimariesDisplayP3:
		gamut = "Display P3"
	case CICPPrimariesBT2020:
		gamut = "Rec. 2020"
	case CICPPrimariesBT709:
		gamut = "sRGB"
	default:
		gamut = "Custom"
	}

	switch tf := cs.transfer(); tf {
	case TransferFunctionUnknown:
		return gamut
	case TransferFunctionGamma:
		if cs.Gamma != nil {
			return fmt.Sprintf("%s (Gamma %.2f)", gamut, *cs.Gamma)
		}
		return fmt.Sprintf("%s (%s)", gamut, tf)
	default:
		return fmt.Sprintf("%s (%s)", gamut, tf)
	}
}
