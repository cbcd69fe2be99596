// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package jxlmeta

import (
	"encoding"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	_ encoding.TextUnmarshaler = (*Rat[int32])(nil)
	_ encoding.TextMarshaler   = Rat[int32]{}
)

// Rat is a rational number as stored in EXIF.
// The numerator and denominator are kept as read, without normalization,
// so a zero denominator is representable.
type Rat[T int32 | uint32] struct {
	num T
	den T
}

// NewRat returns a new Rat with the given numerator and denominator.
func NewRat[T int32 | uint32](num, den T) Rat[T] {
	return Rat[T]{num: num, den: den}
}

// Num returns the numerator of the rational number.
func (r Rat[T]) Num() T {
	return r.num
}

// Den returns the denominator of the rational number.
func (r Rat[T]) Den() T {
	return r.den
}

// Float64 returns the float64 representation of the rational number.
// A zero denominator returns 0.
func (r Rat[T]) Float64() float64 {
	if r.den == 0 {
		return 0
	}
	return float64(r.num) / float64(r.den)
}

// String returns the string representation of the rational number in
// its lowest terms, e.g. "1/250".
// If the denominator is 1, the string will be the numerator only.
// A zero denominator returns "undef".
func (r Rat[T]) String() string {
	if r.den == 0 {
		return "undef"
	}
	num, den := r.num, r.den

	// Remove the greatest common divisor.
	gcd := func(a, b T) T {
		for b != 0 {
			a, b = b, a%b
		}
		return a
	}
	if d := gcd(num, den); d != 0 && d != 1 {
		num, den = num/d, den/d
	}

	// Denominator must be positive.
	if den < 0 {
		num, den = -num, -den
	}

	if den == 1 {
		return fmt.Sprintf("%d", num)
	}
	return fmt.Sprintf("%d/%d", num, den)
}

// Format implements fmt.Formatter so %f and friends print the float value.
func (r Rat[T]) Format(f fmt.State, verb rune) {
	switch verb {
	case 'f', 'F', 'g', 'G', 'e', 'E':
		prec, ok := f.Precision()
		if !ok {
			prec = -1
		}
		fmt.Fprint(f, strconv.FormatFloat(r.Float64(), byte(verb), prec, 64))
	default:
		fmt.Fprint(f, r.String())
	}
}

func (r *Rat[T]) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "undef" {
		r.num, r.den = 0, 0
		return nil
	}
	if !strings.Contains(s, "/") {
		num, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
		}
		r.num = T(num)
		r.den = 1
		return nil
	}
	if _, err := fmt.Sscanf(s, "%d/%d", &r.num, &r.den); err != nil {
		return fmt.Errorf("failed to parse %q as a rational number: %w", s, err)
	}
	return nil
}

func (r Rat[T]) MarshalText() (text []byte, err error) {
	return []byte(r.String()), nil
}

// GPSCoordinate is a GPS latitude or longitude as stored in EXIF:
// degrees, minutes and seconds plus a hemisphere reference ('N', 'S', 'E' or 'W').
type GPSCoordinate struct {
	Degrees Rat[uint32]
	Minutes Rat[uint32]
	Seconds Rat[uint32]
	Ref     byte
}

// Decimal returns the coordinate in signed decimal degrees.
// The southern and western hemispheres are negative.
func (c GPSCoordinate) Decimal() float64 {
	d := c.Degrees.Float64() + c.Minutes.Float64()/60 + c.Seconds.Float64()/3600
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	switch c.Ref {
	case 'S', 's', 'W', 'w':
		d = -d
	}
	return d
}

func (c GPSCoordinate) String() string {
	ref := ""
	if c.Ref != 0 {
		ref = " " + string(rune(c.Ref))
	}
	return fmt.Sprintf("%s° %s' %s\"%s", c.Degrees, c.Minutes, c.Seconds, ref)
}

func printableString(s string) string {
	ss := strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)

	return strings.TrimSpace(ss)
}

// toString converts text bytes to a string.
// Bytes that are not valid UTF-8 are decoded as ISO-8859-1, which is what
// most camera firmware writes into ASCII fields when it goes beyond 7 bits.
func toString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// trimTrailingNulls removes trailing NUL bytes.
func trimTrailingNulls(b []byte) []byte {
	hi := len(b)
	for hi > 0 && b[hi-1] == 0 {
		hi--
	}
	return b[:hi]
}

// cutAtNull returns b up to, but not including, the first NUL byte.
func cutAtNull(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
