// Copyright 2025 SEQSENSE, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ebml

import (
	"math/bits"
)

// MaxSizeWidth is the widest size VINT accepted and produced, in bytes.
const MaxSizeWidth = 8

// MaxSizeValue is the largest value representable by a size VINT.
// The all-ones pattern of each width is reserved as the unknown size
// sentinel, so an 8 byte VINT tops out one below 2^56-1.
const MaxSizeValue = uint64(1)<<(7*MaxSizeWidth) - 2

// vintWidth returns the width in bytes encoded in the leading byte of
// a VINT, or 0 if the byte has no marker bit.
func vintWidth(b byte) int {
	if b == 0 {
		return 0
	}
	return bits.LeadingZeros8(b) + 1
}

// DecodeVINT decodes the variable length integer at the start of b,
// keeping the marker bit in the returned value. It reports the number
// of bytes consumed.
func DecodeVINT(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrShortBuffer
	}
	w := vintWidth(b[0])
	if w == 0 || w > MaxSizeWidth {
		return 0, 0, ErrInvalidVINT
	}
	if len(b) < w {
		return 0, 0, ErrShortBuffer
	}
	v := uint64(b[0])
	for i := 1; i < w; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v, w, nil
}

// DecodeSize decodes a size VINT at the start of b, stripping the
// marker bit. unknown reports the reserved all-ones pattern used by
// streamed files for elements of indeterminate length.
func DecodeSize(b []byte) (size uint64, n int, unknown bool, err error) {
	v, w, err := DecodeVINT(b)
	if err != nil {
		return 0, 0, false, err
	}
	v &^= uint64(1) << uint(7*w)
	if v == uint64(1)<<uint(7*w)-1 {
		return 0, w, true, nil
	}
	return v, w, false, nil
}

// SizeWidth returns the minimal number of bytes needed to encode v as
// a size VINT. The all-ones sentinel of each width is skipped, so e.g.
// 127 takes two bytes while 126 takes one.
func SizeWidth(v uint64) int {
	for w := 1; w <= MaxSizeWidth; w++ {
		if v < uint64(1)<<uint(7*w)-1 {
			return w
		}
	}
	return MaxSizeWidth + 1
}

// AppendSize appends v to dst as a minimal width size VINT.
func AppendSize(dst []byte, v uint64) ([]byte, error) {
	w := SizeWidth(v)
	if w > MaxSizeWidth {
		return dst, ErrValueTooLarge
	}
	return appendSizeWidth(dst, v, w), nil
}

// AppendSizeWidth appends v to dst as a size VINT of exactly width
// bytes. Fixed widths are used for fields that are reserved first and
// patched later.
func AppendSizeWidth(dst []byte, v uint64, width int) ([]byte, error) {
	if width < 1 || width > MaxSizeWidth {
		return dst, ErrInvalidVINT
	}
	if SizeWidth(v) > width {
		return dst, ErrValueTooLarge
	}
	return appendSizeWidth(dst, v, width), nil
}

func appendSizeWidth(dst []byte, v uint64, w int) []byte {
	v |= uint64(1) << uint(7*w)
	for i := w - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>uint(8*i)))
	}
	return dst
}

// PutSizeWidth overwrites b[:width] with v encoded as a size VINT of
// exactly width bytes.
func PutSizeWidth(b []byte, v uint64, width int) error {
	if width < 1 || width > MaxSizeWidth || len(b) < width {
		return ErrInvalidVINT
	}
	if SizeWidth(v) > width {
		return ErrValueTooLarge
	}
	v |= uint64(1) << uint(7*width)
	for i := 0; i < width; i++ {
		b[i] = byte(v >> uint(8*(width-1-i)))
	}
	return nil
}

// AppendUnknownSize appends the unknown size sentinel at the given
// width.
func AppendUnknownSize(dst []byte, width int) ([]byte, error) {
	if width < 1 || width > MaxSizeWidth {
		return dst, ErrInvalidVINT
	}
	return appendSizeWidth(dst, uint64(1)<<uint(7*width)-1, width), nil
}
