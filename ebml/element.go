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
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Header is a decoded element header. Size is meaningless when Unknown
// is set; such elements run until a sibling of their parent appears.
type Header struct {
	ID        ID
	Size      uint64
	HeaderLen int
	Unknown   bool
}

// DecodeHeader decodes the element header at the start of b. Payload
// bounds are the caller's to check against the parent element.
func DecodeHeader(b []byte) (Header, error) {
	id, n, err := DecodeID(b)
	if err != nil {
		return Header{}, fmt.Errorf("element id: %w", err)
	}
	size, m, unknown, err := DecodeSize(b[n:])
	if err != nil {
		return Header{}, fmt.Errorf("element %s size: %w", id, err)
	}
	return Header{ID: id, Size: size, HeaderLen: n + m, Unknown: unknown}, nil
}

// DecodeUint decodes an unsigned integer payload of zero to eight
// bytes.
func DecodeUint(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, ErrInvalidValue
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// DecodeInt decodes a signed integer payload of zero to eight bytes.
func DecodeInt(b []byte) (int64, error) {
	if len(b) > 8 {
		return 0, ErrInvalidValue
	}
	if len(b) == 0 {
		return 0, nil
	}
	v := int64(int8(b[0]))
	for _, c := range b[1:] {
		v = v<<8 | int64(c)
	}
	return v, nil
}

// DecodeFloat decodes a floating point payload of zero, four or eight
// bytes.
func DecodeFloat(b []byte) (float64, error) {
	switch len(b) {
	case 0:
		return 0, nil
	case 4:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case 8:
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	default:
		return 0, ErrInvalidValue
	}
}

// DecodeString decodes a string payload, dropping zero padding.
func DecodeString(b []byte) string {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}

var millenniumStart = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// DecodeDate decodes a date payload, nanoseconds relative to
// 2001-01-01T00:00:00 UTC.
func DecodeDate(b []byte) (time.Time, error) {
	ns, err := DecodeInt(b)
	if err != nil {
		return time.Time{}, err
	}
	return millenniumStart.Add(time.Duration(ns)), nil
}

func uintWidth(v uint64) int {
	w := 1
	for v >= 1<<8 {
		v >>= 8
		w++
	}
	return w
}

// AppendElement appends a complete element with a minimal width size
// VINT. Master elements pass their already assembled children as the
// payload.
func AppendElement(dst []byte, id ID, payload []byte) ([]byte, error) {
	dst, err := AppendID(dst, id)
	if err != nil {
		return dst, err
	}
	dst, err = AppendSize(dst, uint64(len(payload)))
	if err != nil {
		return dst, err
	}
	return append(dst, payload...), nil
}

// AppendUint appends an unsigned integer element at minimal width.
func AppendUint(dst []byte, id ID, v uint64) ([]byte, error) {
	return AppendUintWidth(dst, id, v, uintWidth(v))
}

// AppendUintWidth appends an unsigned integer element at a fixed
// width.
func AppendUintWidth(dst []byte, id ID, v uint64, width int) ([]byte, error) {
	if width < 1 || width > 8 || uintWidth(v) > width {
		return dst, ErrValueTooLarge
	}
	dst, err := AppendID(dst, id)
	if err != nil {
		return dst, err
	}
	if dst, err = AppendSize(dst, uint64(width)); err != nil {
		return dst, err
	}
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>uint(8*i)))
	}
	return dst, nil
}

// AppendFloat appends a floating point element, always eight bytes so
// the payload can be patched in place later.
func AppendFloat(dst []byte, id ID, v float64) ([]byte, error) {
	dst, err := AppendID(dst, id)
	if err != nil {
		return dst, err
	}
	if dst, err = AppendSize(dst, 8); err != nil {
		return dst, err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	return append(dst, buf[:]...), nil
}

// PutFloat64 overwrites b[:8] with the eight byte encoding of v.
func PutFloat64(b []byte, v float64) error {
	if len(b) < 8 {
		return ErrShortBuffer
	}
	binary.BigEndian.PutUint64(b[:8], math.Float64bits(v))
	return nil
}

// AppendString appends a string element.
func AppendString(dst []byte, id ID, s string) ([]byte, error) {
	dst, err := AppendID(dst, id)
	if err != nil {
		return dst, err
	}
	if dst, err = AppendSize(dst, uint64(len(s))); err != nil {
		return dst, err
	}
	return append(dst, s...), nil
}

// AppendBinary appends a binary element.
func AppendBinary(dst []byte, id ID, p []byte) ([]byte, error) {
	return AppendElement(dst, id, p)
}

// AppendDate appends a date element.
func AppendDate(dst []byte, id ID, t time.Time) ([]byte, error) {
	dst, err := AppendID(dst, id)
	if err != nil {
		return dst, err
	}
	if dst, err = AppendSize(dst, 8); err != nil {
		return dst, err
	}
	ns := t.Sub(millenniumStart).Nanoseconds()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(ns))
	return append(dst, buf[:]...), nil
}

// AppendVoid appends a Void element occupying exactly total bytes,
// header included. total must be at least two.
func AppendVoid(dst []byte, total int) ([]byte, error) {
	if total < 2 {
		return dst, ErrValueTooLarge
	}
	for sw := 1; sw <= MaxSizeWidth; sw++ {
		payload := total - 1 - sw
		if payload < 0 {
			break
		}
		if SizeWidth(uint64(payload)) <= sw {
			dst = append(dst, byte(IDVoid))
			dst = appendSizeWidth(dst, uint64(payload), sw)
			return append(dst, make([]byte, payload)...), nil
		}
	}
	return dst, ErrValueTooLarge
}
