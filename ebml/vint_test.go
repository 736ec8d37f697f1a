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

package ebml_test

import (
	"bytes"
	"errors"
	"testing"
	"testing/quick"

	"github.com/seqsense/webmcontainer/ebml"
)

func TestDecodeVINT(t *testing.T) {
	testData := map[string]struct {
		input []byte
		value uint64
		width int
		err   error
	}{
		"OneByte": {
			input: []byte{0x81},
			value: 0x81,
			width: 1,
		},
		"TwoBytes": {
			input: []byte{0x41, 0x2C},
			value: 0x412C,
			width: 2,
		},
		"FourBytes": {
			input: []byte{0x1A, 0x45, 0xDF, 0xA3},
			value: 0x1A45DFA3,
			width: 4,
		},
		"EightBytes": {
			input: []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x42},
			value: 1<<56 | 0x42,
			width: 8,
		},
		"TrailingBytesIgnored": {
			input: []byte{0x81, 0xFF, 0xFF},
			value: 0x81,
			width: 1,
		},
		"NoMarker": {
			input: []byte{0x00, 0x81},
			err:   ebml.ErrInvalidVINT,
		},
		"Empty": {
			input: []byte{},
			err:   ebml.ErrShortBuffer,
		},
		"Truncated": {
			input: []byte{0x41},
			err:   ebml.ErrShortBuffer,
		},
	}
	for name, tt := range testData {
		tt := tt
		t.Run(name, func(t *testing.T) {
			v, n, err := ebml.DecodeVINT(tt.input)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Expected error '%v', got '%v'", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if v != tt.value || n != tt.width {
				t.Errorf("Expected (0x%X, %d), got (0x%X, %d)", tt.value, tt.width, v, n)
			}
		})
	}
}

func TestDecodeSize(t *testing.T) {
	testData := map[string]struct {
		input   []byte
		size    uint64
		width   int
		unknown bool
	}{
		"OneByte":        {input: []byte{0x85}, size: 5, width: 1},
		"OneByteMax":     {input: []byte{0xFE}, size: 126, width: 1},
		"TwoBytes":       {input: []byte{0x40, 0x7F}, size: 127, width: 2},
		"UnknownOneByte": {input: []byte{0xFF}, width: 1, unknown: true},
		"UnknownEightBytes": {
			input:   []byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			width:   8,
			unknown: true,
		},
	}
	for name, tt := range testData {
		tt := tt
		t.Run(name, func(t *testing.T) {
			size, n, unknown, err := ebml.DecodeSize(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if size != tt.size || n != tt.width || unknown != tt.unknown {
				t.Errorf(
					"Expected (%d, %d, %v), got (%d, %d, %v)",
					tt.size, tt.width, tt.unknown, size, n, unknown,
				)
			}
		})
	}
}

func TestAppendSize_RoundTrip(t *testing.T) {
	roundTrip := func(v uint64) bool {
		v %= ebml.MaxSizeValue + 1
		b, err := ebml.AppendSize(nil, v)
		if err != nil {
			return false
		}
		size, n, unknown, err := ebml.DecodeSize(b)
		if err != nil || unknown {
			return false
		}
		return size == v && n == len(b) && n == ebml.SizeWidth(v)
	}
	if err := quick.Check(roundTrip, nil); err != nil {
		t.Error(err)
	}
}

func TestSizeWidth(t *testing.T) {
	testData := map[string]struct {
		value uint64
		width int
	}{
		"Zero":          {0, 1},
		"OneByteMax":    {1<<7 - 2, 1},
		"TwoByteMin":    {1<<7 - 1, 2},
		"TwoByteMax":    {1<<14 - 2, 2},
		"ThreeByteMin":  {1<<14 - 1, 3},
		"EightByteMax":  {ebml.MaxSizeValue, 8},
		"Unencodeable":  {ebml.MaxSizeValue + 1, 9},
		"AllOnesUInt64": {^uint64(0), 9},
	}
	for name, tt := range testData {
		tt := tt
		t.Run(name, func(t *testing.T) {
			if w := ebml.SizeWidth(tt.value); w != tt.width {
				t.Errorf("Expected width %d for %d, got %d", tt.width, tt.value, w)
			}
		})
	}
}

func TestAppendSizeWidth(t *testing.T) {
	b, err := ebml.AppendSizeWidth(nil, 2, 8)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x02}
	if !bytes.Equal(b, expected) {
		t.Errorf("Expected %v, got %v", expected, b)
	}
	if _, err := ebml.AppendSizeWidth(nil, 127, 1); !errors.Is(err, ebml.ErrValueTooLarge) {
		t.Errorf("Expected error '%v', got '%v'", ebml.ErrValueTooLarge, err)
	}
}

func TestPutSizeWidth(t *testing.T) {
	b, err := ebml.AppendUnknownSize(nil, 8)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := ebml.PutSizeWidth(b, 1234567, 8); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	size, n, unknown, err := ebml.DecodeSize(b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if size != 1234567 || n != 8 || unknown {
		t.Errorf("Expected (1234567, 8, false), got (%d, %d, %v)", size, n, unknown)
	}
}

func TestAppendUnknownSize(t *testing.T) {
	for _, width := range []int{1, 2, 8} {
		b, err := ebml.AppendUnknownSize(nil, width)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(b) != width {
			t.Fatalf("Expected %d bytes, got %d", width, len(b))
		}
		_, n, unknown, err := ebml.DecodeSize(b)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !unknown || n != width {
			t.Errorf("Expected unknown size of width %d, got (%d, %v)", width, n, unknown)
		}
	}
}
