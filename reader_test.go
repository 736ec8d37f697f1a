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

package webmcontainer

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

type sliceReader struct {
	buf []byte
}

func (r *sliceReader) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(r.buf)) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *sliceReader) Length() (int64, int64) {
	n := int64(len(r.buf))
	return n, n
}

type failReader struct {
	err error
}

func (r *failReader) ReadAt(p []byte, off int64) (int, error) {
	return 0, r.err
}

func (r *failReader) Length() (int64, int64) {
	return 8, 8
}

func TestBytesReader_ReadAt(t *testing.T) {
	r := NewBytesReader([]byte{0x01, 0x02, 0x03, 0x04})

	testCases := map[string]struct {
		off      int64
		size     int
		expected []byte
		err      error
	}{
		"Full":           {0, 4, []byte{0x01, 0x02, 0x03, 0x04}, nil},
		"Offset":         {2, 2, []byte{0x03, 0x04}, nil},
		"Short":          {3, 4, []byte{0x04}, io.EOF},
		"PastEnd":        {4, 1, nil, io.EOF},
		"NegativeOffset": {-1, 1, nil, ErrInvalidArgument},
	}
	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			p := make([]byte, testCase.size)
			n, err := r.ReadAt(p, testCase.off)
			if !errors.Is(err, testCase.err) {
				t.Errorf("Expected error: '%v', got: '%v'", testCase.err, err)
			}
			if n != len(testCase.expected) {
				t.Errorf("Expected read length: '%v', got: '%v'", len(testCase.expected), n)
			}
			if !bytes.Equal(p[:n], testCase.expected) {
				t.Errorf("Expected data: '%v', got: '%v'", testCase.expected, p[:n])
			}
		})
	}
}

func TestBytesReader_Length(t *testing.T) {
	r := NewBytesReader(make([]byte, 17))
	total, avail := r.Length()
	if total != 17 || avail != 17 {
		t.Errorf("Expected length (17, 17), got: (%d, %d)", total, avail)
	}
}

func Test_readAvailable(t *testing.T) {
	t.Run("BorrowsBytesReader", func(t *testing.T) {
		buf := []byte{0x01, 0x02, 0x03}
		got, err := readAvailable(NewBytesReader(buf))
		if err != nil {
			t.Fatalf("Failed to read: %v", err)
		}
		if len(got) != len(buf) || &got[0] != &buf[0] {
			t.Error("Expected the buffer to be borrowed without copy")
		}
	})
	t.Run("DrainsGenericReader", func(t *testing.T) {
		buf := []byte{0x0A, 0x0B, 0x0C, 0x0D}
		got, err := readAvailable(&sliceReader{buf: buf})
		if err != nil {
			t.Fatalf("Failed to read: %v", err)
		}
		if !bytes.Equal(got, buf) {
			t.Errorf("Expected data: '%v', got: '%v'", buf, got)
		}
	})
	t.Run("FailingReader", func(t *testing.T) {
		errRead := errors.New("read failed")
		_, err := readAvailable(&failReader{err: errRead})
		if !errors.Is(err, ErrIO) {
			t.Errorf("Expected ErrIO, got: '%v'", err)
		}
	})
}

func TestNewParserFromReader_Error(t *testing.T) {
	_, err := NewParserFromReader(&failReader{err: errors.New("read failed")})
	if !errors.Is(err, ErrIO) {
		t.Errorf("Expected ErrIO, got: '%v'", err)
	}
}
