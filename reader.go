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
	"fmt"
	"io"
)

// Reader is the pull-mode random access source consumed by the
// Parser. Length reports the total stream size and the number of
// bytes currently available; the Parser never reads past available.
type Reader interface {
	io.ReaderAt
	Length() (total, available int64)
}

// BytesReader adapts a resident byte slice to the Reader interface
// without copying.
type BytesReader struct {
	buf []byte
}

func NewBytesReader(buf []byte) *BytesReader {
	return &BytesReader{buf: buf}
}

func (r *BytesReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative read offset %d: %w", off, ErrInvalidArgument)
	}
	if off >= int64(len(r.buf)) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *BytesReader) Length() (int64, int64) {
	n := int64(len(r.buf))
	return n, n
}

// readAvailable materializes the available region of r as one byte
// slice. The BytesReader fast path borrows the slice; other Readers
// are drained through ReadAt.
func readAvailable(r Reader) ([]byte, error) {
	if br, ok := r.(*BytesReader); ok {
		return br.buf, nil
	}
	_, avail := r.Length()
	if avail < 0 {
		return nil, fmt.Errorf("reader reported negative length %d: %w", avail, ErrIO)
	}
	buf := make([]byte, avail)
	n, err := r.ReadAt(buf, 0)
	if int64(n) < avail {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("short read %d of %d bytes: %v: %w", n, avail, err, ErrIO)
	}
	return buf, nil
}
