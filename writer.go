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

	"github.com/seqsense/webmcontainer/ebml"
)

// Writer is the seekable sink the Muxer emits into. Seeking back and
// rewriting is required: segment size, seek head and duration are
// patched during finalize. ElementStartNotify is informational; it is
// invoked before each top level element is written.
type Writer interface {
	Write(p []byte) (int, error)
	Position() int64
	Seek(pos int64) error
	ElementStartNotify(id ebml.ID, pos int64)
}

// BytesWriter is a growable in-memory Writer. Seeking past the end
// zero-fills the gap; writing before the end overwrites in place.
type BytesWriter struct {
	buf    []byte
	pos    int64
	notify func(id ebml.ID, pos int64)
}

func NewBytesWriter() *BytesWriter {
	return &BytesWriter{}
}

func (w *BytesWriter) Write(p []byte) (int, error) {
	end := w.pos + int64(len(p))
	if grow := end - int64(len(w.buf)); grow > 0 {
		w.buf = append(w.buf, make([]byte, grow)...)
	}
	copy(w.buf[w.pos:end], p)
	w.pos = end
	return len(p), nil
}

func (w *BytesWriter) Position() int64 {
	return w.pos
}

func (w *BytesWriter) Seek(pos int64) error {
	if pos < 0 {
		return fmt.Errorf("negative write position %d: %w", pos, ErrInvalidArgument)
	}
	if grow := pos - int64(len(w.buf)); grow > 0 {
		w.buf = append(w.buf, make([]byte, grow)...)
	}
	w.pos = pos
	return nil
}

func (w *BytesWriter) ElementStartNotify(id ebml.ID, pos int64) {
	if w.notify != nil {
		w.notify(id, pos)
	}
}

// SetElementStartNotify installs a callback observing top level
// element starts, mainly for inspection in tests and tooling.
func (w *BytesWriter) SetElementStartNotify(fn func(id ebml.ID, pos int64)) {
	w.notify = fn
}

// Bytes returns the written buffer. The slice is shared with the
// writer; it is not a copy.
func (w *BytesWriter) Bytes() []byte {
	return w.buf
}

// Len returns the current buffer length.
func (w *BytesWriter) Len() int {
	return len(w.buf)
}
