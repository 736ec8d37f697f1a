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

// Package webmtest encodes and decodes WebM documents with
// github.com/at-wat/ebml-go. It is the independent reference
// implementation the package tests compare against, and the builder of
// parser input fixtures.
package webmtest

import (
	"bytes"

	"github.com/at-wat/ebml-go"
)

// Header returns an EBML header describing a current WebM document.
func Header() EBMLHeader {
	return EBMLHeader{
		EBMLVersion:            1,
		EBMLReadVersion:        1,
		EBMLMaxIDLength:        4,
		EBMLMaxSizeLength:      8,
		EBMLDocType:            "webm",
		EBMLDocTypeVersion:     4,
		EBMLDocTypeReadVersion: 2,
	}
}

// Marshal encodes a sized document.
func Marshal(c *Container) ([]byte, error) {
	var buf bytes.Buffer
	if err := ebml.Marshal(c, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalStream encodes a streamed document with unknown segment and
// cluster sizes.
func MarshalStream(c *StreamContainer) ([]byte, error) {
	var buf bytes.Buffer
	if err := ebml.Marshal(c, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into the sized document form.
func Unmarshal(data []byte) (*Container, error) {
	var c Container
	if err := ebml.Unmarshal(bytes.NewReader(data), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// VideoTrack returns a minimal video track entry.
func VideoTrack(number, width, height uint64, codecID string) TrackEntry {
	return TrackEntry{
		TrackNumber: number,
		TrackUID:    number,
		TrackType:   1,
		CodecID:     codecID,
		Video: &Video{
			PixelWidth:  width,
			PixelHeight: height,
		},
	}
}

// AudioTrack returns a minimal audio track entry.
func AudioTrack(number uint64, samplingFrequency float64, channels uint64, codecID string) TrackEntry {
	return TrackEntry{
		TrackNumber: number,
		TrackUID:    number,
		TrackType:   2,
		CodecID:     codecID,
		Audio: &Audio{
			SamplingFrequency: samplingFrequency,
			Channels:          channels,
		},
	}
}
