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

	"github.com/seqsense/webmcontainer/ebml"
)

// SimpleBlock flag bits.
const (
	blockFlagKeyframe    = 0x80
	blockFlagInvisible   = 0x08
	blockFlagLacing      = 0x06
	blockFlagDiscardable = 0x01
)

// Lacing modes, from bits 1-2 of the block flags.
const (
	lacingNone  = 0x0
	lacingXiph  = 0x1
	lacingFixed = 0x2
	lacingEBML  = 0x3
)

// frameCursor is the per-track iteration state. Laced blocks are
// decoded whole; pending holds the laces not yet handed out.
type frameCursor struct {
	started   bool
	exhausted bool

	clusterTime  uint64
	clusterKnown bool
	clusterEnd   int64
	blockOff     int64
	afterCluster int64

	pending []FrameData
}

// ReadNextVideoFrame returns the next frame of the given video track,
// or io.EOF once the segment is exhausted. Cursors of different
// tracks are independent.
func (p *Parser) ReadNextVideoFrame(trackNumber uint64) (*FrameData, error) {
	if err := p.requireFrameTrack(trackNumber, TrackTypeVideo); err != nil {
		return nil, err
	}
	return p.readNextFrame(trackNumber)
}

// ReadNextAudioFrame returns the next frame of the given audio track,
// or io.EOF once the segment is exhausted.
func (p *Parser) ReadNextAudioFrame(trackNumber uint64) (*FrameData, error) {
	if err := p.requireFrameTrack(trackNumber, TrackTypeAudio); err != nil {
		return nil, err
	}
	return p.readNextFrame(trackNumber)
}

func (p *Parser) requireFrameTrack(trackNumber uint64, trackType uint64) error {
	t, err := p.TrackInfoByNumber(trackNumber)
	if err != nil {
		return err
	}
	if t.TrackType != trackType {
		return fmt.Errorf(
			"track %d has type %d, not %d: %w",
			trackNumber, t.TrackType, trackType, ErrInvalidArgument,
		)
	}
	return nil
}

func (p *Parser) readNextFrame(trackNumber uint64) (*FrameData, error) {
	cur, ok := p.cursors[trackNumber]
	if !ok {
		cur = &frameCursor{}
		p.cursors[trackNumber] = cur
	}
	for {
		if len(cur.pending) > 0 {
			f := cur.pending[0]
			cur.pending = cur.pending[1:]
			return &f, nil
		}
		switch {
		case cur.exhausted:
			return nil, io.EOF
		case !cur.started:
			cur.started = true
			if p.firstCluster < 0 {
				cur.exhausted = true
				continue
			}
			p.enterCluster(cur, p.firstCluster)
		case cur.blockOff >= cur.clusterEnd:
			p.advanceCluster(cur)
		default:
			p.stepBlock(cur, trackNumber)
		}
	}
}

// ClusterCount walks the whole cluster sequence and returns the
// number of clusters. Unknown size clusters are traversed block by
// block to find their end, so damage found on the way is logged and
// counted the same way frame iteration counts it.
func (p *Parser) ClusterCount() (uint64, error) {
	if err := p.requireHeaders(); err != nil {
		return 0, err
	}
	if p.firstCluster < 0 {
		return 0, nil
	}
	cur := &frameCursor{started: true}
	p.enterCluster(cur, p.firstCluster)
	var n uint64
	if !cur.exhausted {
		n = 1
	}
	for !cur.exhausted {
		if cur.blockOff >= cur.clusterEnd {
			p.advanceCluster(cur)
			if !cur.exhausted {
				n++
			}
			continue
		}
		// Track 0 is never allocated, so no block matches and no
		// frame payloads are materialized.
		p.stepBlock(cur, 0)
	}
	return n, nil
}

func (p *Parser) enterCluster(cur *frameCursor, off int64) {
	h, err := ebml.DecodeHeader(p.data[off:p.segEnd])
	if err != nil {
		// The caller verified the cluster ID, so only a truncated
		// size reaches this point.
		cur.exhausted = true
		return
	}
	start := off + int64(h.HeaderLen)
	end := p.segEnd
	known := !h.Unknown
	if known {
		if e := start + int64(h.Size); e < end {
			end = e
		}
	}
	cur.clusterTime = 0
	cur.clusterKnown = known
	cur.clusterEnd = end
	cur.blockOff = start
	cur.afterCluster = end
}

// advanceCluster positions the cursor at the next cluster after the
// current one, skipping over non-cluster elements such as trailing
// Cues.
func (p *Parser) advanceCluster(cur *frameCursor) {
	off := cur.afterCluster
	for off < p.segEnd {
		h, err := p.nextChild(off, p.segEnd)
		if err != nil {
			logger.Warnf("Stopping track iteration at malformed element (offset:%d err:%v)", off, err)
			cur.exhausted = true
			return
		}
		if h.ID == ebml.IDCluster {
			p.enterCluster(cur, off)
			return
		}
		if h.Unknown {
			logger.Warnf("Stopping track iteration at unknown size %s (offset:%d)", h.ID, off)
			cur.exhausted = true
			return
		}
		off += int64(h.HeaderLen) + int64(h.Size)
	}
	cur.exhausted = true
}

// skipRestOfCluster abandons the unreadable remainder of the current
// cluster. For an unknown size cluster the next cluster cannot be
// located either, so iteration ends at the segment end.
func (p *Parser) skipRestOfCluster(cur *frameCursor) {
	cur.blockOff = cur.clusterEnd
	if !cur.clusterKnown {
		cur.afterCluster = p.segEnd
	}
}

// recordSkip counts the damaged region starting at off. Independent
// cursors and repeated cluster walks pass the same region again, so
// each offset counts and logs only once.
func (p *Parser) recordSkip(off int64) bool {
	if _, seen := p.skippedAt[off]; seen {
		return false
	}
	p.skippedAt[off] = struct{}{}
	p.skipped++
	return true
}

// stepBlock consumes one element inside the current cluster. It fills
// cur.pending when the element is a block of the wanted track.
func (p *Parser) stepBlock(cur *frameCursor, want uint64) {
	off := cur.blockOff
	h, err := ebml.DecodeHeader(p.data[off:cur.clusterEnd])
	if err != nil {
		if p.recordSkip(off) {
			logger.Warnf("Skipping rest of damaged cluster (offset:%d err:%v)", off, err)
		}
		p.skipRestOfCluster(cur)
		return
	}
	if !cur.clusterKnown && !isClusterChild(h.ID) {
		// End of an unknown size cluster: h is the next top level
		// element, typically the next cluster of a streamed file.
		cur.clusterEnd = off
		cur.afterCluster = off
		return
	}
	if h.Unknown {
		if p.recordSkip(off) {
			logger.Warnf("Skipping rest of cluster with unknown size child %s (offset:%d)", h.ID, off)
		}
		p.skipRestOfCluster(cur)
		return
	}
	payloadStart := off + int64(h.HeaderLen)
	payloadEnd := payloadStart + int64(h.Size)
	if payloadEnd > cur.clusterEnd {
		if p.recordSkip(off) {
			logger.Warnf(
				"Skipping rest of cluster, %s claims %d bytes past bound (offset:%d)",
				h.ID, h.Size, off,
			)
		}
		p.skipRestOfCluster(cur)
		return
	}
	payload := p.data[payloadStart:payloadEnd]

	switch h.ID {
	case ebml.IDTimecode:
		v, err := ebml.DecodeUint(payload)
		if err != nil {
			if p.recordSkip(off) {
				logger.Warnf("Skipping rest of cluster with bad timecode (offset:%d)", off)
			}
			p.skipRestOfCluster(cur)
			return
		}
		cur.clusterTime = v
	case ebml.IDSimpleBlock:
		p.consumeBlock(cur, want, off, payload, true, true)
	case ebml.IDBlockGroup:
		p.consumeBlockGroup(cur, want, off, payload)
	}
	cur.blockOff = payloadEnd
}

func isClusterChild(id ebml.ID) bool {
	switch id {
	case ebml.IDTimecode, ebml.IDPrevSize, ebml.IDPosition,
		ebml.IDSimpleBlock, ebml.IDBlockGroup,
		ebml.IDVoid, ebml.IDCRC32:
		return true
	}
	return false
}

// consumeBlock decodes a SimpleBlock or a bare Block payload and fills
// cur.pending when it belongs to the wanted track. off is the element
// offset of the enclosing block, keyframe applies to all its laces.
func (p *Parser) consumeBlock(cur *frameCursor, want uint64, off int64, body []byte, flagIsKey, keyframe bool) {
	trackNumber, ok := blockTrackNumber(body)
	if !ok {
		if p.recordSkip(off) {
			logger.Warnf("Skipping block with invalid track number (offset:%d)", off)
		}
		return
	}
	if trackNumber != want {
		if _, known := p.trackIndex[trackNumber]; !known {
			logger.Debugf("Ignoring block of unknown track %d", trackNumber)
		}
		return
	}
	frames, ok := p.blockFrames(body, cur.clusterTime, flagIsKey, keyframe)
	if !ok {
		if p.recordSkip(off) {
			logger.Warnf("Skipping corrupted block (track:%d clusterTime:%d)", trackNumber, cur.clusterTime)
		}
		return
	}
	cur.pending = frames
}

// consumeBlockGroup handles BlockGroup wrapping. A group without a
// ReferenceBlock holds a keyframe.
func (p *Parser) consumeBlockGroup(cur *frameCursor, want uint64, off int64, payload []byte) {
	var block []byte
	hasReference := false
	for pos := 0; pos < len(payload); {
		h, err := ebml.DecodeHeader(payload[pos:])
		if err != nil || h.Unknown || pos+h.HeaderLen+int(h.Size) > len(payload) {
			if p.recordSkip(off) {
				logger.Warnf("Skipping damaged block group (offset:%d)", off)
			}
			return
		}
		switch h.ID {
		case ebml.IDBlock:
			block = payload[pos+h.HeaderLen : pos+h.HeaderLen+int(h.Size)]
		case ebml.IDReferenceBlock:
			hasReference = true
		}
		pos += h.HeaderLen + int(h.Size)
	}
	if block == nil {
		if p.recordSkip(off) {
			logger.Warnf("Skipping block group without block (offset:%d)", off)
		}
		return
	}
	p.consumeBlock(cur, want, off, block, false, !hasReference)
}

func blockTrackNumber(body []byte) (uint64, bool) {
	n, _, unknown, err := ebml.DecodeSize(body)
	if err != nil || unknown || n == 0 {
		return 0, false
	}
	return n, true
}

// blockFrames decodes the frames of one block, one FrameData per lace.
// Payload bytes are copied so they outlive the parser's buffer. A
// false return means the block content is corrupted and the whole
// block is dropped.
func (p *Parser) blockFrames(body []byte, clusterTime uint64, flagIsKey, keyframe bool) ([]FrameData, bool) {
	trackNumber, n, _, err := ebml.DecodeSize(body)
	if err != nil {
		return nil, false
	}
	if len(body) < n+3 {
		return nil, false
	}
	delta := int16(uint16(body[n])<<8 | uint16(body[n+1]))
	flags := body[n+2]
	data := body[n+3:]

	tick := int64(clusterTime) + int64(delta)
	if tick < 0 {
		return nil, false
	}
	if flagIsKey {
		keyframe = flags&blockFlagKeyframe != 0
	}

	laces, ok := p.splitLaces(data, (flags&blockFlagLacing)>>1)
	if !ok {
		return nil, false
	}
	frames := make([]FrameData, 0, len(laces))
	for _, lace := range laces {
		frames = append(frames, FrameData{
			TrackNumber: trackNumber,
			Data:        append([]byte(nil), lace...),
			TimestampNs: ticksToNs(tick, p.info.TimecodeScale),
			Keyframe:    keyframe,
		})
	}
	return frames, true
}

// splitLaces slices the block body into its frames according to the
// lacing mode. Returned slices borrow from data.
func (p *Parser) splitLaces(data []byte, mode byte) ([][]byte, bool) {
	if mode == lacingNone {
		if !p.plausibleFrameSize(len(data)) {
			return nil, false
		}
		return [][]byte{data}, true
	}
	if len(data) < 1 {
		return nil, false
	}
	count := int(data[0]) + 1
	data = data[1:]

	sizes := make([]int, 0, count)
	switch mode {
	case lacingXiph:
		off := 0
		for i := 0; i < count-1; i++ {
			size := 0
			for {
				if off >= len(data) {
					return nil, false
				}
				b := data[off]
				off++
				size += int(b)
				if b < 0xFF {
					break
				}
			}
			sizes = append(sizes, size)
		}
		data = data[off:]
	case lacingEBML:
		off := 0
		last := 0
		for i := 0; i < count-1; i++ {
			v, n, unknown, err := ebml.DecodeSize(data[off:])
			if err != nil || unknown {
				return nil, false
			}
			if i == 0 {
				last = int(v)
			} else {
				// Sizes after the first are signed differences
				// against the previous lace.
				bias := int64(1)<<uint(7*n-1) - 1
				last += int(int64(v) - bias)
			}
			off += n
			if last < 0 {
				return nil, false
			}
			sizes = append(sizes, last)
		}
		data = data[off:]
	case lacingFixed:
		if len(data)%count != 0 {
			return nil, false
		}
		each := len(data) / count
		for i := 0; i < count-1; i++ {
			sizes = append(sizes, each)
		}
	default:
		return nil, false
	}

	laces := make([][]byte, 0, count)
	off := 0
	for _, size := range sizes {
		if !p.plausibleFrameSize(size) || off+size > len(data) {
			return nil, false
		}
		laces = append(laces, data[off:off+size])
		off += size
	}
	rest := len(data) - off
	if !p.plausibleFrameSize(rest) {
		return nil, false
	}
	return append(laces, data[off:]), true
}

// plausibleFrameSize rejects frame lengths that are zero, negative or
// beyond the configured bound, all signs of damaged framing.
func (p *Parser) plausibleFrameSize(n int) bool {
	return n > 0 && uint64(n) <= p.opts.maxFrameSize
}
