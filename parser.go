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
	"errors"
	"fmt"

	"github.com/seqsense/webmcontainer/ebml"
)

const defaultMaxFrameSize = 16 << 20

type parserOptions struct {
	maxFrameSize uint64
}

type ParserOption func(*parserOptions)

// WithMaxFrameSize overrides the plausibility bound above which a
// frame length is treated as corrupted and its block is skipped.
func WithMaxFrameSize(n uint64) ParserOption {
	return func(o *parserOptions) {
		o.maxFrameSize = n
	}
}

// Parser decodes a WebM byte buffer. Headers are decoded once by
// ParseHeaders; clusters are walked lazily by the frame read calls,
// one independent cursor per track.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	data []byte
	opts parserOptions

	headersParsed bool
	segStart      int64
	segEnd        int64

	info       SegmentInfo
	hasInfo    bool
	tracks     []TrackInfo
	hasTracks  bool
	trackIndex map[uint64]int
	cues       []CuePoint
	seekIndex  map[ebml.ID]int64

	firstCluster int64
	cursors      map[uint64]*frameCursor
	skipped      uint64
	skippedAt    map[int64]struct{}
}

// NewParser returns a Parser over buf. The buffer is borrowed
// read-only; it must not be modified while the Parser or any
// FrameData-producing call is in use.
func NewParser(buf []byte, opts ...ParserOption) *Parser {
	o := parserOptions{
		maxFrameSize: defaultMaxFrameSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Parser{
		data:         buf,
		opts:         o,
		firstCluster: -1,
		trackIndex:   make(map[uint64]int),
		seekIndex:    make(map[ebml.ID]int64),
		cursors:      make(map[uint64]*frameCursor),
		skippedAt:    make(map[int64]struct{}),
	}
}

// NewParserFromReader drains the available region of r and returns a
// Parser over it.
func NewParserFromReader(r Reader, opts ...ParserOption) (*Parser, error) {
	buf, err := readAvailable(r)
	if err != nil {
		return nil, err
	}
	return NewParser(buf, opts...), nil
}

var errOverrun = errors.New("element overruns parent bound")

// nextChild decodes the element header at off and ensures a sized
// payload stays inside [off, end).
func (p *Parser) nextChild(off, end int64) (ebml.Header, error) {
	h, err := ebml.DecodeHeader(p.data[off:end])
	if err != nil {
		return h, err
	}
	if !h.Unknown && off+int64(h.HeaderLen)+int64(h.Size) > end {
		return h, fmt.Errorf("%s at offset %d: %w", h.ID, off, errOverrun)
	}
	return h, nil
}

// ParseHeaders decodes the EBML header, locates the Segment and
// decodes its SeekHead, Info, Tracks and Cues children. Clusters are
// only located, never decoded here. Calling it again after success is
// a no-op.
func (p *Parser) ParseHeaders() error {
	if p.headersParsed {
		return nil
	}

	off, err := p.parseEBMLHeader()
	if err != nil {
		return err
	}
	if err := p.locateSegment(off); err != nil {
		return err
	}
	if err := p.scanSegmentChildren(); err != nil {
		return err
	}
	if !p.hasInfo {
		return fmt.Errorf("segment has no info element: %w", ErrCorruptedData)
	}
	if !p.hasTracks {
		return fmt.Errorf("segment has no tracks element: %w", ErrCorruptedData)
	}
	p.headersParsed = true
	return nil
}

func (p *Parser) parseEBMLHeader() (int64, error) {
	h, err := ebml.DecodeHeader(p.data)
	if err != nil || h.ID != ebml.IDEBML {
		return 0, fmt.Errorf("no EBML header at offset 0: %w", ErrInvalidFile)
	}
	if h.Unknown {
		return 0, fmt.Errorf("EBML header of unknown size: %w", ErrCorruptedData)
	}
	end := int64(h.HeaderLen) + int64(h.Size)
	if end > int64(len(p.data)) {
		return 0, fmt.Errorf("EBML header truncated: %w", ErrCorruptedData)
	}

	docType := ""
	readVersion := uint64(1)
	maxIDLength := uint64(4)
	maxSizeLength := uint64(8)
	for off := int64(h.HeaderLen); off < end; {
		c, err := p.nextChild(off, end)
		if err != nil {
			return 0, fmt.Errorf("EBML header: %v: %w", err, ErrCorruptedData)
		}
		payload := p.data[off+int64(c.HeaderLen) : off+int64(c.HeaderLen)+int64(c.Size)]
		switch c.ID {
		case ebml.IDDocType:
			docType = ebml.DecodeString(payload)
		case ebml.IDEBMLReadVersion:
			if readVersion, err = ebml.DecodeUint(payload); err != nil {
				return 0, fmt.Errorf("EBML read version: %v: %w", err, ErrCorruptedData)
			}
		case ebml.IDEBMLMaxIDLength:
			if maxIDLength, err = ebml.DecodeUint(payload); err != nil {
				return 0, fmt.Errorf("EBML max id length: %v: %w", err, ErrCorruptedData)
			}
		case ebml.IDEBMLMaxSizeLength:
			if maxSizeLength, err = ebml.DecodeUint(payload); err != nil {
				return 0, fmt.Errorf("EBML max size length: %v: %w", err, ErrCorruptedData)
			}
		}
		off += int64(c.HeaderLen) + int64(c.Size)
	}

	if docType != DocTypeWebM && docType != DocTypeMatroska {
		return 0, fmt.Errorf("doc type %q: %w", docType, ErrUnsupportedFormat)
	}
	if readVersion > 1 {
		return 0, fmt.Errorf("EBML read version %d: %w", readVersion, ErrUnsupportedFormat)
	}
	if maxIDLength > 4 || maxSizeLength > 8 {
		return 0, fmt.Errorf(
			"id/size lengths %d/%d exceed the profile: %w",
			maxIDLength, maxSizeLength, ErrUnsupportedFormat,
		)
	}
	return end, nil
}

func (p *Parser) locateSegment(off int64) error {
	for off < int64(len(p.data)) {
		h, err := ebml.DecodeHeader(p.data[off:])
		if err != nil {
			return fmt.Errorf("no segment element: %w", ErrInvalidFile)
		}
		switch h.ID {
		case ebml.IDSegment:
			p.segStart = off + int64(h.HeaderLen)
			p.segEnd = int64(len(p.data))
			if !h.Unknown {
				// A declared size past the available bytes means a
				// truncated tail; headers may still be complete.
				if end := p.segStart + int64(h.Size); end < p.segEnd {
					p.segEnd = end
				}
			}
			return nil
		case ebml.IDVoid, ebml.IDCRC32:
			if h.Unknown {
				return fmt.Errorf("no segment element: %w", ErrInvalidFile)
			}
			off += int64(h.HeaderLen) + int64(h.Size)
		default:
			return fmt.Errorf("unexpected top level element %s: %w", h.ID, ErrInvalidFile)
		}
	}
	return fmt.Errorf("no segment element: %w", ErrInvalidFile)
}

func (p *Parser) scanSegmentChildren() error {
	for off := p.segStart; off < p.segEnd; {
		h, err := p.nextChild(off, p.segEnd)
		if err != nil {
			return fmt.Errorf("segment child: %v: %w", err, ErrCorruptedData)
		}
		if h.Unknown {
			if h.ID != ebml.IDCluster {
				return fmt.Errorf("unknown size %s outside cluster: %w", h.ID, ErrCorruptedData)
			}
			p.firstCluster = off
			p.loadCuesFromSeekHead()
			return nil
		}
		payload := p.data[off+int64(h.HeaderLen) : off+int64(h.HeaderLen)+int64(h.Size)]
		switch h.ID {
		case ebml.IDCluster:
			p.firstCluster = off
			p.loadCuesFromSeekHead()
			return nil
		case ebml.IDSeekHead:
			p.parseSeekHead(payload)
		case ebml.IDInfo:
			if err := p.parseInfo(payload); err != nil {
				return err
			}
		case ebml.IDTracks:
			if err := p.parseTracks(payload); err != nil {
				return err
			}
		case ebml.IDCues:
			p.parseCues(payload)
		}
		off += int64(h.HeaderLen) + int64(h.Size)
	}
	return nil
}

// loadCuesFromSeekHead resolves the Cues position recorded in the
// SeekHead for files that store Cues after the clusters, where the
// linear header scan stopped before reaching them.
func (p *Parser) loadCuesFromSeekHead() {
	if len(p.cues) > 0 {
		return
	}
	off, ok := p.seekIndex[ebml.IDCues]
	if !ok {
		return
	}
	if off < p.segStart || off >= p.segEnd {
		logger.Warnf("Seek head cues position %d out of segment bounds", off)
		return
	}
	h, err := p.nextChild(off, p.segEnd)
	if err != nil || h.ID != ebml.IDCues || h.Unknown {
		logger.Warnf("Seek head cues position %d does not hold a cues element", off)
		return
	}
	p.parseCues(p.data[off+int64(h.HeaderLen) : off+int64(h.HeaderLen)+int64(h.Size)])
}

// parseSeekHead indexes top level element positions. The seek head is
// an accelerator only, so damage here is logged and ignored.
func (p *Parser) parseSeekHead(payload []byte) {
	for off := 0; off < len(payload); {
		h, err := ebml.DecodeHeader(payload[off:])
		if err != nil || h.Unknown ||
			off+h.HeaderLen+int(h.Size) > len(payload) {
			logger.Warn("Malformed seek head, ignoring")
			return
		}
		child := payload[off+h.HeaderLen : off+h.HeaderLen+int(h.Size)]
		if h.ID == ebml.IDSeek {
			var id uint64
			var pos uint64
			for o := 0; o < len(child); {
				c, err := ebml.DecodeHeader(child[o:])
				if err != nil || c.Unknown || o+c.HeaderLen+int(c.Size) > len(child) {
					logger.Warn("Malformed seek entry, ignoring")
					return
				}
				v := child[o+c.HeaderLen : o+c.HeaderLen+int(c.Size)]
				switch c.ID {
				case ebml.IDSeekID:
					id, _ = ebml.DecodeUint(v)
				case ebml.IDSeekPosition:
					pos, _ = ebml.DecodeUint(v)
				}
				o += c.HeaderLen + int(c.Size)
			}
			if id != 0 {
				p.seekIndex[ebml.ID(id)] = p.segStart + int64(pos)
			}
		}
		off += h.HeaderLen + int(h.Size)
	}
}

func (p *Parser) parseInfo(payload []byte) error {
	info := SegmentInfo{
		TimecodeScale: DefaultTimecodeScale,
	}
	for off := 0; off < len(payload); {
		h, err := ebml.DecodeHeader(payload[off:])
		if err != nil || h.Unknown || off+h.HeaderLen+int(h.Size) > len(payload) {
			return fmt.Errorf("segment info child: %w", ErrCorruptedData)
		}
		v := payload[off+h.HeaderLen : off+h.HeaderLen+int(h.Size)]
		switch h.ID {
		case ebml.IDTimecodeScale:
			if info.TimecodeScale, err = ebml.DecodeUint(v); err != nil || info.TimecodeScale == 0 {
				return fmt.Errorf("timecode scale: %w", ErrCorruptedData)
			}
		case ebml.IDDuration:
			if info.DurationTicks, err = ebml.DecodeFloat(v); err != nil {
				return fmt.Errorf("duration: %w", ErrCorruptedData)
			}
		case ebml.IDSegmentUID:
			info.SegmentUID = append([]byte(nil), v...)
		case ebml.IDTitle:
			info.Title = ebml.DecodeString(v)
		case ebml.IDMuxingApp:
			info.MuxingApp = ebml.DecodeString(v)
		case ebml.IDWritingApp:
			info.WritingApp = ebml.DecodeString(v)
		case ebml.IDDateUTC:
			if info.DateUTC, err = ebml.DecodeDate(v); err != nil {
				return fmt.Errorf("date: %w", ErrCorruptedData)
			}
		}
		off += h.HeaderLen + int(h.Size)
	}
	p.info = info
	p.hasInfo = true
	return nil
}

func (p *Parser) parseTracks(payload []byte) error {
	p.hasTracks = true
	for off := 0; off < len(payload); {
		h, err := ebml.DecodeHeader(payload[off:])
		if err != nil || h.Unknown || off+h.HeaderLen+int(h.Size) > len(payload) {
			return fmt.Errorf("tracks child: %w", ErrCorruptedData)
		}
		if h.ID == ebml.IDTrackEntry {
			entry, err := p.parseTrackEntry(payload[off+h.HeaderLen : off+h.HeaderLen+int(h.Size)])
			if err != nil {
				return err
			}
			if _, dup := p.trackIndex[entry.TrackNumber]; dup {
				return fmt.Errorf("duplicate track number %d: %w", entry.TrackNumber, ErrCorruptedData)
			}
			p.trackIndex[entry.TrackNumber] = len(p.tracks)
			p.tracks = append(p.tracks, entry)
		}
		off += h.HeaderLen + int(h.Size)
	}
	return nil
}

func (p *Parser) parseTrackEntry(payload []byte) (TrackInfo, error) {
	var t TrackInfo
	for off := 0; off < len(payload); {
		h, err := ebml.DecodeHeader(payload[off:])
		if err != nil || h.Unknown || off+h.HeaderLen+int(h.Size) > len(payload) {
			return t, fmt.Errorf("track entry child: %w", ErrCorruptedData)
		}
		v := payload[off+h.HeaderLen : off+h.HeaderLen+int(h.Size)]
		switch h.ID {
		case ebml.IDTrackNumber:
			if t.TrackNumber, err = ebml.DecodeUint(v); err != nil {
				return t, fmt.Errorf("track number: %w", ErrCorruptedData)
			}
		case ebml.IDTrackUID:
			t.TrackUID, _ = ebml.DecodeUint(v)
		case ebml.IDTrackType:
			if t.TrackType, err = ebml.DecodeUint(v); err != nil {
				return t, fmt.Errorf("track type: %w", ErrCorruptedData)
			}
		case ebml.IDCodecID:
			t.CodecID = ebml.DecodeString(v)
		case ebml.IDCodecPrivate:
			t.CodecPrivate = append([]byte(nil), v...)
		case ebml.IDName:
			t.Name = ebml.DecodeString(v)
		case ebml.IDLanguage:
			t.Language = ebml.DecodeString(v)
		case ebml.IDVideo:
			video, err := parseVideo(v)
			if err != nil {
				return t, err
			}
			t.Video = video
		case ebml.IDAudio:
			audio, err := parseAudio(v)
			if err != nil {
				return t, err
			}
			t.Audio = audio
		}
		off += h.HeaderLen + int(h.Size)
	}
	if t.TrackNumber == 0 {
		return t, fmt.Errorf("track entry without track number: %w", ErrCorruptedData)
	}
	if t.CodecID == "" {
		return t, fmt.Errorf("track %d without codec id: %w", t.TrackNumber, ErrCorruptedData)
	}
	return t, nil
}

func parseVideo(payload []byte) (*VideoInfo, error) {
	var v VideoInfo
	for off := 0; off < len(payload); {
		h, err := ebml.DecodeHeader(payload[off:])
		if err != nil || h.Unknown || off+h.HeaderLen+int(h.Size) > len(payload) {
			return nil, fmt.Errorf("video child: %w", ErrCorruptedData)
		}
		b := payload[off+h.HeaderLen : off+h.HeaderLen+int(h.Size)]
		switch h.ID {
		case ebml.IDPixelWidth:
			v.PixelWidth, err = ebml.DecodeUint(b)
		case ebml.IDPixelHeight:
			v.PixelHeight, err = ebml.DecodeUint(b)
		case ebml.IDDisplayWidth:
			v.DisplayWidth, err = ebml.DecodeUint(b)
		case ebml.IDDisplayHeight:
			v.DisplayHeight, err = ebml.DecodeUint(b)
		case ebml.IDFrameRate:
			v.FrameRate, err = ebml.DecodeFloat(b)
		}
		if err != nil {
			return nil, fmt.Errorf("video %s: %w", h.ID, ErrCorruptedData)
		}
		off += h.HeaderLen + int(h.Size)
	}
	if v.DisplayWidth == 0 {
		v.DisplayWidth = v.PixelWidth
	}
	if v.DisplayHeight == 0 {
		v.DisplayHeight = v.PixelHeight
	}
	return &v, nil
}

func parseAudio(payload []byte) (*AudioInfo, error) {
	a := AudioInfo{
		SamplingFrequency: 8000,
		Channels:          1,
	}
	for off := 0; off < len(payload); {
		h, err := ebml.DecodeHeader(payload[off:])
		if err != nil || h.Unknown || off+h.HeaderLen+int(h.Size) > len(payload) {
			return nil, fmt.Errorf("audio child: %w", ErrCorruptedData)
		}
		b := payload[off+h.HeaderLen : off+h.HeaderLen+int(h.Size)]
		switch h.ID {
		case ebml.IDSamplingFrequency:
			a.SamplingFrequency, err = ebml.DecodeFloat(b)
		case ebml.IDChannels:
			a.Channels, err = ebml.DecodeUint(b)
		case ebml.IDBitDepth:
			a.BitDepth, err = ebml.DecodeUint(b)
		}
		if err != nil {
			return nil, fmt.Errorf("audio %s: %w", h.ID, ErrCorruptedData)
		}
		off += h.HeaderLen + int(h.Size)
	}
	return &a, nil
}

// parseCues decodes the seek index. Cues only accelerate seeking, so
// damage is logged and the index dropped instead of failing the parse.
func (p *Parser) parseCues(payload []byte) {
	var cues []CuePoint
	for off := 0; off < len(payload); {
		h, err := ebml.DecodeHeader(payload[off:])
		if err != nil || h.Unknown || off+h.HeaderLen+int(h.Size) > len(payload) {
			logger.Warn("Malformed cues, dropping the index")
			return
		}
		if h.ID == ebml.IDCuePoint {
			pts, ok := parseCuePoint(payload[off+h.HeaderLen : off+h.HeaderLen+int(h.Size)])
			if !ok {
				logger.Warn("Malformed cue point, dropping the index")
				return
			}
			cues = append(cues, pts...)
		}
		off += h.HeaderLen + int(h.Size)
	}
	p.cues = cues
}

func parseCuePoint(payload []byte) ([]CuePoint, bool) {
	var cueTime uint64
	var pts []CuePoint
	for off := 0; off < len(payload); {
		h, err := ebml.DecodeHeader(payload[off:])
		if err != nil || h.Unknown || off+h.HeaderLen+int(h.Size) > len(payload) {
			return nil, false
		}
		v := payload[off+h.HeaderLen : off+h.HeaderLen+int(h.Size)]
		switch h.ID {
		case ebml.IDCueTime:
			cueTime, _ = ebml.DecodeUint(v)
		case ebml.IDCueTrackPositions:
			pt := CuePoint{BlockNumber: 1}
			for o := 0; o < len(v); {
				c, err := ebml.DecodeHeader(v[o:])
				if err != nil || c.Unknown || o+c.HeaderLen+int(c.Size) > len(v) {
					return nil, false
				}
				b := v[o+c.HeaderLen : o+c.HeaderLen+int(c.Size)]
				switch c.ID {
				case ebml.IDCueTrack:
					pt.TrackNumber, _ = ebml.DecodeUint(b)
				case ebml.IDCueClusterPosition:
					pt.ClusterPosition, _ = ebml.DecodeUint(b)
				case ebml.IDCueBlockNumber:
					pt.BlockNumber, _ = ebml.DecodeUint(b)
				}
				o += c.HeaderLen + int(c.Size)
			}
			pts = append(pts, pt)
		}
		off += h.HeaderLen + int(h.Size)
	}
	for i := range pts {
		pts[i].Time = cueTime
	}
	return pts, true
}

func (p *Parser) requireHeaders() error {
	if !p.headersParsed {
		return fmt.Errorf("headers not parsed: %w", ErrInvalidArgument)
	}
	return nil
}

// Duration returns the segment duration in seconds, or 0 when the
// file does not carry one.
func (p *Parser) Duration() (float64, error) {
	if err := p.requireHeaders(); err != nil {
		return 0, err
	}
	return ticksToSeconds(p.info.DurationTicks, p.info.TimecodeScale), nil
}

// Info returns the decoded segment info.
func (p *Parser) Info() (SegmentInfo, error) {
	if err := p.requireHeaders(); err != nil {
		return SegmentInfo{}, err
	}
	return p.info, nil
}

// TrackCount returns the number of track entries.
func (p *Parser) TrackCount() (int, error) {
	if err := p.requireHeaders(); err != nil {
		return 0, err
	}
	return len(p.tracks), nil
}

// TrackInfo returns the track entry at index i, in file order.
func (p *Parser) TrackInfo(i int) (TrackInfo, error) {
	if err := p.requireHeaders(); err != nil {
		return TrackInfo{}, err
	}
	if i < 0 || i >= len(p.tracks) {
		return TrackInfo{}, fmt.Errorf("track index %d out of range: %w", i, ErrInvalidArgument)
	}
	return p.tracks[i], nil
}

// TrackInfoByNumber returns the track entry with the given track
// number.
func (p *Parser) TrackInfoByNumber(trackNumber uint64) (TrackInfo, error) {
	if err := p.requireHeaders(); err != nil {
		return TrackInfo{}, err
	}
	i, ok := p.trackIndex[trackNumber]
	if !ok {
		return TrackInfo{}, fmt.Errorf("no track %d: %w", trackNumber, ErrInvalidArgument)
	}
	return p.tracks[i], nil
}

// VideoInfo returns the video payload of the given track. Querying a
// non-video track is an error.
func (p *Parser) VideoInfo(trackNumber uint64) (VideoInfo, error) {
	t, err := p.TrackInfoByNumber(trackNumber)
	if err != nil {
		return VideoInfo{}, err
	}
	if t.Video == nil {
		return VideoInfo{}, fmt.Errorf("track %d is not a video track: %w", trackNumber, ErrInvalidArgument)
	}
	return *t.Video, nil
}

// AudioInfo returns the audio payload of the given track. Querying a
// non-audio track is an error.
func (p *Parser) AudioInfo(trackNumber uint64) (AudioInfo, error) {
	t, err := p.TrackInfoByNumber(trackNumber)
	if err != nil {
		return AudioInfo{}, err
	}
	if t.Audio == nil {
		return AudioInfo{}, fmt.Errorf("track %d is not an audio track: %w", trackNumber, ErrInvalidArgument)
	}
	return *t.Audio, nil
}

// Cues returns the decoded seek index, nil when the file has none.
func (p *Parser) Cues() []CuePoint {
	cues := make([]CuePoint, len(p.cues))
	copy(cues, p.cues)
	return cues
}

// SkippedFrames reports how many damaged regions were dropped during
// frame iteration. Each region counts once, no matter how many track
// cursors or cluster walks run into it.
func (p *Parser) SkippedFrames() uint64 {
	return p.skipped
}
