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
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/seqsense/webmcontainer/ebml"
)

// DefaultTimecodeScale is the default duration of one timecode tick in
// nanoseconds.
const DefaultTimecodeScale = 1000000

const (
	defaultMaxClusterBytes    = 5 << 20
	defaultMaxClusterDuration = 5 * time.Second
	defaultAppName            = "webmcontainer"

	docTypeVersion     = 4
	docTypeReadVersion = 2

	// seekHeadSlot is the reserved length of the seek head region:
	// three fixed width Seek entries (Info, Tracks, Cues) of 21 bytes
	// each plus the SeekHead header.
	seekHeadSlot = 68
)

type muxState int

const (
	muxStateFresh muxState = iota
	muxStateTracksOpen
	muxStateFramesWriting
	muxStateFinalized
)

type muxerOptions struct {
	timecodeScale      uint64
	muxingApp          string
	writingApp         string
	title              string
	segmentUID         []byte
	date               time.Time
	hasDate            bool
	maxClusterBytes    int
	maxClusterDuration time.Duration
	notify             func(id ebml.ID, pos int64)
}

type MuxerOption func(*muxerOptions)

// WithTimecodeScale overrides the tick duration in nanoseconds.
func WithTimecodeScale(scale uint64) MuxerOption {
	return func(o *muxerOptions) {
		o.timecodeScale = scale
	}
}

// WithMuxingApp overrides the MuxingApp string of the segment info.
func WithMuxingApp(app string) MuxerOption {
	return func(o *muxerOptions) {
		o.muxingApp = app
	}
}

// WithWritingApp overrides the WritingApp string of the segment info.
func WithWritingApp(app string) MuxerOption {
	return func(o *muxerOptions) {
		o.writingApp = app
	}
}

// WithTitle sets the segment title.
func WithTitle(title string) MuxerOption {
	return func(o *muxerOptions) {
		o.title = title
	}
}

// WithDate sets the segment DateUTC.
func WithDate(t time.Time) MuxerOption {
	return func(o *muxerOptions) {
		o.date = t
		o.hasDate = true
	}
}

// WithSegmentUID overrides the random segment UID. It must be 16
// bytes.
func WithSegmentUID(uid []byte) MuxerOption {
	return func(o *muxerOptions) {
		o.segmentUID = append([]byte(nil), uid...)
	}
}

// WithClusterLimits overrides the cluster rollover bounds. A cluster
// is closed before it exceeds maxBytes of block data or spans more
// than maxDuration.
func WithClusterLimits(maxBytes int, maxDuration time.Duration) MuxerOption {
	return func(o *muxerOptions) {
		o.maxClusterBytes = maxBytes
		o.maxClusterDuration = maxDuration
	}
}

// WithElementStartNotify installs a callback invoked with the buffer
// position of each top level element as it is written.
func WithElementStartNotify(fn func(id ebml.ID, pos int64)) MuxerOption {
	return func(o *muxerOptions) {
		o.notify = fn
	}
}

// TrackOption adjusts a track entry under construction.
type TrackOption func(*TrackInfo)

// WithTrackName sets the human readable track name.
func WithTrackName(name string) TrackOption {
	return func(t *TrackInfo) {
		t.Name = name
	}
}

// WithTrackUID overrides the random track UID.
func WithTrackUID(uid uint64) TrackOption {
	return func(t *TrackInfo) {
		t.TrackUID = uid
	}
}

// WithLanguage overrides the track language tag.
func WithLanguage(lang string) TrackOption {
	return func(t *TrackInfo) {
		t.Language = lang
	}
}

// WithCodecPrivate attaches codec initialization data, stored
// bit-for-bit in the track entry.
func WithCodecPrivate(p []byte) TrackOption {
	return func(t *TrackInfo) {
		t.CodecPrivate = append([]byte(nil), p...)
	}
}

// WithDisplaySize sets the display dimensions of a video track when
// they differ from the pixel dimensions.
func WithDisplaySize(width, height uint64) TrackOption {
	return func(t *TrackInfo) {
		if t.Video != nil {
			t.Video.DisplayWidth = width
			t.Video.DisplayHeight = height
		}
	}
}

// WithFrameRate sets the informational frame rate of a video track.
func WithFrameRate(fps float64) TrackOption {
	return func(t *TrackInfo) {
		if t.Video != nil {
			t.Video.FrameRate = fps
		}
	}
}

// WithBitDepth sets the sample bit depth of an audio track.
func WithBitDepth(bits uint64) TrackOption {
	return func(t *TrackInfo) {
		if t.Audio != nil {
			t.Audio.BitDepth = bits
		}
	}
}

// Muxer assembles tracks and frames into a WebM byte buffer. Tracks
// are declared first; the track set freezes at the first frame write.
// Finalize closes the segment and returns the finished bytes.
//
// A Muxer is not safe for concurrent use.
type Muxer struct {
	opts  muxerOptions
	bw    *BytesWriter
	state muxState

	segStart       int64
	segmentSizeOff int64
	seekHeadOff    int64
	durationOff    int64
	infoPos        uint64
	tracksPos      uint64

	tracks        []TrackInfo
	tracksWritten bool

	clusterOpen     bool
	clusterTick     uint64
	clusterPos      uint64
	clusterBlocks   uint64
	clusterBuf      []byte
	haveCluster     bool
	lastClusterTick uint64

	cues        []CuePoint
	lastEndTick uint64
	scratch     []byte
}

// NewMuxer returns a Muxer with the segment preamble already written:
// EBML header, open ended Segment, reserved seek head and the segment
// info. Data exposes the buffer at any point; it is only a complete
// WebM file after Finalize.
func NewMuxer(opts ...MuxerOption) (*Muxer, error) {
	o := muxerOptions{
		timecodeScale:      DefaultTimecodeScale,
		muxingApp:          defaultAppName,
		writingApp:         defaultAppName,
		maxClusterBytes:    defaultMaxClusterBytes,
		maxClusterDuration: defaultMaxClusterDuration,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timecodeScale == 0 {
		return nil, fmt.Errorf("timecode scale must be positive: %w", ErrInvalidArgument)
	}
	if o.maxClusterBytes <= 0 || o.maxClusterDuration <= 0 {
		return nil, fmt.Errorf("cluster limits must be positive: %w", ErrInvalidArgument)
	}
	if o.segmentUID == nil {
		uid, err := uuid.New().MarshalBinary()
		if err != nil {
			return nil, err
		}
		o.segmentUID = uid
	} else if len(o.segmentUID) != 16 {
		return nil, fmt.Errorf("segment uid must be 16 bytes, got %d: %w", len(o.segmentUID), ErrInvalidArgument)
	}

	m := &Muxer{
		opts: o,
		bw:   NewBytesWriter(),
	}
	if o.notify != nil {
		m.bw.SetElementStartNotify(o.notify)
	}
	if err := m.writePreamble(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Muxer) writePreamble() error {
	var h elementBuf
	h.uint(ebml.IDEBMLVersion, 1)
	h.uint(ebml.IDEBMLReadVersion, 1)
	h.uint(ebml.IDEBMLMaxIDLength, 4)
	h.uint(ebml.IDEBMLMaxSizeLength, 8)
	h.str(ebml.IDDocType, DocTypeWebM)
	h.uint(ebml.IDDocTypeVersion, docTypeVersion)
	h.uint(ebml.IDDocTypeReadVersion, docTypeReadVersion)
	if err := m.writeElement(ebml.IDEBML, &h); err != nil {
		return err
	}

	// Segment size stays the unknown sentinel until finalize.
	m.bw.ElementStartNotify(ebml.IDSegment, m.bw.Position())
	seg, err := ebml.AppendID(nil, ebml.IDSegment)
	if err != nil {
		return err
	}
	m.segmentSizeOff = m.bw.Position() + int64(len(seg))
	if seg, err = ebml.AppendUnknownSize(seg, 8); err != nil {
		return err
	}
	if _, err := m.bw.Write(seg); err != nil {
		return fmt.Errorf("writing segment header: %w", err)
	}
	m.segStart = m.bw.Position()

	m.seekHeadOff = m.bw.Position()
	void, err := ebml.AppendVoid(nil, seekHeadSlot)
	if err != nil {
		return err
	}
	if _, err := m.bw.Write(void); err != nil {
		return fmt.Errorf("reserving seek head: %w", err)
	}

	m.infoPos = uint64(m.bw.Position() - m.segStart)
	var info elementBuf
	info.uint(ebml.IDTimecodeScale, m.opts.timecodeScale)
	info.str(ebml.IDMuxingApp, m.opts.muxingApp)
	info.str(ebml.IDWritingApp, m.opts.writingApp)
	if m.opts.title != "" {
		info.str(ebml.IDTitle, m.opts.title)
	}
	if m.opts.hasDate {
		info.date(ebml.IDDateUTC, m.opts.date)
	}
	info.bin(ebml.IDSegmentUID, m.opts.segmentUID)
	// Duration goes last: ID (2) and size (1) ahead of the 8 byte
	// float payload patched during finalize.
	durationAt := len(info.buf) + 3
	info.float(ebml.IDDuration, 0)
	elem, err := info.element(ebml.IDInfo)
	if err != nil {
		return err
	}
	headerLen := len(elem) - len(info.buf)
	m.durationOff = m.bw.Position() + int64(headerLen) + int64(durationAt)
	m.bw.ElementStartNotify(ebml.IDInfo, m.bw.Position())
	if _, err := m.bw.Write(elem); err != nil {
		return fmt.Errorf("writing segment info: %w", err)
	}
	return nil
}

func (m *Muxer) writeElement(id ebml.ID, payload *elementBuf) error {
	elem, err := payload.element(id)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", id, err)
	}
	m.bw.ElementStartNotify(id, m.bw.Position())
	if _, err := m.bw.Write(elem); err != nil {
		return fmt.Errorf("writing %s: %w", id, err)
	}
	return nil
}

func (m *Muxer) requireTracksOpen() error {
	switch m.state {
	case muxStateFinalized:
		return fmt.Errorf("cannot add track after finalize: %w", ErrInvalidArgument)
	case muxStateFramesWriting:
		return fmt.Errorf("cannot add track after the first frame: %w", ErrInvalidArgument)
	}
	return nil
}

// AddVideoTrack declares a video track and returns its track number.
// Track numbers are allocated from 1 in declaration order.
func (m *Muxer) AddVideoTrack(width, height uint64, codecID string, opts ...TrackOption) (uint64, error) {
	if err := m.requireTracksOpen(); err != nil {
		return 0, err
	}
	if width == 0 || height == 0 {
		return 0, fmt.Errorf("pixel dimensions must be positive: %w", ErrInvalidArgument)
	}
	t := TrackInfo{
		TrackType: TrackTypeVideo,
		Video: &VideoInfo{
			PixelWidth:    width,
			PixelHeight:   height,
			DisplayWidth:  width,
			DisplayHeight: height,
		},
	}
	return m.addTrack(t, codecID, opts)
}

// AddAudioTrack declares an audio track and returns its track number.
func (m *Muxer) AddAudioTrack(samplingFrequency float64, channels uint64, codecID string, opts ...TrackOption) (uint64, error) {
	if err := m.requireTracksOpen(); err != nil {
		return 0, err
	}
	if samplingFrequency <= 0 || channels == 0 {
		return 0, fmt.Errorf("sampling frequency and channels must be positive: %w", ErrInvalidArgument)
	}
	t := TrackInfo{
		TrackType: TrackTypeAudio,
		Audio: &AudioInfo{
			SamplingFrequency: samplingFrequency,
			Channels:          channels,
		},
	}
	return m.addTrack(t, codecID, opts)
}

func (m *Muxer) addTrack(t TrackInfo, codecID string, opts []TrackOption) (uint64, error) {
	if codecID == "" {
		return 0, fmt.Errorf("codec id must not be empty: %w", ErrInvalidArgument)
	}
	t.TrackNumber = uint64(len(m.tracks) + 1)
	t.TrackUID = newTrackUID()
	t.CodecID = codecID
	t.Language = "und"
	for _, opt := range opts {
		opt(&t)
	}
	if t.TrackUID == 0 {
		return 0, fmt.Errorf("track uid must not be zero: %w", ErrInvalidArgument)
	}
	m.tracks = append(m.tracks, t)
	m.state = muxStateTracksOpen
	return t.TrackNumber, nil
}

// newTrackUID derives a random track UID. The value is kept in the
// positive int64 range for readers that store UIDs signed.
func newTrackUID() uint64 {
	u := uuid.New()
	v := binary.BigEndian.Uint64(u[:8]) &^ (uint64(1) << 63)
	if v == 0 {
		v = 1
	}
	return v
}

// ensureTracksWritten emits the Tracks element once, before the first
// cluster. The element is present even with no tracks declared.
func (m *Muxer) ensureTracksWritten() error {
	if m.tracksWritten {
		return nil
	}
	var b elementBuf
	for i := range m.tracks {
		t := &m.tracks[i]
		var e elementBuf
		e.uint(ebml.IDTrackNumber, t.TrackNumber)
		e.uint(ebml.IDTrackUID, t.TrackUID)
		e.uint(ebml.IDTrackType, t.TrackType)
		e.uint(ebml.IDFlagLacing, 0)
		if t.Name != "" {
			e.str(ebml.IDName, t.Name)
		}
		e.str(ebml.IDLanguage, t.Language)
		e.str(ebml.IDCodecID, t.CodecID)
		if len(t.CodecPrivate) > 0 {
			e.bin(ebml.IDCodecPrivate, t.CodecPrivate)
		}
		switch {
		case t.Video != nil:
			var v elementBuf
			v.uint(ebml.IDPixelWidth, t.Video.PixelWidth)
			v.uint(ebml.IDPixelHeight, t.Video.PixelHeight)
			if t.Video.DisplayWidth != t.Video.PixelWidth || t.Video.DisplayHeight != t.Video.PixelHeight {
				v.uint(ebml.IDDisplayWidth, t.Video.DisplayWidth)
				v.uint(ebml.IDDisplayHeight, t.Video.DisplayHeight)
			}
			if t.Video.FrameRate > 0 {
				v.float(ebml.IDFrameRate, t.Video.FrameRate)
			}
			e.master(ebml.IDVideo, &v)
		case t.Audio != nil:
			var a elementBuf
			a.float(ebml.IDSamplingFrequency, t.Audio.SamplingFrequency)
			a.uint(ebml.IDChannels, t.Audio.Channels)
			if t.Audio.BitDepth > 0 {
				a.uint(ebml.IDBitDepth, t.Audio.BitDepth)
			}
			e.master(ebml.IDAudio, &a)
		}
		b.master(ebml.IDTrackEntry, &e)
	}
	m.tracksPos = uint64(m.bw.Position() - m.segStart)
	if err := m.writeElement(ebml.IDTracks, &b); err != nil {
		return err
	}
	m.tracksWritten = true
	return nil
}

// WriteVideoFrame appends one video frame. The timestamp is absolute
// nanoseconds from the segment start.
func (m *Muxer) WriteVideoFrame(trackNumber uint64, data []byte, timestampNs int64, keyframe bool) error {
	return m.writeFrame(trackNumber, TrackTypeVideo, data, timestampNs, keyframe)
}

// WriteAudioFrame appends one audio frame. Audio blocks never carry
// the keyframe flag.
func (m *Muxer) WriteAudioFrame(trackNumber uint64, data []byte, timestampNs int64) error {
	return m.writeFrame(trackNumber, TrackTypeAudio, data, timestampNs, false)
}

func (m *Muxer) writeFrame(trackNumber, trackType uint64, data []byte, timestampNs int64, keyframe bool) error {
	if m.state == muxStateFinalized {
		return fmt.Errorf("cannot write frame after finalize: %w", ErrInvalidArgument)
	}
	t, err := m.trackByNumber(trackNumber)
	if err != nil {
		return err
	}
	if t.TrackType != trackType {
		return fmt.Errorf(
			"track %d has type %d, not %d: %w",
			trackNumber, t.TrackType, trackType, ErrInvalidArgument,
		)
	}
	if len(data) == 0 {
		return fmt.Errorf("empty frame payload: %w", ErrInvalidArgument)
	}
	if timestampNs < 0 {
		return fmt.Errorf("negative timestamp %d: %w", timestampNs, ErrInvalidArgument)
	}
	tick := uint64(nsToTicks(timestampNs, m.opts.timecodeScale))

	if err := m.ensureTracksWritten(); err != nil {
		return err
	}
	m.state = muxStateFramesWriting

	if m.clusterOpen {
		delta := int64(tick) - int64(m.clusterTick)
		switch {
		case delta < math.MinInt16:
			return fmt.Errorf(
				"frame tick %d is out of range of cluster at %d: %w",
				tick, m.clusterTick, ErrInvalidArgument,
			)
		case delta > math.MaxInt16,
			len(m.clusterBuf) > 0 && len(m.clusterBuf)+simpleBlockLen(trackNumber, len(data)) > m.opts.maxClusterBytes,
			delta > 0 && ticksToNs(delta, m.opts.timecodeScale) > m.opts.maxClusterDuration.Nanoseconds():
			if err := m.flushCluster(); err != nil {
				return err
			}
		}
	}
	if !m.clusterOpen {
		if m.haveCluster && tick < m.lastClusterTick {
			return fmt.Errorf(
				"frame tick %d precedes the previous cluster at %d: %w",
				tick, m.lastClusterTick, ErrInvalidArgument,
			)
		}
		m.openCluster(tick)
	}

	var flags byte
	if keyframe {
		flags |= blockFlagKeyframe
	}
	if err := m.appendSimpleBlock(trackNumber, int16(int64(tick)-int64(m.clusterTick)), flags, data); err != nil {
		return err
	}
	m.clusterBlocks++
	if keyframe {
		m.cues = append(m.cues, CuePoint{
			Time:            tick,
			TrackNumber:     trackNumber,
			ClusterPosition: m.clusterPos,
			BlockNumber:     m.clusterBlocks,
		})
	}
	if tick > m.lastEndTick {
		m.lastEndTick = tick
	}
	return nil
}

func (m *Muxer) trackByNumber(n uint64) (*TrackInfo, error) {
	if n < 1 || n > uint64(len(m.tracks)) {
		return nil, fmt.Errorf("unknown track %d: %w", n, ErrInvalidArgument)
	}
	return &m.tracks[n-1], nil
}

func (m *Muxer) openCluster(tick uint64) {
	// Nothing is written between here and flushCluster, so the cluster
	// position is already final.
	m.clusterOpen = true
	m.clusterTick = tick
	m.clusterPos = uint64(m.bw.Position() - m.segStart)
	m.clusterBlocks = 0
	m.clusterBuf = m.clusterBuf[:0]
}

func (m *Muxer) flushCluster() error {
	if !m.clusterOpen {
		return nil
	}
	var b elementBuf
	b.uint(ebml.IDTimecode, m.clusterTick)
	b.raw(m.clusterBuf)
	if err := m.writeElement(ebml.IDCluster, &b); err != nil {
		return err
	}
	logger.Debugf("Flushed cluster (timecode:%d blocks:%d)", m.clusterTick, m.clusterBlocks)
	m.haveCluster = true
	m.lastClusterTick = m.clusterTick
	m.clusterOpen = false
	return nil
}

func (m *Muxer) appendSimpleBlock(trackNumber uint64, delta int16, flags byte, data []byte) error {
	var err error
	m.scratch = m.scratch[:0]
	if m.scratch, err = ebml.AppendSize(m.scratch, trackNumber); err != nil {
		return fmt.Errorf("track number vint: %w", err)
	}
	m.scratch = append(m.scratch, byte(uint16(delta)>>8), byte(uint16(delta)), flags)
	m.scratch = append(m.scratch, data...)
	if m.clusterBuf, err = ebml.AppendElement(m.clusterBuf, ebml.IDSimpleBlock, m.scratch); err != nil {
		return fmt.Errorf("encoding simple block: %w", err)
	}
	return nil
}

// simpleBlockLen is the encoded length of a SimpleBlock element
// holding one frame of dataLen bytes.
func simpleBlockLen(trackNumber uint64, dataLen int) int {
	body := ebml.SizeWidth(trackNumber) + 3 + dataLen
	return 1 + ebml.SizeWidth(uint64(body)) + body
}

// Finalize closes the open cluster, writes the cue index and patches
// the seek head, segment duration and segment size. It returns the
// finished buffer. Calling it again returns the same buffer; frame and
// track calls after it fail without touching the buffer.
func (m *Muxer) Finalize() ([]byte, error) {
	if m.state == muxStateFinalized {
		return m.bw.Bytes(), nil
	}
	if err := m.ensureTracksWritten(); err != nil {
		return nil, err
	}
	if err := m.flushCluster(); err != nil {
		return nil, err
	}
	cuesPos := uint64(m.bw.Position() - m.segStart)
	if err := m.writeCues(); err != nil {
		return nil, err
	}
	end := m.bw.Position()

	var errs multiError
	errs.Add(m.patchSeekHead(cuesPos))
	errs.Add(m.patchDuration())
	errs.Add(m.patchSegmentSize(end))
	errs.Add(m.bw.Seek(end))
	m.state = muxStateFinalized
	logger.Debugf("Finalized segment (bytes:%d clusters:%t cues:%d)", end, m.haveCluster, len(m.cues))
	if len(errs) > 0 {
		return m.bw.Bytes(), errs
	}
	return m.bw.Bytes(), nil
}

// writeCues emits the cue index. The element is present even when no
// cue points were collected.
func (m *Muxer) writeCues() error {
	var b elementBuf
	for _, c := range m.cues {
		var pos elementBuf
		pos.uint(ebml.IDCueTrack, c.TrackNumber)
		pos.uint(ebml.IDCueClusterPosition, c.ClusterPosition)
		if c.BlockNumber > 1 {
			pos.uint(ebml.IDCueBlockNumber, c.BlockNumber)
		}
		var point elementBuf
		point.uint(ebml.IDCueTime, c.Time)
		point.master(ebml.IDCueTrackPositions, &pos)
		b.master(ebml.IDCuePoint, &point)
	}
	return m.writeElement(ebml.IDCues, &b)
}

func (m *Muxer) patchSeekHead(cuesPos uint64) error {
	var b elementBuf
	b.seekEntry(ebml.IDInfo, m.infoPos)
	b.seekEntry(ebml.IDTracks, m.tracksPos)
	b.seekEntry(ebml.IDCues, cuesPos)
	elem, err := b.element(ebml.IDSeekHead)
	if err != nil {
		return fmt.Errorf("encoding seek head: %w", err)
	}
	if err := m.bw.Seek(m.seekHeadOff); err != nil {
		return err
	}
	m.bw.ElementStartNotify(ebml.IDSeekHead, m.seekHeadOff)
	if _, err := m.bw.Write(elem); err != nil {
		return fmt.Errorf("patching seek head: %w", err)
	}
	return nil
}

func (m *Muxer) patchDuration() error {
	var buf [8]byte
	if err := ebml.PutFloat64(buf[:], float64(m.lastEndTick)); err != nil {
		return err
	}
	if err := m.bw.Seek(m.durationOff); err != nil {
		return err
	}
	if _, err := m.bw.Write(buf[:]); err != nil {
		return fmt.Errorf("patching duration: %w", err)
	}
	return nil
}

func (m *Muxer) patchSegmentSize(end int64) error {
	var buf [8]byte
	if err := ebml.PutSizeWidth(buf[:], uint64(end-m.segStart), 8); err != nil {
		return err
	}
	if err := m.bw.Seek(m.segmentSizeOff); err != nil {
		return err
	}
	if _, err := m.bw.Write(buf[:]); err != nil {
		return fmt.Errorf("patching segment size: %w", err)
	}
	return nil
}

// Data returns the bytes produced so far. The slice is shared with the
// muxer; before Finalize the segment size is still the unknown size
// placeholder.
func (m *Muxer) Data() []byte {
	return m.bw.Bytes()
}

// Tracks returns the declared track entries.
func (m *Muxer) Tracks() []TrackInfo {
	return append([]TrackInfo(nil), m.tracks...)
}

// Cues returns the cue points collected so far.
func (m *Muxer) Cues() []CuePoint {
	return append([]CuePoint(nil), m.cues...)
}

// elementBuf accumulates encoded child elements, latching the first
// encode error so call sites stay linear.
type elementBuf struct {
	buf []byte
	err error
}

func (b *elementBuf) uint(id ebml.ID, v uint64) {
	if b.err == nil {
		b.buf, b.err = ebml.AppendUint(b.buf, id, v)
	}
}

func (b *elementBuf) str(id ebml.ID, s string) {
	if b.err == nil {
		b.buf, b.err = ebml.AppendString(b.buf, id, s)
	}
}

func (b *elementBuf) float(id ebml.ID, v float64) {
	if b.err == nil {
		b.buf, b.err = ebml.AppendFloat(b.buf, id, v)
	}
}

func (b *elementBuf) bin(id ebml.ID, p []byte) {
	if b.err == nil {
		b.buf, b.err = ebml.AppendBinary(b.buf, id, p)
	}
}

func (b *elementBuf) date(id ebml.ID, t time.Time) {
	if b.err == nil {
		b.buf, b.err = ebml.AppendDate(b.buf, id, t)
	}
}

func (b *elementBuf) raw(p []byte) {
	if b.err == nil {
		b.buf = append(b.buf, p...)
	}
}

// master appends a complete child element wrapping another builder's
// payload.
func (b *elementBuf) master(id ebml.ID, child *elementBuf) {
	if b.err == nil {
		b.err = child.err
	}
	if b.err == nil {
		b.buf, b.err = ebml.AppendElement(b.buf, id, child.buf)
	}
}

// seekEntry appends one Seek element at the fixed width used by the
// reserved seek head slot.
func (b *elementBuf) seekEntry(target ebml.ID, pos uint64) {
	if b.err != nil {
		return
	}
	idBytes, err := ebml.AppendID(nil, target)
	if err != nil {
		b.err = err
		return
	}
	var e elementBuf
	e.bin(ebml.IDSeekID, idBytes)
	if e.err == nil {
		e.buf, e.err = ebml.AppendUintWidth(e.buf, ebml.IDSeekPosition, pos, 8)
	}
	b.master(ebml.IDSeek, &e)
}

// element completes the accumulated payload as one element.
func (b *elementBuf) element(id ebml.ID) ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return ebml.AppendElement(nil, id, b.buf)
}
