// Package mediainfo summarizes the structure of a WebM buffer: segment
// metadata, per track frame statistics and index counts. It is the
// engine of the webminfo command.
package mediainfo

import (
	"errors"
	"fmt"
	"io"
	"strings"

	webm "github.com/seqsense/webmcontainer"
)

// Report is the summary of one WebM buffer.
type Report struct {
	DurationSeconds float64
	TimecodeScale   uint64
	MuxingApp       string
	WritingApp      string
	Title           string
	Tracks          []TrackReport
	Clusters        uint64
	CuePoints       int
	SkippedFrames   uint64
}

// TrackReport is the per track statistic block. Timestamps are
// meaningful only when Frames is nonzero.
type TrackReport struct {
	Number           uint64
	Type             string
	CodecID          string
	Frames           uint64
	Keyframes        uint64
	Bytes            uint64
	FirstTimestampNs int64
	LastTimestampNs  int64
}

// Inspect parses data and walks every track to the end.
func Inspect(data []byte, opts ...webm.ParserOption) (*Report, error) {
	p := webm.NewParser(data, opts...)
	if err := p.ParseHeaders(); err != nil {
		return nil, err
	}

	info, err := p.Info()
	if err != nil {
		return nil, err
	}
	duration, err := p.Duration()
	if err != nil {
		return nil, err
	}
	clusters, err := p.ClusterCount()
	if err != nil {
		return nil, err
	}

	r := &Report{
		DurationSeconds: duration,
		TimecodeScale:   info.TimecodeScale,
		MuxingApp:       info.MuxingApp,
		WritingApp:      info.WritingApp,
		Title:           info.Title,
		Clusters:        clusters,
		CuePoints:       len(p.Cues()),
	}

	n, err := p.TrackCount()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		t, err := p.TrackInfo(i)
		if err != nil {
			return nil, err
		}
		tr, err := readTrack(p, t)
		if err != nil {
			return nil, err
		}
		r.Tracks = append(r.Tracks, tr)
	}
	r.SkippedFrames = p.SkippedFrames()
	return r, nil
}

func readTrack(p *webm.Parser, t webm.TrackInfo) (TrackReport, error) {
	tr := TrackReport{
		Number:  t.TrackNumber,
		Type:    trackTypeName(t.TrackType),
		CodecID: t.CodecID,
	}
	var read func(uint64) (*webm.FrameData, error)
	switch t.TrackType {
	case webm.TrackTypeVideo:
		read = p.ReadNextVideoFrame
	case webm.TrackTypeAudio:
		read = p.ReadNextAudioFrame
	default:
		// Subtitle and other non media tracks have no frame reader.
		// Report them from the track entry alone.
		return tr, nil
	}
	for {
		f, err := read(t.TrackNumber)
		if errors.Is(err, io.EOF) {
			return tr, nil
		}
		if err != nil {
			return tr, err
		}
		if tr.Frames == 0 {
			tr.FirstTimestampNs = f.TimestampNs
		}
		tr.Frames++
		tr.Bytes += uint64(len(f.Data))
		tr.LastTimestampNs = f.TimestampNs
		if f.Keyframe {
			tr.Keyframes++
		}
	}
}

func trackTypeName(t uint64) string {
	switch t {
	case webm.TrackTypeVideo:
		return "video"
	case webm.TrackTypeAudio:
		return "audio"
	default:
		return fmt.Sprintf("type %d", t)
	}
}

// String renders the report in the one line per item form printed by
// the webminfo command.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "duration: %.3fs (timecode scale %dns)\n", r.DurationSeconds, r.TimecodeScale)
	if r.Title != "" {
		fmt.Fprintf(&b, "title: %s\n", r.Title)
	}
	fmt.Fprintf(&b, "muxing app: %s\n", r.MuxingApp)
	fmt.Fprintf(&b, "writing app: %s\n", r.WritingApp)
	fmt.Fprintf(&b, "clusters: %d, cue points: %d, skipped frames: %d\n",
		r.Clusters, r.CuePoints, r.SkippedFrames)
	for _, t := range r.Tracks {
		fmt.Fprintf(&b, "track %d: %s %s frames:%d keyframes:%d bytes:%d first:%dms last:%dms\n",
			t.Number, t.Type, t.CodecID, t.Frames, t.Keyframes, t.Bytes,
			t.FirstTimestampNs/1e6, t.LastTimestampNs/1e6)
	}
	return b.String()
}
