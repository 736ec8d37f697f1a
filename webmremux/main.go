package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	webm "github.com/seqsense/webmcontainer"
)

var log = logrus.New()

func main() {
	input := flag.String("input", "", "WebM file to read")
	output := flag.String("output", "", "path of the rebuilt WebM file")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	webm.SetLogger(log)

	if *input == "" || *output == "" {
		flag.Usage()
		os.Exit(2)
	}
	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatal(err)
	}

	out, err := remux(data)
	if err != nil {
		log.Fatalf("remux failed (code %d): %v", webm.CodeOf(err), err)
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		log.Fatal(err)
	}
	log.Infof("remuxed %d bytes into %d bytes", len(data), len(out))
}

// source tracks the read cursor of one input track. next is nil once
// the track is drained.
type source struct {
	oldNumber uint64
	newNumber uint64
	video     bool
	next      *webm.FrameData
}

// remux rebuilds data frame by frame through the muxer, interleaving
// the tracks by timestamp.
func remux(data []byte) ([]byte, error) {
	p := webm.NewParser(data)
	if err := p.ParseHeaders(); err != nil {
		return nil, err
	}
	info, err := p.Info()
	if err != nil {
		return nil, err
	}

	mopts := []webm.MuxerOption{
		webm.WithTimecodeScale(info.TimecodeScale),
		webm.WithWritingApp("webmremux"),
	}
	if info.MuxingApp != "" {
		mopts = append(mopts, webm.WithMuxingApp(info.MuxingApp))
	}
	if info.Title != "" {
		mopts = append(mopts, webm.WithTitle(info.Title))
	}
	m, err := webm.NewMuxer(mopts...)
	if err != nil {
		return nil, err
	}

	sources, err := declareTracks(p, m)
	if err != nil {
		return nil, err
	}
	for _, s := range sources {
		if err := advance(p, s); err != nil {
			return nil, err
		}
	}
	for {
		var best *source
		for _, s := range sources {
			if s.next == nil {
				continue
			}
			if best == nil || s.next.TimestampNs < best.next.TimestampNs {
				best = s
			}
		}
		if best == nil {
			break
		}
		f := best.next
		if best.video {
			err = m.WriteVideoFrame(best.newNumber, f.Data, f.TimestampNs, f.Keyframe)
		} else {
			err = m.WriteAudioFrame(best.newNumber, f.Data, f.TimestampNs)
		}
		if err != nil {
			return nil, err
		}
		if err := advance(p, best); err != nil {
			return nil, err
		}
	}
	if n := p.SkippedFrames(); n > 0 {
		log.Warnf("skipped %d damaged frames", n)
	}
	return m.Finalize()
}

func declareTracks(p *webm.Parser, m *webm.Muxer) ([]*source, error) {
	n, err := p.TrackCount()
	if err != nil {
		return nil, err
	}
	var sources []*source
	for i := 0; i < n; i++ {
		t, err := p.TrackInfo(i)
		if err != nil {
			return nil, err
		}
		var topts []webm.TrackOption
		if t.Name != "" {
			topts = append(topts, webm.WithTrackName(t.Name))
		}
		if t.Language != "" {
			topts = append(topts, webm.WithLanguage(t.Language))
		}
		if len(t.CodecPrivate) > 0 {
			topts = append(topts, webm.WithCodecPrivate(t.CodecPrivate))
		}

		var num uint64
		switch t.TrackType {
		case webm.TrackTypeVideo:
			v := t.Video
			if v == nil {
				log.Warnf("dropping video track %d without video metadata", t.TrackNumber)
				continue
			}
			if v.DisplayWidth != v.PixelWidth || v.DisplayHeight != v.PixelHeight {
				topts = append(topts, webm.WithDisplaySize(v.DisplayWidth, v.DisplayHeight))
			}
			if v.FrameRate > 0 {
				topts = append(topts, webm.WithFrameRate(v.FrameRate))
			}
			num, err = m.AddVideoTrack(v.PixelWidth, v.PixelHeight, t.CodecID, topts...)
		case webm.TrackTypeAudio:
			a := t.Audio
			if a == nil {
				log.Warnf("dropping audio track %d without audio metadata", t.TrackNumber)
				continue
			}
			if a.BitDepth > 0 {
				topts = append(topts, webm.WithBitDepth(a.BitDepth))
			}
			num, err = m.AddAudioTrack(a.SamplingFrequency, a.Channels, t.CodecID, topts...)
		default:
			log.Warnf("dropping track %d of unsupported type %d", t.TrackNumber, t.TrackType)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("declaring track %d: %w", t.TrackNumber, err)
		}
		sources = append(sources, &source{
			oldNumber: t.TrackNumber,
			newNumber: num,
			video:     t.TrackType == webm.TrackTypeVideo,
		})
	}
	return sources, nil
}

func advance(p *webm.Parser, s *source) error {
	var f *webm.FrameData
	var err error
	if s.video {
		f, err = p.ReadNextVideoFrame(s.oldNumber)
	} else {
		f, err = p.ReadNextAudioFrame(s.oldNumber)
	}
	if errors.Is(err, io.EOF) {
		s.next = nil
		return nil
	}
	if err != nil {
		return err
	}
	s.next = f
	return nil
}
