package encode

import (
	"fmt"
	"io"

	"github.com/at-wat/ebml-go"

	"github.com/dmxio/olavc/universe"
)

// Matroska timecodes are written in milliseconds: TimecodeScale is in
// nanoseconds per tick.
const timecodeScaleMS = 1_000_000

type mkvEBMLHeader struct {
	EBMLVersion            uint64
	EBMLReadVersion        uint64
	EBMLMaxIDLength        uint64
	EBMLMaxSizeLength      uint64
	EBMLDocType            string
	EBMLDocTypeVersion     uint64
	EBMLDocTypeReadVersion uint64
}

type mkvInfo struct {
	TimecodeScale uint64
	MuxingApp     string
	WritingApp    string
}

type mkvVideo struct {
	PixelWidth  uint64
	PixelHeight uint64
	ColourSpace []byte
}

type mkvTrackEntry struct {
	TrackNumber uint64
	TrackUID    uint64
	TrackType   uint64
	CodecID     string
	Video       mkvVideo
}

type mkvTracks struct {
	TrackEntry []mkvTrackEntry
}

type mkvSegmentHead struct {
	Info   mkvInfo
	Tracks mkvTracks
}

type mkvHead struct {
	Header  mkvEBMLHeader  `ebml:"EBML"`
	Segment mkvSegmentHead `ebml:"Segment,size=unknown"`
}

type mkvBlockGroup struct {
	Block         ebml.Block
	BlockDuration uint64
}

type mkvCluster struct {
	Timecode   uint64
	BlockGroup mkvBlockGroup
}

// mkvClusterWrite appends one Cluster to an already open unknown-size
// Segment.
type mkvClusterWrite struct {
	Cluster mkvCluster `ebml:"Cluster"`
}

// MKVWriter muxes gray8 frames into a Matroska stream. Every frame gets
// its own cluster so it carries an absolute millisecond timecode and an
// explicit duration; frame data is stored uncompressed, which keeps the
// container lossless and byte-inspectable.
//
// The writer borrows w; buffering and closing the underlying stream is
// the caller's concern.
type MKVWriter struct {
	w       io.Writer
	stride  int
	rows    int
	nextPTS uint64
	closed  bool
}

// NewMKVWriter writes the container header for a video track of
// stride x rows gray8 pixels and returns a writer ready for frames.
func NewMKVWriter(w io.Writer, stride, rows int) (*MKVWriter, error) {
	if stride < universe.RowWidth {
		return nil, fmt.Errorf("%w: stride %d, row width %d", universe.ErrStrideTooShort, stride, universe.RowWidth)
	}
	if rows <= 0 {
		return nil, fmt.Errorf("%w: %d rows", universe.ErrNonPositiveCount, rows)
	}

	head := mkvHead{
		Header: mkvEBMLHeader{
			EBMLVersion:            1,
			EBMLReadVersion:        1,
			EBMLMaxIDLength:        4,
			EBMLMaxSizeLength:      8,
			EBMLDocType:            "matroska",
			EBMLDocTypeVersion:     4,
			EBMLDocTypeReadVersion: 2,
		},
		Segment: mkvSegmentHead{
			Info: mkvInfo{
				TimecodeScale: timecodeScaleMS,
				MuxingApp:     "olavc",
				WritingApp:    "olavc",
			},
			Tracks: mkvTracks{
				TrackEntry: []mkvTrackEntry{{
					TrackNumber: 1,
					TrackUID:    1,
					TrackType:   1, // video
					CodecID:     "V_UNCOMPRESSED",
					Video: mkvVideo{
						PixelWidth:  uint64(stride),
						PixelHeight: uint64(rows),
						// Uncompressed tracks carry their pixel format
						// as a fourcc; Y800 is single-plane gray8.
						ColourSpace: []byte("Y800"),
					},
				}},
			},
		},
	}
	if err := ebml.Marshal(&head, w); err != nil {
		return nil, fmt.Errorf("encode: writing MKV header: %w", err)
	}

	return &MKVWriter{w: w, stride: stride, rows: rows}, nil
}

// WriteFrame appends one frame of stride*rows gray8 bytes, held for
// durationMS. Frames are timestamped back to back: each frame's
// timecode is the sum of all previous durations.
func (m *MKVWriter) WriteFrame(buf []byte, stride, rows int, durationMS int64) error {
	if m.closed {
		return ErrClosed
	}
	if err := checkFrame(buf, stride, rows, m.stride, m.rows, durationMS); err != nil {
		return err
	}

	// Marshal copies the block data before returning, so the caller's
	// buffer can be reused for the next frame.
	cluster := mkvClusterWrite{
		Cluster: mkvCluster{
			Timecode: m.nextPTS,
			BlockGroup: mkvBlockGroup{
				Block: ebml.Block{
					TrackNumber: 1,
					Timecode:    0,
					Data:        [][]byte{buf[:stride*rows]},
				},
				BlockDuration: uint64(durationMS),
			},
		},
	}
	if err := ebml.Marshal(&cluster, m.w); err != nil {
		return fmt.Errorf("encode: writing frame at %dms: %w", m.nextPTS, err)
	}

	m.nextPTS += uint64(durationMS)
	return nil
}

// Close marks the writer finished. The unknown-size segment needs no
// trailer, so closing only guards against further writes. Close is
// idempotent.
func (m *MKVWriter) Close() error {
	m.closed = true
	return nil
}

// DurationMS reports the total duration of all frames written so far.
func (m *MKVWriter) DurationMS() uint64 {
	return m.nextPTS
}
