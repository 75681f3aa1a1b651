package universe

import (
	"encoding/binary"
	"fmt"

	"github.com/dmxio/olavc/showfile"
)

// RowWidth is the number of meaningful bytes in one packed row: a
// 16-bit little-endian universe id followed by the 512 channel values.
const RowWidth = 2 + showfile.ChannelCount

// Pack serializes the current state into a row-major buffer, one row of
// stride bytes per universe in ascending id order. stride must be at
// least RowWidth; bytes past RowWidth in each row are padding and are
// left as found in dst.
//
// dst is reused when it has sufficient capacity, so a caller-supplied
// scratch buffer avoids a per-frame allocation.
func (t *Table) Pack(stride int, dst []byte) ([]byte, error) {
	if stride < RowWidth {
		return nil, fmt.Errorf("%w: stride %d, row width %d", ErrStrideTooShort, stride, RowWidth)
	}

	need := stride * len(t.order)
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]

	for i, id := range t.order {
		row := dst[i*stride:]
		binary.LittleEndian.PutUint16(row, uint16(id))
		ch := t.rows[id]
		copy(row[2:RowWidth], ch[:])
	}
	return dst, nil
}

// UnpackRow recovers the universe id and channel values from one packed
// row. It is the inverse of the per-row layout written by Pack and is
// used by the video-to-showfile path.
func UnpackRow(row []byte) (uint32, showfile.ChannelRow, error) {
	var ch showfile.ChannelRow
	if len(row) < RowWidth {
		return 0, ch, fmt.Errorf("universe: packed row is %d bytes, need %d", len(row), RowWidth)
	}
	id := uint32(binary.LittleEndian.Uint16(row))
	copy(ch[:], row[2:RowWidth])
	return id, ch, nil
}
