package showfile

// ChannelCount is the number of channels carried by one DMX universe.
const ChannelCount = 512

// ChannelRow holds one value per channel of a universe. Index 0 is
// channel 0. Rows are replaced wholesale on every update, never patched
// in place.
type ChannelRow [ChannelCount]byte

// DecodeChannels parses a channel list into row, zeroing it first.
//
// The list is a sequence of 1-3 digit decimal values separated by
// commas. The separator is optional: a value ends after at most three
// digits, so a run of four or more digits splits ("1234" decodes as 123
// followed by 4). A trailing comma is legal and ignored. An empty input
// leaves the row all zero. Channels beyond the last decoded value stay
// zero.
func DecodeChannels(s string, row *ChannelRow) error {
	*row = ChannelRow{}

	next := 0
	for i := 0; i < len(s); {
		// A comma is only a separator after the first value; consuming
		// one at end of input ends the list.
		if i > 0 && s[i] == ',' {
			i++
			if i == len(s) {
				return nil
			}
		}

		digits := 0
		for digits < 3 && i+digits < len(s) && isDigit(s[i+digits]) {
			digits++
		}
		if digits == 0 {
			return ErrMalformedChannelList
		}

		v := 0
		for d := 0; d < digits; d++ {
			v = v*10 + int(s[i+d]-'0')
		}
		if v > 255 {
			return ErrChannelOverflow
		}
		if next >= ChannelCount {
			return ErrTooManyChannels
		}
		row[next] = byte(v)
		next++
		i += digits
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
