package ppmd

import "fmt"

const (
	topValue     uint32 = 1 << 24
	bottomValue  uint32 = 1 << 16
	totalBits           = 14
	maxTotal     uint32 = 1 << totalBits
	rescaleLimit        = maxTotal - 1
)

// rangeDecoder is a byte-oriented carry-less range decoder, the same
// normalize-on-shrinking-range shape as internal/bcj2's binary range
// decoder, generalised from a single probability bit to a cumulative
// frequency table.
type rangeDecoder struct {
	in   *limitedStream
	rng  uint32
	code uint32
}

func newRangeDecoder(in *limitedStream) (*rangeDecoder, error) {
	d := &rangeDecoder{in: in, rng: 0xffffffff}

	for i := 0; i < 4; i++ {
		b, err := in.ReadByte()
		if err != nil {
			return nil, err
		}

		d.code = d.code<<8 | uint32(b)
	}

	return d, nil
}

func (d *rangeDecoder) normalize() error {
	for d.rng < topValue {
		b, err := d.in.ReadByte()
		if err != nil {
			return err
		}

		d.code = d.code<<8 | uint32(b)
		d.rng <<= 8
	}

	return nil
}

// decodeSymbol decodes one byte given cumulative frequencies freq[0..256]
// where freq[s] is the cumulative count of symbols < s and freq[256] is
// the total.
func (d *rangeDecoder) decodeSymbol(freq *[257]uint32) (byte, error) {
	total := freq[256]
	if total == 0 {
		return 0, fmt.Errorf("ppmd: empty frequency table")
	}

	d.rng /= total

	target := d.code / d.rng
	if target >= total {
		target = total - 1
	}

	sym := 0
	for freq[sym+1] <= target {
		sym++
	}

	d.code -= freq[sym] * d.rng
	d.rng *= freq[sym+1] - freq[sym]

	if err := d.normalize(); err != nil {
		return 0, err
	}

	return byte(sym), nil
}

// order1Model is an adaptive order-1 byte frequency model: one
// cumulative-frequency table per preceding byte, rescaled once the
// total would overflow totalBits.
type order1Model struct {
	ctx    byte
	tables [256]*[257]uint32
}

func newOrder1Model() *order1Model {
	return &order1Model{}
}

func (m *order1Model) freq(ctx byte) *[257]uint32 {
	if m.tables[ctx] == nil {
		t := new([257]uint32)
		for i := range t {
			t[i] = uint32(i)
		}

		m.tables[ctx] = t
	}

	return m.tables[ctx]
}

func (m *order1Model) update(sym byte) {
	t := m.tables[m.ctx]

	for i := int(sym) + 1; i < len(t); i++ {
		t[i]++
	}

	if t[256] >= rescaleLimit {
		for i := 1; i < len(t); i++ {
			t[i] = (t[i] + 1) / 2
			if t[i] <= t[i-1] {
				t[i] = t[i-1] + 1
			}
		}
	}

	m.ctx = sym
}
