/*
 * agc - Rope image loader
 */

package memory

import (
	"io"

	"github.com/spf13/afero"
)

// yaYUL ".bin" rope images store FixedNumBanks banks of FixedBankSize words,
// each word as two bytes (MSB, LSB) packed as msb<<7 | lsb>>1, in fixed-bank
// numeric order 0..35 — except banks 0-3, which the image stores as if
// numbered 2,3,0,1 (a quirk of how the assembler lays out the lowest four
// fixed-switched banks). LoadRopeFS corrects that swap on the way in so the
// rest of the emulator can address fixed banks in their true hardware order.
const ropeImageSize = FixedNumBanks * FixedBankSize * 2

var bankCorrection = map[int]int{
	0: 2,
	1: 3,
	2: 0,
	3: 1,
}

func correctedBank(b int) int {
	if c, ok := bankCorrection[b]; ok {
		return c
	}
	return b
}

// LoadRopeFS loads a yaYUL-format fixed-memory rope image from path on fsys,
// returning a freshly populated Memory. fsys is injectable (afero.NewOsFs()
// for real files, afero.NewMemMapFs() in tests) rather than hardcoding
// os.Open, so tests can exercise the loader against an in-memory image.
func LoadRopeFS(fsys afero.Fs, path string) (*Memory, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() != ropeImageSize {
		return nil, &ErrInvalidImage{Path: path, Size: info.Size(), Want: ropeImageSize}
	}

	m := New()
	buf := make([]byte, FixedBankSize*2)
	for bank := 0; bank < FixedNumBanks; bank++ {
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, err
		}
		dst := correctedBank(bank)
		for addr := 0; addr < FixedBankSize; addr++ {
			msb := uint16(buf[addr*2])
			lsb := uint16(buf[addr*2+1])
			value := (msb << 7) | (lsb >> 1)
			m.Fixed[dst].Write(uint16(addr), WithProperParity(value))
		}
	}
	return m, nil
}
