package payload

import (
	"errors"

	"github.com/nspcc-dev/txrelay/pkg/io"
	"github.com/nspcc-dev/txrelay/pkg/util"
)

// Announcement advertises pooled transactions by their hashes along with
// transaction sizes, so that the receiver can decide whether to fetch them.
type Announcement struct {
	Hashes []util.Uint256
	Sizes  []uint32
}

// NewAnnouncement creates an announcement for the given transaction hashes
// and sizes.
func NewAnnouncement(hashes []util.Uint256, sizes []uint32) *Announcement {
	return &Announcement{
		Hashes: hashes,
		Sizes:  sizes,
	}
}

// DecodeBinary implements the Serializable interface.
func (a *Announcement) DecodeBinary(br *io.BinReader) {
	a.Hashes = readHashes(br)
	if br.Err != nil {
		return
	}
	n := br.ReadVarUint()
	if br.Err == nil && n != uint64(len(a.Hashes)) {
		br.Err = errors.New("hashes and sizes mismatch")
		return
	}
	a.Sizes = make([]uint32, n)
	for i := range a.Sizes {
		a.Sizes[i] = br.ReadU32LE()
	}
}

// EncodeBinary implements the Serializable interface.
func (a *Announcement) EncodeBinary(bw *io.BinWriter) {
	writeHashes(bw, a.Hashes)
	bw.WriteVarUint(uint64(len(a.Sizes)))
	for _, s := range a.Sizes {
		bw.WriteU32LE(s)
	}
}
