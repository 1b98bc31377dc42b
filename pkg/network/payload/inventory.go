package payload

import (
	"errors"

	"github.com/nspcc-dev/txrelay/pkg/io"
	"github.com/nspcc-dev/txrelay/pkg/util"
)

// MaxHashesCount is the maximum number of hashes in an inventory or an
// announcement.
const MaxHashesCount = 0x1000

// ErrTooManyHashes is returned when the number of hashes exceeds MaxHashesCount.
var ErrTooManyHashes = errors.New("too many hashes")

// InventoryType is the type of an object in the Inventory message.
type InventoryType uint8

// String implements the Stringer interface.
func (i InventoryType) String() string {
	switch i {
	case TXType:
		return "TX"
	default:
		return "unknown inventory type"
	}
}

// Valid returns true if the inventory (type) is known.
func (i InventoryType) Valid() bool {
	return i == TXType
}

// List of valid InventoryTypes.
const (
	TXType InventoryType = 0x2b
)

// Inventory payload is used to request (getdata) objects by their hashes
// or to report them missing (notfound).
type Inventory struct {
	// Type if the object hash.
	Type InventoryType

	// A list of hashes.
	Hashes []util.Uint256
}

// NewInventory returns a pointer to an Inventory.
func NewInventory(typ InventoryType, hashes []util.Uint256) *Inventory {
	return &Inventory{
		Type:   typ,
		Hashes: hashes,
	}
}

// DecodeBinary implements the Serializable interface.
func (p *Inventory) DecodeBinary(br *io.BinReader) {
	p.Type = InventoryType(br.ReadB())
	if br.Err == nil && !p.Type.Valid() {
		br.Err = errors.New("invalid inventory type")
		return
	}
	p.Hashes = readHashes(br)
}

// EncodeBinary implements the Serializable interface.
func (p *Inventory) EncodeBinary(bw *io.BinWriter) {
	bw.WriteB(byte(p.Type))
	writeHashes(bw, p.Hashes)
}

func readHashes(br *io.BinReader) []util.Uint256 {
	n := br.ReadVarUint()
	if br.Err != nil {
		return nil
	}
	if n > MaxHashesCount {
		br.Err = ErrTooManyHashes
		return nil
	}
	hashes := make([]util.Uint256, n)
	for i := range hashes {
		br.ReadBytes(hashes[i][:])
	}
	if br.Err != nil {
		return nil
	}
	return hashes
}

func writeHashes(bw *io.BinWriter, hashes []util.Uint256) {
	bw.WriteVarUint(uint64(len(hashes)))
	for i := range hashes {
		bw.WriteBytes(hashes[i][:])
	}
}
