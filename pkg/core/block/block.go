package block

import (
	"errors"

	"github.com/nspcc-dev/txrelay/pkg/core/transaction"
	"github.com/nspcc-dev/txrelay/pkg/crypto/hash"
	"github.com/nspcc-dev/txrelay/pkg/io"
	"github.com/nspcc-dev/txrelay/pkg/util"
)

// MaxTransactionsPerBlock is the maximum number of transactions per block.
const MaxTransactionsPerBlock = 65535

// ErrMaxContentsPerBlock is returned when the maximum number of contents per block is reached.
var ErrMaxContentsPerBlock = errors.New("the number of contents exceeds the maximum number of contents per block")

// Block is a block accepted by the chain as seen by the transaction pool:
// only the index and the list of included transactions matter here.
type Block struct {
	// Index is the height of the block.
	Index uint32
	// Timestamp in milliseconds.
	Timestamp uint64
	// Transaction list.
	Transactions []*transaction.Transaction

	hash   util.Uint256
	hashed bool
}

// New creates a new block with the given index and transactions.
func New(index uint32, timestamp uint64, txes ...*transaction.Transaction) *Block {
	return &Block{
		Index:        index,
		Timestamp:    timestamp,
		Transactions: txes,
	}
}

// Hashes returns identifiers of all transactions included into the block.
func (b *Block) Hashes() []util.Uint256 {
	hashes := make([]util.Uint256, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.Hash()
	}
	return hashes
}

// Hash returns the hash of the block.
func (b *Block) Hash() util.Uint256 {
	if !b.hashed {
		buf := io.NewBufBinWriter()
		b.EncodeBinary(buf.BinWriter)
		b.hash = hash.Keccak256(buf.Bytes())
		b.hashed = true
	}
	return b.hash
}

// EncodeBinary encodes the block to the given BinWriter, implementing
// Serializable interface.
func (b *Block) EncodeBinary(bw *io.BinWriter) {
	bw.WriteU32LE(b.Index)
	bw.WriteU64LE(b.Timestamp)
	bw.WriteVarUint(uint64(len(b.Transactions)))
	for i := range b.Transactions {
		b.Transactions[i].EncodeBinary(bw)
	}
}

// DecodeBinary decodes the block from the given BinReader, implementing
// Serializable interface.
func (b *Block) DecodeBinary(br *io.BinReader) {
	b.Index = br.ReadU32LE()
	b.Timestamp = br.ReadU64LE()
	contentsCount := br.ReadVarUint()
	if contentsCount > MaxTransactionsPerBlock {
		br.Err = ErrMaxContentsPerBlock
		return
	}
	txes := make([]*transaction.Transaction, contentsCount)
	for i := 0; i < int(contentsCount); i++ {
		tx := &transaction.Transaction{}
		tx.DecodeBinary(br)
		txes[i] = tx
	}
	if br.Err != nil {
		return
	}
	b.Transactions = txes
	b.hashed = false
}
