package transaction

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/nspcc-dev/txrelay/pkg/crypto/hash"
	"github.com/nspcc-dev/txrelay/pkg/io"
	"github.com/nspcc-dev/txrelay/pkg/util"
)

const (
	// MaxTransactionSize is the upper limit size in bytes that a transaction can reach.
	MaxTransactionSize = 128 * 1024
	// MaxDataSize is the maximum allowed payload length.
	MaxDataSize = MaxTransactionSize - util.Uint160Size - 8 - feeSize - 5
	// feeSize is the size of the fixed-width BE fee encoding.
	feeSize = 32
)

// ErrInvalidDataLength is returned when the payload exceeds MaxDataSize.
var ErrInvalidDataLength = errors.New("invalid data length")

// Transaction is a pending transaction as seen by the pool and relayed
// between nodes. It must not be modified after it has been hashed.
type Transaction struct {
	// Sender is the account paying for the transaction.
	Sender util.Uint160
	// Nonce is the sender's sequence number.
	Nonce uint64
	// Fee is the fee offered by the sender.
	Fee uint256.Int
	// Data is an opaque transaction payload.
	Data []byte

	// size is transaction's serialized size.
	size int
	// Keccak-256 of the canonical encoding.
	hash util.Uint256
	// Whether hash is correct.
	hashed bool
}

// New returns a new transaction from the given sender with the given
// nonce, fee and payload.
func New(sender util.Uint160, nonce uint64, fee uint64, data []byte) *Transaction {
	t := &Transaction{
		Sender: sender,
		Nonce:  nonce,
		Data:   data,
	}
	t.Fee.SetUint64(fee)
	return t
}

// NewTransactionFromBytes decodes byte array into *Transaction.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	tx := &Transaction{}
	r := io.NewBinReaderFromBuf(b)
	tx.decodeData(r)
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Len() != 0 {
		return nil, errors.New("additional data after the transaction")
	}
	tx.size = len(b)
	tx.hash = hash.Keccak256(b)
	tx.hashed = true
	return tx, nil
}

// Hash returns the hash of the transaction.
func (t *Transaction) Hash() util.Uint256 {
	if !t.hashed {
		if t.createHash() != nil {
			panic("failed to compute hash!")
		}
	}
	return t.hash
}

// createHash creates the hash of the transaction.
func (t *Transaction) createHash() error {
	b := t.Bytes()
	if b == nil {
		return errors.New("failed to serialize transaction")
	}
	t.hash = hash.Keccak256(b)
	t.size = len(b)
	t.hashed = true
	return nil
}

// DecodeBinary implements the io.Serializable interface.
func (t *Transaction) DecodeBinary(br *io.BinReader) {
	t.decodeData(br)
	if br.Err == nil {
		_ = t.createHash()
	}
}

func (t *Transaction) decodeData(br *io.BinReader) {
	var sender = make([]byte, util.Uint160Size)
	br.ReadBytes(sender)
	copy(t.Sender[:], sender)
	t.Nonce = br.ReadU64LE()
	var fee [feeSize]byte
	br.ReadBytes(fee[:])
	t.Fee.SetBytes32(fee[:])
	t.Data = br.ReadVarBytes(MaxDataSize)
	if br.Err == nil {
		br.Err = t.isValid()
	}
}

// EncodeBinary implements the io.Serializable interface.
func (t *Transaction) EncodeBinary(bw *io.BinWriter) {
	bw.WriteBytes(t.Sender.BytesBE())
	bw.WriteU64LE(t.Nonce)
	fee := t.Fee.Bytes32()
	bw.WriteBytes(fee[:])
	bw.WriteVarBytes(t.Data)
}

// Bytes converts the transaction to []byte. This is the canonical encoding
// the identifier is computed from.
func (t *Transaction) Bytes() []byte {
	buf := io.NewBufBinWriter()
	t.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return nil
	}
	return buf.Bytes()
}

// Size returns size of the serialized transaction.
func (t *Transaction) Size() int {
	if t.size == 0 {
		t.size = len(t.Bytes())
	}
	return t.size
}

// isValid checks the transaction for consistency.
func (t *Transaction) isValid() error {
	if len(t.Data) > MaxDataSize {
		return fmt.Errorf("%w: %d", ErrInvalidDataLength, len(t.Data))
	}
	return nil
}

// transactionJSON is a wrapper for Transaction and
// used for correct marhalling of transaction.Data.
type transactionJSON struct {
	TxID   util.Uint256 `json:"hash"`
	Size   int          `json:"size"`
	Sender util.Uint160 `json:"sender"`
	Nonce  uint64       `json:"nonce"`
	Fee    string       `json:"fee"`
	Data   []byte       `json:"data"`
}

// MarshalJSON implements the json.Marshaler interface.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	tx := transactionJSON{
		TxID:   t.Hash(),
		Size:   t.Size(),
		Sender: t.Sender,
		Nonce:  t.Nonce,
		Fee:    t.Fee.Dec(),
		Data:   t.Data,
	}
	return json.Marshal(tx)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	tx := new(transactionJSON)
	if err := json.Unmarshal(data, tx); err != nil {
		return err
	}
	t.Sender = tx.Sender
	t.Nonce = tx.Nonce
	t.Data = tx.Data
	if err := t.Fee.SetFromDecimal(tx.Fee); err != nil {
		return fmt.Errorf("invalid fee: %w", err)
	}
	if err := t.isValid(); err != nil {
		return err
	}
	if t.Hash() != tx.TxID {
		return errors.New("txid doesn't match transaction hash")
	}
	return nil
}
