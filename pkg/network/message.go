package network

import (
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/txrelay/pkg/io"
	"github.com/nspcc-dev/txrelay/pkg/network/payload"
)

// Message is a complete message sent between nodes.
type Message struct {
	// Flags that represents whether a message is compressed.
	Flags MessageFlag

	// Command is a byte command code.
	Command CommandType

	// Payload send with the message.
	Payload payload.Payload

	// Received is the time the message was received from the peer, it's
	// zero for outgoing messages.
	Received time.Time
}

// MessageFlag represents compression level of a message.
type MessageFlag byte

// Possible message flags.
const (
	Compressed MessageFlag = 1 << iota
	None       MessageFlag = 0
)

// CompressionMinSize is the lower bound to apply compression.
const CompressionMinSize = 128

// CommandType represents the type of a message command.
type CommandType byte

// Valid protocol commands used to send between nodes.
const (
	CMDTX             CommandType = 0x2b
	CMDPooledTxHashes CommandType = 0x2c
	CMDGetData        CommandType = 0x28
	CMDNotFound       CommandType = 0x2a
)

var (
	// ErrUnknownCommand is returned for messages with unsupported commands.
	ErrUnknownCommand = errors.New("unknown command")
	// errInvalidPayload is returned when the message payload doesn't match
	// its command.
	errInvalidPayload = errors.New("invalid payload")
)

// String implements the fmt.Stringer interface.
func (c CommandType) String() string {
	switch c {
	case CMDTX:
		return "CMDTX"
	case CMDPooledTxHashes:
		return "CMDPooledTxHashes"
	case CMDGetData:
		return "CMDGetData"
	case CMDNotFound:
		return "CMDNotFound"
	default:
		return fmt.Sprintf("CommandType(%d)", byte(c))
	}
}

// NewMessage returns a new message with the given payload.
func NewMessage(cmd CommandType, p payload.Payload) *Message {
	return &Message{
		Command: cmd,
		Payload: p,
	}
}

// Decode decodes a Message from the given reader.
func (m *Message) Decode(br *io.BinReader) error {
	m.Flags = MessageFlag(br.ReadB())
	m.Command = CommandType(br.ReadB())
	b := br.ReadVarBytes(payload.MaxSize)
	if br.Err != nil {
		return br.Err
	}
	if m.Flags&^Compressed != 0 {
		return fmt.Errorf("unknown message flags %d", m.Flags)
	}
	if m.Flags&Compressed != 0 {
		d, err := decompress(b)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidPayload, err)
		}
		b = d
	}
	return m.decodePayload(b)
}

func (m *Message) decodePayload(buf []byte) error {
	var p payload.Payload
	switch m.Command {
	case CMDTX:
		p = &payload.Transactions{}
	case CMDPooledTxHashes:
		p = &payload.Announcement{}
	case CMDGetData, CMDNotFound:
		p = &payload.Inventory{}
	default:
		return fmt.Errorf("%w: can't decode %s", ErrUnknownCommand, m.Command)
	}
	r := io.NewBinReaderFromBuf(buf)
	p.DecodeBinary(r)
	if r.Err == nil && r.Len() != 0 {
		r.Err = errors.New("extra data after the payload")
	}
	if r.Err != nil {
		return r.Err
	}
	m.Payload = p
	return nil
}

// Encode encodes a Message to any given BinWriter. Large transaction
// batches and announcements are compressed.
func (m *Message) Encode(br *io.BinWriter) error {
	var b []byte
	m.Flags = None
	if m.Payload != nil {
		w := io.NewBufBinWriter()
		m.Payload.EncodeBinary(w.BinWriter)
		if w.Err != nil {
			return w.Err
		}
		b = w.Bytes()
		if len(b) > CompressionMinSize && canCompress(m.Command) {
			c, err := compress(b)
			if err == nil {
				b = c
				m.Flags |= Compressed
			} else if !errors.Is(err, errIncompressible) {
				return err
			}
		}
	}
	br.WriteB(byte(m.Flags))
	br.WriteB(byte(m.Command))
	br.WriteVarBytes(b)
	return br.Err
}

// Bytes serializes a Message into the new allocated buffer.
func (m *Message) Bytes() ([]byte, error) {
	w := io.NewBufBinWriter()
	if err := m.Encode(w.BinWriter); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// canCompress returns whether the payload of the command can be compressed.
func canCompress(cmd CommandType) bool {
	switch cmd {
	case CMDTX, CMDPooledTxHashes:
		return true
	default:
		return false
	}
}
