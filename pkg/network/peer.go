package network

import "errors"

// ErrPeerGone is returned from EnqueueP2PMessage when the peer is
// disconnected, such peers are unregistered.
var ErrPeerGone = errors.New("the peer is gone already")

// Peer represents a network node the server is connected to. Message
// delivery and the wire protocol are implemented by the transport layer.
type Peer interface {
	// ID returns a unique peer identifier for logging.
	ID() string
	// EnqueueP2PMessage is a non-blocking send. It queues the message into
	// the peer's outgoing queue and returns an error if the queue is full
	// or the peer is gone.
	EnqueueP2PMessage(*Message) error
	// Disconnect closes the connection with the peer.
	Disconnect(error)
}

// Announcer is implemented by peers able to receive transaction hash
// announcements instead of full transactions.
type Announcer interface {
	SupportsTxAnnouncements() bool
}
