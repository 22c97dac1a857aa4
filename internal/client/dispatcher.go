package client

import (
	"fmt"
	"io"
	"sync"

	"github.com/ByteMaster2003/null-talk/internal/wire"
)

// Dispatcher owns the connection's single reader goroutine and correlates
// ServerResponse frames with the one command waiting on them. This is the
// "cleaner" design the source's two disciplines (abort-restart-the-reader
// vs. a direct synchronous read) should have converged on: one reader,
// tagging every frame by shape, handing ServerResponses to a FIFO waiter
// and everything else to the message pipeline. The client only ever has
// one command in flight at a time, so the waiter is a single slot guarded
// by a mutex rather than an actual queue — the same discipline
// massiveart-go.crypto/ssh/client.go's ClientConn.globalRequest uses for
// its global requests.
type Dispatcher struct {
	pipeline  *MessagePipeline
	onInbound func(sessionID string, msg LoggedMessage)

	cmdMu   sync.Mutex
	pending chan wire.ServerResponse

	done chan struct{}
}

func NewDispatcher(pipeline *MessagePipeline) *Dispatcher {
	return &Dispatcher{
		pipeline: pipeline,
		pending:  make(chan wire.ServerResponse, 1),
		done:     make(chan struct{}),
	}
}

// OnInbound registers a callback fired whenever a decrypted message lands
// in a session's log, so the UI can notice without polling.
func (d *Dispatcher) OnInbound(fn func(sessionID string, msg LoggedMessage)) {
	d.onInbound = fn
}

// Run reads frames off conn until it errors or conn is closed, dispatching
// each one by its decoded shape. Call it in its own goroutine once per
// connection; its return value is the reason the connection ended.
func (d *Dispatcher) Run(conn io.Reader) error {
	defer close(d.done)
	for {
		body, err := wire.ReadFrameBytes(conn)
		if err != nil {
			return err
		}

		if wire.IsServerResponse(body) {
			var resp wire.ServerResponse
			if err := wire.Decode(body, &resp); err != nil {
				continue
			}
			select {
			case d.pending <- resp:
			default:
				// the one-slot buffer still holds an undelivered
				// response; a second one is a protocol violation from
				// the server, drop it.
			}
			continue
		}

		var pkt wire.Packet
		if err := wire.Decode(body, &pkt); err != nil {
			continue
		}
		if pkt.Kind.Tag != wire.KindDirectMessage && pkt.Kind.Tag != wire.KindGroupMessage {
			continue
		}
		s, logged, err := d.pipeline.Inbound(pkt)
		if err != nil || s == nil || logged == nil {
			continue
		}
		if d.onInbound != nil {
			d.onInbound(s.ID, *logged)
		}
	}
}

// SendCommand builds a command packet and hands it to writeFrame, then
// blocks for its ServerResponse. Serialized by cmdMu since the protocol
// allows exactly one command in flight per connection. writeFrame is a
// callback rather than a plain io.Writer so the caller can serialize it
// against its own outbound writer goroutine — wire.WriteFrame issues two
// separate Write calls per frame (length prefix, then body), and without a
// shared lock spanning both, a command write and a queued-message write
// from the writer goroutine could interleave their bytes on the wire and
// desync the connection's framing entirely. Per §5 there is no explicit
// timeout on the round-trip; a dead connection is only discovered through
// Run returning, which unblocks this wait via d.done.
func (d *Dispatcher) SendCommand(writeFrame func(interface{}) error, verb string, payload []byte) (wire.ServerResponse, error) {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	pkt := wire.Packet{Kind: wire.CommandKind(verb), Payload: payload}
	if err := writeFrame(pkt); err != nil {
		return wire.ServerResponse{}, fmt.Errorf("client: write command: %w", err)
	}

	select {
	case resp := <-d.pending:
		return resp, nil
	case <-d.done:
		return wire.ServerResponse{}, fmt.Errorf("client: connection closed while awaiting command response")
	}
}
