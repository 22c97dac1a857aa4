// Package wire implements the framed binary protocol shared by the chat
// server and client: a u32 big-endian length prefix followed by a
// cbor-encoded body, plus the typed bodies that travel in that frame.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// MaxFrameLen bounds the length prefix so a corrupt or hostile peer can't
// make us allocate an unbounded buffer for one frame.
const MaxFrameLen = 16 << 20 // 16 MiB

var ErrFrameTooLarge = errors.New("wire: frame exceeds MaxFrameLen")

var encMode = func() cbor.EncMode {
	m, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return m
}()

// WriteFrame encodes v and writes it as one length-prefixed frame.
func WriteFrame(w io.Writer, v interface{}) error {
	body, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("wire: encode frame: %w", err)
	}
	if len(body) > MaxFrameLen {
		return ErrFrameTooLarge
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("wire: write length prefix: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("wire: write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame and decodes its body into v.
func ReadFrame(r io.Reader, v interface{}) error {
	body, err := ReadFrameBytes(r)
	if err != nil {
		return err
	}
	if err := cbor.Unmarshal(body, v); err != nil {
		return fmt.Errorf("wire: decode frame: %w", err)
	}
	return nil
}

// ReadFrameBytes reads one length-prefixed frame and returns its raw body,
// for callers (the client's Dispatcher) that need to inspect the body's
// shape before choosing which type to decode it into.
func ReadFrameBytes(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > MaxFrameLen {
		return nil, ErrFrameTooLarge
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("wire: read frame body: %w", err)
	}
	return body, nil
}

// Encode cbor-encodes v on its own, for payloads nested inside a Packet.
func Encode(v interface{}) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode payload: %w", err)
	}
	return b, nil
}

// Decode cbor-decodes a nested payload into v.
func Decode(b []byte, v interface{}) error {
	if err := cbor.Unmarshal(b, v); err != nil {
		return fmt.Errorf("wire: decode payload: %w", err)
	}
	return nil
}
