// Package kasa implements the TP-Link Kasa smart plug protocol over
// TCP port 9999. Messages are JSON, obfuscated with an XOR autokey
// cipher and framed with a 4-byte big-endian length prefix.
package kasa

import (
	"encoding/binary"
	"fmt"
	"io"
)

// initialKey is the fixed seed of the XOR autokey cipher.
const initialKey = 0xAB

// maxFrame caps the accepted response size. Sysinfo replies from power
// strips run a few KB; anything near this limit is a broken peer.
const maxFrame = 1 << 20

// encrypt obfuscates plaintext in place-compatible fashion: each output
// byte is the previous ciphertext byte XOR the plaintext byte.
func encrypt(plain []byte) []byte {
	out := make([]byte, len(plain))
	key := byte(initialKey)
	for i, b := range plain {
		key ^= b
		out[i] = key
	}
	return out
}

// decrypt reverses encrypt.
func decrypt(cipher []byte) []byte {
	out := make([]byte, len(cipher))
	key := byte(initialKey)
	for i, b := range cipher {
		out[i] = key ^ b
		key = b
	}
	return out
}

// writeFrame sends one length-prefixed, encrypted message.
func writeFrame(w io.Writer, payload []byte) error {
	enc := encrypt(payload)
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(enc)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(enc)
	return err
}

// readFrame reads one length-prefixed message and decrypts it.
func readFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n == 0 || n > maxFrame {
		return nil, fmt.Errorf("frame length %d out of range", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return decrypt(buf), nil
}
