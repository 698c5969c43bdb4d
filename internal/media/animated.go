// Package media answers one question about raster image bytes: does this
// file animate? It parses container structure only, never decodes frames,
// and treats every malformed or truncated input as "not animated".
package media

import (
	"bytes"
	"encoding/binary"
	"io"
)

// maxScanBytes bounds how much of a file is inspected, regardless of its
// declared size. Animation markers live near the front of both formats.
const maxScanBytes = 1 << 20

// IsAnimated sniffs the magic bytes and dispatches to the matching format
// parser. Unknown formats are not animated.
func IsAnimated(data []byte) bool {
	switch {
	case bytes.HasPrefix(data, []byte("GIF8")):
		return IsAnimatedGIF(bytes.NewReader(data))
	case bytes.HasPrefix(data, []byte("RIFF")):
		return IsAnimatedWebP(bytes.NewReader(data))
	}
	return false
}

// IsAnimatedGIF walks the GIF block stream and counts image frames that
// are preceded by a Graphic Control Extension. More than one such frame
// means the file animates. Any malformed block ends parsing with false.
func IsAnimatedGIF(r io.Reader) bool {
	br := newBoundedReader(r)

	// Header: "GIF87a" or "GIF89a".
	header := make([]byte, 6)
	if _, err := io.ReadFull(br, header); err != nil {
		return false
	}
	if string(header[:4]) != "GIF8" || (header[4] != '7' && header[4] != '9') || header[5] != 'a' {
		return false
	}

	// Logical screen descriptor: 4 bytes dimensions, packed, bg, ratio.
	lsd := make([]byte, 7)
	if _, err := io.ReadFull(br, lsd); err != nil {
		return false
	}
	// Global color table, if flagged: 3 * 2^(N+1) bytes.
	if lsd[4]&0x80 != 0 {
		size := 3 * (1 << ((lsd[4] & 0x07) + 1))
		if !skip(br, int64(size)) {
			return false
		}
	}

	frames := 0
	gcePending := false
	for {
		b, ok := readByte(br)
		if !ok {
			return false
		}
		switch b {
		case 0x3B: // trailer
			return false
		case 0x21: // extension
			label, ok := readByte(br)
			if !ok {
				return false
			}
			if label == 0xF9 {
				gcePending = true
			}
			if !skipSubBlocks(br) {
				return false
			}
		case 0x2C: // image descriptor
			if gcePending {
				frames++
				if frames > 1 {
					return true
				}
				gcePending = false
			}
			desc := make([]byte, 9)
			if _, err := io.ReadFull(br, desc); err != nil {
				return false
			}
			if desc[8]&0x80 != 0 { // local color table
				size := 3 * (1 << ((desc[8] & 0x07) + 1))
				if !skip(br, int64(size)) {
					return false
				}
			}
			// LZW minimum code size byte, then image data sub-blocks.
			if _, ok := readByte(br); !ok {
				return false
			}
			if !skipSubBlocks(br) {
				return false
			}
		default:
			// Unknown block type: the stream is corrupt.
			return false
		}
	}
}

// skipSubBlocks consumes a GIF sub-block chain up to and including its
// zero-length terminator.
func skipSubBlocks(r io.Reader) bool {
	for {
		n, ok := readByte(r)
		if !ok {
			return false
		}
		if n == 0 {
			return true
		}
		if !skip(r, int64(n)) {
			return false
		}
	}
}

// IsAnimatedWebP verifies the RIFF/WEBP container and scans top-level
// chunks for an ANIM chunk. Unknown chunk types are skipped by their
// declared length, padded to even offsets per RIFF.
func IsAnimatedWebP(r io.Reader) bool {
	br := newBoundedReader(r)

	header := make([]byte, 12)
	if _, err := io.ReadFull(br, header); err != nil {
		return false
	}
	if string(header[:4]) != "RIFF" || string(header[8:12]) != "WEBP" {
		return false
	}

	chunk := make([]byte, 8)
	for {
		if _, err := io.ReadFull(br, chunk); err != nil {
			return false
		}
		fourCC := string(chunk[:4])
		size := binary.LittleEndian.Uint32(chunk[4:])
		if fourCC == "ANIM" {
			return true
		}
		if size%2 == 1 {
			size++ // RIFF chunks are padded to even sizes
		}
		if !skip(br, int64(size)) {
			return false
		}
	}
}

func newBoundedReader(r io.Reader) io.Reader {
	return io.LimitReader(r, maxScanBytes)
}

func readByte(r io.Reader) (byte, bool) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, false
	}
	return buf[0], true
}

func skip(r io.Reader, n int64) bool {
	copied, err := io.CopyN(io.Discard, r, n)
	return err == nil && copied == n
}
