package media

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

// gifFrame appends one Graphic Control Extension plus image descriptor.
func gifFrame(buf *bytes.Buffer) {
	// GCE: introducer, label, one 4-byte sub-block, terminator.
	buf.Write([]byte{0x21, 0xF9, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00})
	// Image descriptor: separator, left/top/width/height, packed.
	buf.Write([]byte{0x2C, 0, 0, 0, 0, 1, 0, 1, 0, 0x00})
	// LZW min code size, one 1-byte data sub-block, terminator.
	buf.Write([]byte{0x02, 0x01, 0x00, 0x00})
}

func gifBytes(frames int) []byte {
	var buf bytes.Buffer
	buf.WriteString("GIF89a")
	// Logical screen descriptor, no global color table.
	buf.Write([]byte{1, 0, 1, 0, 0x00, 0, 0})
	for i := 0; i < frames; i++ {
		gifFrame(&buf)
	}
	buf.WriteByte(0x3B)
	return buf.Bytes()
}

func TestIsAnimatedGIF_TwoFrames(t *testing.T) {
	assert.True(t, IsAnimatedGIF(bytes.NewReader(gifBytes(2))))
}

func TestIsAnimatedGIF_SingleFrame(t *testing.T) {
	assert.False(t, IsAnimatedGIF(bytes.NewReader(gifBytes(1))))
}

func TestIsAnimatedGIF_Truncated(t *testing.T) {
	// Cuts land before the second frame is reached, so the answer is false.
	data := gifBytes(2)
	for _, n := range []int{0, 3, 6, 13, 20} {
		assert.False(t, IsAnimatedGIF(bytes.NewReader(data[:n])), "cut at %d", n)
	}
}

func TestIsAnimatedGIF_BadMagic(t *testing.T) {
	assert.False(t, IsAnimatedGIF(bytes.NewReader([]byte("JFIF....not a gif"))))
}

func TestIsAnimatedGIF_CorruptBlockType(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("GIF89a")
	buf.Write([]byte{1, 0, 1, 0, 0x00, 0, 0})
	buf.WriteByte(0x7F) // not an extension, descriptor, or trailer
	assert.False(t, IsAnimatedGIF(bytes.NewReader(buf.Bytes())))
}

func webpBytes(chunks ...[2]string) []byte {
	var body bytes.Buffer
	body.WriteString("WEBP")
	for _, c := range chunks {
		body.WriteString(c[0])
		size := make([]byte, 4)
		binary.LittleEndian.PutUint32(size, uint32(len(c[1])))
		body.Write(size)
		body.WriteString(c[1])
		if len(c[1])%2 == 1 {
			body.WriteByte(0)
		}
	}
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(body.Len()))
	buf.Write(size)
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func TestIsAnimatedWebP_WithANIM(t *testing.T) {
	data := webpBytes([2]string{"VP8X", "0123456789"}, [2]string{"ANIM", "\x00\x00\x00\x00\x00\x00"})
	assert.True(t, IsAnimatedWebP(bytes.NewReader(data)))
}

func TestIsAnimatedWebP_WithoutANIM(t *testing.T) {
	data := webpBytes([2]string{"VP8X", "0123456789"}, [2]string{"VP8 ", "frame"})
	assert.False(t, IsAnimatedWebP(bytes.NewReader(data)))
}

func TestIsAnimatedWebP_SkipsOddSizedChunks(t *testing.T) {
	data := webpBytes([2]string{"XYZW", "odd"}, [2]string{"ANIM", "\x00\x00"})
	assert.True(t, IsAnimatedWebP(bytes.NewReader(data)))
}

func TestIsAnimatedWebP_NotRIFF(t *testing.T) {
	assert.False(t, IsAnimatedWebP(bytes.NewReader([]byte("GIF89a.........."))))
}

func TestIsAnimated_Dispatch(t *testing.T) {
	assert.True(t, IsAnimated(gifBytes(2)))
	assert.False(t, IsAnimated(gifBytes(1)))
	assert.True(t, IsAnimated(webpBytes([2]string{"ANIM", "\x00\x00"})))
	assert.False(t, IsAnimated([]byte{0x89, 'P', 'N', 'G'}))
	assert.False(t, IsAnimated(nil))
}
