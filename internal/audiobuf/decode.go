package audiobuf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnknownFormat is returned when the input matches none of the
// supported container signatures.
var ErrUnknownFormat = fmt.Errorf("audiobuf: unrecognized audio format")

const collectChunk = 4096

// Decode sniffs the format of raw audio bytes and decodes them fully
// into a Buffer. WAV, FLAC, Ogg Vorbis and MP3 are supported.
func Decode(data []byte) (*Buffer, error) {
	body, err := skipID3v2(data)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch {
	case hasMagic(body, "RIFF"):
		streamer, format, err = wav.Decode(newByteReader(body))
	case hasMagic(body, "fLaC"):
		streamer, format, err = flac.Decode(newByteReader(body))
	case hasMagic(body, "OggS"):
		streamer, format, err = vorbis.Decode(newByteReader(body))
	case looksLikeMP3(data):
		// MP3 keeps its ID3v2 tag: the decoder skips it itself.
		streamer, format, err = mp3.Decode(newByteReader(data))
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	frames, err := collect(streamer)
	if err != nil {
		return nil, err
	}
	return NewBuffer(format.SampleRate, format.NumChannels, frames), nil
}

// collect drains a streamer into memory.
func collect(s beep.Streamer) ([][2]float64, error) {
	var frames [][2]float64
	chunk := make([][2]float64, collectChunk)
	for {
		n, ok := s.Stream(chunk)
		frames = append(frames, chunk[:n]...)
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

func hasMagic(data []byte, magic string) bool {
	return len(data) >= len(magic) && string(data[:len(magic)]) == magic
}

// looksLikeMP3 accepts an ID3v2 header or a bare MPEG frame sync.
func looksLikeMP3(data []byte) bool {
	if hasMagic(data, "ID3") {
		return true
	}
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// skipID3v2 strips an ID3v2 tag if present. Some taggers prepend one to
// FLAC files, which the FLAC decoder doesn't handle.
func skipID3v2(data []byte) ([]byte, error) {
	if !hasMagic(data, "ID3") || len(data) < 10 {
		return data, nil
	}
	// ID3v2 size is a syncsafe integer in bytes 6-9 (7 bits per byte).
	size := int(data[6])<<21 | int(data[7])<<14 | int(data[8])<<7 | int(data[9])
	if 10+size > len(data) {
		return nil, fmt.Errorf("audiobuf: truncated ID3v2 tag")
	}
	return data[10+size:], nil
}

// byteReader adapts a byte slice to the read/seek/close combinations
// the beep decoders ask for.
type byteReader struct {
	*bytes.Reader
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{Reader: bytes.NewReader(data)}
}

func (*byteReader) Close() error { return nil }

var _ io.ReadSeekCloser = (*byteReader)(nil)
