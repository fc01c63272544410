package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

// ErrUnreadableAudio is returned when a file is missing, is not a WAV
// container, or carries a format we cannot derive a duration from.
var ErrUnreadableAudio = errors.New("unreadable audio")

const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE
)

// Format describes the PCM layout of a WAV file
type Format struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	BlockAlign    uint16
}

// Asset is a decoded WAV file owned by a single pipeline run
type Asset struct {
	Path     string
	Format   Format
	Duration float64 // seconds, frames / sample rate

	dataOffset int64
	dataSize   int64
}

// Probe reads the header of path and returns the asset with its duration.
func Probe(path string) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnreadableAudio, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", ErrUnreadableAudio, path, err)
	}
	streamed, err := checkChunks(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableAudio, path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableAudio, path, err)
	}

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableAudio, path, err)
	}
	if d.NumChans == 0 || d.SampleRate == 0 || d.BitDepth == 0 {
		return nil, fmt.Errorf("%w: %s: missing fmt chunk or zero sample rate", ErrUnreadableAudio, path)
	}
	if err := d.FwdToPCM(); err != nil || d.PCMChunk == nil {
		return nil, fmt.Errorf("%w: %s: missing data chunk", ErrUnreadableAudio, path)
	}

	// the decoder leaves the file positioned at the first PCM byte
	offset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableAudio, path, err)
	}
	size := int64(d.PCMSize)
	// ffmpeg writing to a pipe leaves the size unset, trust the file
	if remaining := info.Size() - offset; streamed || size > remaining {
		size = remaining
	}

	asset := &Asset{
		Path: path,
		Format: Format{
			AudioFormat:   d.WavAudioFormat,
			Channels:      d.NumChans,
			SampleRate:    d.SampleRate,
			BitsPerSample: d.BitDepth,
			BlockAlign:    d.NumChans * ((d.BitDepth + 7) / 8),
		},
		dataOffset: offset,
		dataSize:   size,
	}

	switch asset.Format.AudioFormat {
	case formatPCM, formatFloat:
	case formatExtensible:
		// ffmpeg uses extensible headers for integer PCM above 16 bits or 2 channels
		asset.Format.AudioFormat = formatPCM
	default:
		return nil, fmt.Errorf("%w: %s: unsupported format tag %#x", ErrUnreadableAudio, path, asset.Format.AudioFormat)
	}

	asset.Duration = float64(asset.Frames()) / float64(asset.Format.SampleRate)
	return asset, nil
}

var (
	waveID = [4]byte{'W', 'A', 'V', 'E'}
	dataID = [4]byte{'d', 'a', 't', 'a'}
)

// checkChunks rejects chunks whose declared size runs past the end of the
// file. The decoder allocates header chunks by their declared size. It
// reports whether the data chunk carries the unset size of a streamed write.
func checkChunks(r io.ReadSeeker, fileSize int64) (streamed bool, err error) {
	p := riff.New(r)
	if err := p.ParseHeaders(); err != nil {
		return false, err
	}
	if p.Format != waveID {
		return false, errors.New("not a RIFF/WAVE file")
	}

	pos := int64(12)
	for {
		id, raw, err := p.IDnSize()
		if err != nil {
			return streamed, nil
		}
		pos += 8
		size := int64(raw) + int64(raw%2)
		if remaining := fileSize - pos; size > remaining {
			if id != dataID {
				return false, fmt.Errorf("%s chunk claims %d bytes, %d left in file", string(id[:]), size, remaining)
			}
			streamed = raw == math.MaxUint32
			size = remaining
		}
		pos += size
		if _, err := r.Seek(pos, io.SeekStart); err != nil {
			return false, err
		}
	}
}

// Frames returns the number of complete sample frames in the data chunk.
func (a *Asset) Frames() int64 {
	if a.Format.BlockAlign == 0 {
		return 0
	}
	return a.dataSize / int64(a.Format.BlockAlign)
}

// ReadRange returns the frames covering [start, start+length) seconds as a
// standalone WAV file.
func (a *Asset) ReadRange(start, length float64) ([]byte, error) {
	if start < 0 || length < 0 {
		return nil, fmt.Errorf("invalid range %.3f+%.3f", start, length)
	}

	rate := float64(a.Format.SampleRate)
	frames := a.Frames()
	first := int64(math.Floor(start * rate))
	last := int64(math.Round((start + length) * rate))
	if first > frames {
		first = frames
	}
	if last > frames {
		last = frames
	}
	if last < first {
		last = first
	}

	f, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.Path, err)
	}
	defer f.Close()

	align := int64(a.Format.BlockAlign)
	pcm := make([]byte, (last-first)*align)
	if _, err := f.ReadAt(pcm, a.dataOffset+first*align); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %s: %w", a.Path, err)
	}

	return EncodeWAV(a.Format, pcm), nil
}

// Release removes the file backing the asset.
func (a *Asset) Release() error {
	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release %s: %w", a.Path, err)
	}
	return nil
}

// EncodeWAV wraps raw frames in a canonical 44-byte WAV header
func EncodeWAV(format Format, pcm []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	byteRate := format.SampleRate * uint32(format.BlockAlign)
	dataSize := len(pcm)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, format.AudioFormat)
	binary.Write(&buf, binary.LittleEndian, format.Channels)
	binary.Write(&buf, binary.LittleEndian, format.SampleRate)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, format.BlockAlign)
	binary.Write(&buf, binary.LittleEndian, format.BitsPerSample)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(pcm)

	return buf.Bytes()
}

// PCM16Mono returns the format used for speech recognition input.
func PCM16Mono(sampleRate int) Format {
	return Format{
		AudioFormat:   formatPCM,
		Channels:      1,
		SampleRate:    uint32(sampleRate),
		BitsPerSample: 16,
		BlockAlign:    2,
	}
}
