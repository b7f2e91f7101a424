// Built-in MJPEG AVI sink. Produces a valid AVI container without any
// external tooling: each frame is JPEG-encoded and appended as a 00dc
// chunk, and the RIFF headers are patched on Close once the frame count
// and chunk sizes are known. AVI plus MJPEG keeps the file playable
// everywhere without codec negotiation.
package video

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"os"
)

// Header positions patched on Close.
const (
	posFileSize    = 4
	posMaxBytes    = 36
	posTotalFrames = 48
	posSugBuf      = 60
	posStrhLength  = 140
	posStrhSugBuf  = 144
	posMoviSize    = 216
	moviFourCCPos  = 220 // index offsets are relative to this position
	moviDataStart  = 224
)

// AVIAssembler writes MJPEG AVI files in pure Go.
type AVIAssembler struct {
	Quality int // JPEG quality, 0 = 95
}

func (a *AVIAssembler) Open(ctx context.Context, path string, fps, width, height int) (Sink, error) {
	if fps < 1 {
		fps = 1
	}
	quality := a.Quality
	if quality <= 0 {
		quality = 95
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, &AssemblyError{Op: "open", Path: path, Err: err}
	}

	s := &aviSink{f: f, path: path, fps: uint32(fps), width: uint32(width), height: uint32(height), quality: quality}
	if err := s.writeHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, &AssemblyError{Op: "open", Path: path, Err: err}
	}
	return s, nil
}

type idxEntry struct {
	offset uint32 // from the movi fourcc
	size   uint32
}

type aviSink struct {
	f       *os.File
	path    string
	fps     uint32
	width   uint32
	height  uint32
	quality int

	index      []idxEntry
	chunkBytes uint32 // bytes written into movi after the fourcc
	maxJPEG    uint32
	closed     bool
}

// writeHeader lays out the RIFF/hdrl/movi scaffolding with placeholder
// sizes. Field order follows the AVI 1.0 spec: avih, then one vids
// stream with strh + BITMAPINFOHEADER strf.
func (s *aviSink) writeHeader() error {
	buf := new(bytes.Buffer)
	fourCC := func(cc string) { buf.WriteString(cc) }
	u32 := func(v uint32) { binary.Write(buf, binary.LittleEndian, v) }
	u16 := func(v uint16) { binary.Write(buf, binary.LittleEndian, v) }

	fourCC("RIFF")
	u32(0) // file size, patched
	fourCC("AVI ")

	fourCC("LIST")
	u32(4 + 64 + 124) // hdrl = avih chunk + strl list
	fourCC("hdrl")

	fourCC("avih")
	u32(56)
	u32(1000000 / s.fps) // microseconds per frame
	u32(0)               // max bytes/sec, patched
	u32(0)               // padding granularity
	u32(0x10)            // AVIF_HASINDEX
	u32(0)               // total frames, patched
	u32(0)               // initial frames
	u32(1)               // streams
	u32(0)               // suggested buffer size, patched
	u32(s.width)
	u32(s.height)
	u32(0)
	u32(0)
	u32(0)
	u32(0)

	fourCC("LIST")
	u32(116)
	fourCC("strl")

	fourCC("strh")
	u32(56)
	fourCC("vids")
	fourCC("MJPG")
	u32(0) // flags
	u16(0) // priority
	u16(0) // language
	u32(0) // initial frames
	u32(1) // scale
	u32(s.fps)
	u32(0) // start
	u32(0) // length, patched
	u32(0) // suggested buffer size, patched
	u32(0) // quality
	u32(0) // sample size
	u16(0) // left
	u16(0) // top
	u16(uint16(s.width))
	u16(uint16(s.height))

	fourCC("strf")
	u32(40)
	u32(40) // biSize
	u32(s.width)
	u32(s.height)
	u16(1)  // biPlanes
	u16(24) // biBitCount
	fourCC("MJPG")
	u32(s.width * s.height * 3)
	u32(0)
	u32(0)
	u32(0)
	u32(0)

	fourCC("LIST")
	u32(0) // movi size, patched
	fourCC("movi")

	if buf.Len() != moviDataStart {
		return fmt.Errorf("avi header is %d bytes, want %d", buf.Len(), moviDataStart)
	}
	_, err := s.f.Write(buf.Bytes())
	return err
}

func (s *aviSink) WriteFrame(img *image.RGBA) error {
	var jb bytes.Buffer
	if err := jpeg.Encode(&jb, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return &AssemblyError{Op: "write", Path: s.path, Err: err}
	}
	data := jb.Bytes()
	size := uint32(len(data))
	if size > s.maxJPEG {
		s.maxJPEG = size
	}

	chunk := new(bytes.Buffer)
	chunk.WriteString("00dc")
	binary.Write(chunk, binary.LittleEndian, size)
	chunk.Write(data)
	if size%2 != 0 { // chunks are padded to even boundaries
		chunk.WriteByte(0)
	}

	s.index = append(s.index, idxEntry{offset: 4 + s.chunkBytes, size: size})
	if _, err := s.f.Write(chunk.Bytes()); err != nil {
		return &AssemblyError{Op: "write", Path: s.path, Err: err}
	}
	s.chunkBytes += uint32(chunk.Len())
	return nil
}

// Close writes the idx1 index and patches every placeholder size, then
// syncs the file.
func (s *aviSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	frames := uint32(len(s.index))

	idx := new(bytes.Buffer)
	idx.WriteString("idx1")
	binary.Write(idx, binary.LittleEndian, frames*16)
	for _, e := range s.index {
		idx.WriteString("00dc")
		binary.Write(idx, binary.LittleEndian, uint32(0x10)) // AVIIF_KEYFRAME
		binary.Write(idx, binary.LittleEndian, e.offset)
		binary.Write(idx, binary.LittleEndian, e.size)
	}
	if _, err := s.f.Write(idx.Bytes()); err != nil {
		s.f.Close()
		return &AssemblyError{Op: "close", Path: s.path, Err: err}
	}

	end, err := s.f.Seek(0, 2)
	if err != nil {
		s.f.Close()
		return &AssemblyError{Op: "close", Path: s.path, Err: err}
	}

	patches := map[int64]uint32{
		posFileSize:    uint32(end - 8),
		posMaxBytes:    s.maxJPEG * s.fps,
		posTotalFrames: frames,
		posSugBuf:      s.maxJPEG,
		posStrhLength:  frames,
		posStrhSugBuf:  s.maxJPEG,
		posMoviSize:    4 + s.chunkBytes,
	}
	var scratch [4]byte
	for pos, v := range patches {
		binary.LittleEndian.PutUint32(scratch[:], v)
		if _, err := s.f.WriteAt(scratch[:], pos); err != nil {
			s.f.Close()
			return &AssemblyError{Op: "close", Path: s.path, Err: err}
		}
	}

	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return &AssemblyError{Op: "close", Path: s.path, Err: err}
	}
	if err := s.f.Close(); err != nil {
		return &AssemblyError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}
