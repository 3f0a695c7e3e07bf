package chunked

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// maxLineLength bounds chunk size lines and trailer lines.
const maxLineLength = 4096

// NewChunkedReader returns a reader yielding the payload of a chunked body.
// It stops right after the trailer section, leaving r at the next message.
func NewChunkedReader(r io.Reader) io.Reader {
	var br *bufio.Reader
	if v, ok := r.(*bufio.Reader); ok {
		br = v
	} else {
		br = bufio.NewReader(r)
	}
	return &chunkedReader{Reader: br}
}

type chunkedReader struct {
	*bufio.Reader
	currentChunk                   io.Reader
	currentCount, currentChunkSize int64

	err error // sticky, io.EOF once the last chunk was seen
}

func (c *chunkedReader) readChunkHeader() (uint64, error) {
	line, err := readRawLine(c.Reader)
	if err != nil {
		return 0, err
	}
	return parseChunkSize(line)
}

func (c *chunkedReader) Read(p []byte) (n int, err error) {
	if c.err != nil {
		return 0, c.err
	}
	n, c.err = c.read(p)
	return n, c.err
}

func (c *chunkedReader) read(p []byte) (n int, err error) {
	if c.currentChunk == nil {
		l, err := c.readChunkHeader()
		if err != nil {
			return 0, err
		}
		if l == 0 {
			if err := skipTrailer(c.Reader); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		c.currentChunk = io.LimitReader(c.Reader, int64(l))
		c.currentChunkSize = int64(l)
		c.currentCount = 0
	}
	n, err = c.currentChunk.Read(p)
	c.currentCount += int64(n)
	if err == io.EOF || c.currentCount == c.currentChunkSize {
		if c.currentCount != c.currentChunkSize {
			return n, io.ErrUnexpectedEOF
		}
		if err := readCRLF(c.Reader); err != nil {
			return n, err
		}
		c.currentChunk = nil
		return n, nil
	}
	return n, err
}

// readRawLine returns a line including its terminator.
func readRawLine(br *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		frag, err := br.ReadSlice('\n')
		line = append(line, frag...)
		if len(line) > maxLineLength {
			return nil, &model.ParseError{What: "chunk line", Err: errors.New("line too long")}
		}
		if err == nil {
			return line, nil
		}
		if err != bufio.ErrBufferFull {
			return nil, noEOF(err)
		}
	}
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte{'\n'})
	return bytes.TrimSuffix(line, []byte{'\r'})
}

// parseChunkSize parses "1a;ext=v\r\n" style size lines.
func parseChunkSize(raw []byte) (l uint64, err error) {
	line := trimEOL(raw)
	if i := bytes.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = bytes.Trim(line, " \t")
	if len(line) == 0 {
		return 0, &model.ParseError{What: "chunk size", Line: string(trimEOL(raw))}
	}
	if len(line) >= 16 {
		return 0, &model.ParseError{What: "chunk size", Line: string(line), Err: errors.New("http chunk length too large")}
	}
	for _, b := range line {
		switch {
		case '0' <= b && b <= '9':
			b = b - '0'
		case 'a' <= b && b <= 'f':
			b = b - 'a' + 10
		case 'A' <= b && b <= 'F':
			b = b - 'A' + 10
		default:
			return 0, &model.ParseError{What: "chunk size", Line: string(line), Err: errors.New("invalid byte in chunk length")}
		}
		l <<= 4
		l |= uint64(b)
	}
	return l, nil
}

func readCRLF(br *bufio.Reader) error {
	dr, err := br.ReadByte()
	if err != nil {
		return noEOF(err)
	}
	if dr == '\n' {
		return nil // tolerate bare LF
	}
	dn, err := br.ReadByte()
	if err != nil {
		return noEOF(err)
	}
	if dr != '\r' || dn != '\n' {
		return &model.ParseError{What: "chunked encoding", Err: errors.New("missing CRLF after chunk data")}
	}
	return nil
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// skipTrailer consumes trailer fields up to and including the blank line.
func skipTrailer(br *bufio.Reader) error {
	for total := 0; ; {
		line, err := readRawLine(br)
		if err != nil {
			return err
		}
		if len(trimEOL(line)) == 0 {
			return nil
		}
		if total += len(line); total > maxLineLength*4 {
			return &model.ParseError{What: "chunked trailer", Err: errors.New("trailer too large")}
		}
	}
}
