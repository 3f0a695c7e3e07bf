package chunked

import (
	"bufio"
	"io"
)

type rawState int

const (
	rawSize rawState = iota
	rawData
	rawDataEnd
	rawTrailer
	rawDone
)

// NewRawReader returns a reader yielding a chunked body exactly as it was
// sent: size lines, chunk data, the last chunk and the trailer section. It
// validates the framing while copying and stops at the end of the message.
func NewRawReader(br *bufio.Reader) io.Reader {
	return &rawReader{br: br}
}

type rawReader struct {
	br      *bufio.Reader
	state   rawState
	pending []byte // framing bytes not handed out yet
	remain  int64  // data bytes left in the current chunk
	err     error
}

func (c *rawReader) Read(p []byte) (n int, err error) {
	for c.err == nil && len(c.pending) == 0 && c.state != rawData {
		c.err = c.advance()
	}
	if len(c.pending) > 0 {
		n = copy(p, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}
	if c.err != nil {
		return 0, c.err
	}

	if int64(len(p)) > c.remain {
		p = p[:c.remain]
	}
	n, err = c.br.Read(p)
	c.remain -= int64(n)
	if c.remain == 0 {
		c.state = rawDataEnd
	}
	if err == io.EOF && c.remain > 0 {
		err = io.ErrUnexpectedEOF
	}
	if err != nil && err != io.EOF {
		c.err = err
	}
	return n, c.err
}

// advance reads the next piece of framing into pending.
func (c *rawReader) advance() error {
	switch c.state {
	case rawSize:
		line, err := readRawLine(c.br)
		if err != nil {
			return err
		}
		size, err := parseChunkSize(line)
		if err != nil {
			return err
		}
		c.pending = line
		if size == 0 {
			c.state = rawTrailer
		} else {
			c.state, c.remain = rawData, int64(size)
		}
	case rawDataEnd:
		peek, err := c.br.Peek(1)
		if err != nil {
			return noEOF(err)
		}
		crlf := []byte{'\n'}
		if peek[0] == '\r' {
			crlf = []byte{'\r', '\n'}
		}
		if err := readCRLF(c.br); err != nil {
			return err
		}
		c.pending, c.state = crlf, rawSize
	case rawTrailer:
		line, err := readRawLine(c.br)
		if err != nil {
			return err
		}
		c.pending = line
		if len(trimEOL(line)) == 0 {
			c.state = rawDone
		}
	case rawDone:
		return io.EOF
	}
	return nil
}
