package transport

import (
	"bufio"
	"errors"
	"io"
	"net/textproto"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// maxHeadBytes bounds the status line plus header block of one response.
const maxHeadBytes = 64 << 10

var errHeadTooLarge = errors.New("response head exceeds 64KiB")

// ReadHead parses a response head off br and leaves br positioned at the
// first body byte. Interim 1xx heads are skipped, except 101 Switching
// Protocols which ends the exchange.
func ReadHead(br *bufio.Reader) (*Head, error) {
	for {
		h, err := readHead(br)
		if err != nil {
			return nil, err
		}
		if c := h.Status.Code; c < 100 || c > 199 || c == 101 {
			return h, nil
		}
	}
}

func readHead(br *bufio.Reader) (*Head, error) {
	budget := maxHeadBytes
	line, err := readLine(br, &budget)
	if err != nil {
		return nil, headError("status line", err)
	}
	h := &Head{}
	if err := parseStatusLine(line, h); err != nil {
		return nil, err
	}
	for {
		line, err := readLine(br, &budget)
		if err != nil {
			return nil, headError("header block", err)
		}
		if line == "" {
			return h, nil
		}
		if line[0] == ' ' || line[0] == '\t' {
			// obsolete line folding, RFC 7230 section 3.2.4
			if len(h.Header) == 0 {
				return nil, &model.ParseError{What: "header line", Line: line}
			}
			last := &h.Header[len(h.Header)-1]
			last.Value += " " + textproto.TrimString(line)
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !httpguts.ValidHeaderFieldName(name) {
			return nil, &model.ParseError{What: "header line", Line: line}
		}
		h.Header = append(h.Header, model.Field{Name: name, Value: textproto.TrimString(value)})
	}
}

// parseStatusLine parses e.g. "HTTP/1.1 404 Not Found"
func parseStatusLine(line string, h *Head) error {
	proto, status, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return &model.ParseError{What: "status line", Line: line}
	}
	h.Proto = proto
	status = strings.TrimLeft(status, " ")
	code, reason, _ := strings.Cut(status, " ")
	if len(code) != 3 {
		return &model.ParseError{What: "status code", Line: line}
	}
	var err error
	h.Status.Code, err = strconv.Atoi(code)
	if err != nil || h.Status.Code < 100 {
		return &model.ParseError{What: "status code", Line: line}
	}
	h.Status.Reason = reason
	return nil
}

// readLine returns one line without its terminator, charging its length
// to budget.
func readLine(br *bufio.Reader, budget *int) (string, error) {
	var line []byte
	for {
		frag, err := br.ReadSlice('\n')
		*budget -= len(frag)
		if *budget < 0 {
			return "", errHeadTooLarge
		}
		if err == nil {
			line = append(line, frag...)
			break
		}
		if err != bufio.ErrBufferFull {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}
		line = append(line, frag...)
	}
	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return string(line), nil
}

func headError(what string, err error) error {
	if err == io.ErrUnexpectedEOF || err == errHeadTooLarge {
		return &model.ParseError{What: what, Err: err}
	}
	return &model.TransportError{Op: "read head", Err: err}
}
