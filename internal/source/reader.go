package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dgnsrekt/wordrunner/rsvp"
)

const readChunk = 4096

// ReaderSource follows a stream such as a stdin pipe, appending each chunk
// as it arrives.
type ReaderSource struct {
	*Message
	r io.Reader
}

// NewReaderSource creates a source reading from r.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{
		Message: NewMessage(name, false, rsvp.Meta{Title: name}),
		r:       r,
	}
}

// Run reads until EOF, an error or ctx is done. The message is finished on
// EOF. Cancelling ctx does not interrupt a blocked read.
func (s *ReaderSource) Run(ctx context.Context) error {
	buf := make([]byte, readChunk)
	var carry []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.r.Read(buf)
		if n > 0 {
			data := append(carry, buf[:n]...)
			cut := completeUTF8(data)
			s.Append(string(data[:cut]))
			carry = append([]byte(nil), data[cut:]...)
		}
		if errors.Is(err, io.EOF) {
			s.Append(string(carry))
			s.Finish()
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", s.ID(), err)
		}
	}
}

// completeUTF8 returns the length of the longest prefix of b that does not
// end inside a multi-byte rune.
func completeUTF8(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}
