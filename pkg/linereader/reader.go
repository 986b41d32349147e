package linereader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// maxLineSize bounds a single line. Longer lines are reported to the caller
// with ErrLineTooLong and reading continues with the next line.
const maxLineSize = 1024 * 1024

// ErrLineTooLong marks a line that exceeded maxLineSize.
var ErrLineTooLong = errors.New("line too long")

// Reader reads a text source line by line.
type Reader struct {
	src  io.Reader
	file *os.File
	name string
}

// Open creates a new line reader for the given file path.
func Open(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	return &Reader{src: file, file: file, name: filePath}, nil
}

// New wraps an already open source. name is only used for diagnostics.
func New(src io.Reader, name string) *Reader {
	return &Reader{src: src, name: name}
}

// Name returns the path or label of the source.
func (r *Reader) Name() string {
	return r.name
}

// Close closes the underlying file, if the reader opened one.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadLines calls fn for every line of the source with its 1-based line number.
// Line terminators are stripped. A line longer than maxLineSize is passed with
// lineErr wrapping ErrLineTooLong and line holding only the bytes read before
// the limit. The returned error is an I/O error only.
func (r *Reader) ReadLines(fn func(lineNo int, line string, lineErr error)) error {
	br := bufio.NewReaderSize(r.src, 64*1024)

	var (
		buf     []byte
		lineNo  int
		pending bool
		tooLong bool
	)
	emit := func() {
		lineNo++
		if tooLong {
			fn(lineNo, string(buf), fmt.Errorf("%w: exceeds %d bytes", ErrLineTooLong, maxLineSize))
		} else {
			fn(lineNo, string(buf), nil)
		}
		buf = buf[:0]
		pending, tooLong = false, false
	}

	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if err == io.EOF {
				if pending {
					emit()
				}
				return nil
			}
			return err
		}

		if !tooLong {
			if len(buf)+len(chunk) > maxLineSize {
				tooLong = true
			} else {
				buf = append(buf, chunk...)
			}
		}
		if isPrefix {
			pending = true
			continue
		}
		emit()
	}
}
