package shell

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

// capture accumulates output line by line up to max bytes. Output past the
// cap is read and dropped so the writer never blocks.
type capture struct {
	buf       strings.Builder
	max       int
	full      bool
	truncated bool
}

func newCapture(limit int) *capture {
	return &capture{max: limit}
}

func (c *capture) consume(r io.Reader) {
	reader := bufio.NewReader(r)
	for {
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			return
		}
		c.write(line)
		if !isPrefix {
			c.write([]byte{'\n'})
		}
	}
}

func (c *capture) write(p []byte) {
	if c.max <= 0 {
		c.buf.Write(p)
		return
	}
	if c.full {
		if len(p) > 0 {
			c.truncated = true
		}
		return
	}

	remaining := c.max - c.buf.Len()
	if len(p) > remaining {
		cut := remaining
		for cut > 0 && !utf8.RuneStart(p[cut]) {
			cut--
		}
		p = p[:cut]
		c.full = true
		c.truncated = true
	}
	c.buf.Write(p)
}

func (c *capture) String() string {
	return c.buf.String()
}

func (c *capture) Len() int {
	return c.buf.Len()
}
