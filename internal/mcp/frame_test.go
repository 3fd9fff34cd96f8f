package mcp

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameReaderReadsExactContentLength(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":1,"method":"ping"}`
	msg := "Content-Length: " + itoa(len(body)) + "\r\n\r\n" + body
	// Append a sentinel after the frame to prove we don't over-read.
	msg += "SENTINEL"

	fr := NewFrameReader(strings.NewReader(msg))
	got, err := fr.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, body, string(got))

	rest := make([]byte, 8)
	n, _ := fr.br.Read(rest)
	assert.Equal(t, "SENTINEL", string(rest[:n]))
}

func TestFrameReaderBareJSONLineFallback(t *testing.T) {
	line := `{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n"
	fr := NewFrameReader(strings.NewReader(line))
	got, err := fr.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":2,"method":"ping"}`, string(got))
}

func TestFrameReaderEOF(t *testing.T) {
	fr := NewFrameReader(strings.NewReader(""))
	_, err := fr.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameWriterAlwaysFrames(t *testing.T) {
	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)
	require.NoError(t, fw.WriteMessage([]byte(`{"a":1}`)))
	assert.Equal(t, "Content-Length: 7\r\n\r\n{\"a\":1}", buf.String())
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
