package peer

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testHeaderSize      = 10
	testBufferSize      = 64
	testMaxMessageSize  = 1024
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	payload := []byte(`{"path":"get_chain","data":{}}`)

	done := make(chan error, 1)
	go func() {
		done <- WriteFrame(server, payload, testHeaderSize)
	}()

	got, err := ReadFrame(client, testHeaderSize, testBufferSize, testMaxMessageSize)
	require.NoError(t, err)
	require.NoError(t, <-done)
	assert.Equal(t, payload, got)
}

func TestReadFrameRejectsOversizedDeclaredLength(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	big := make([]byte, testMaxMessageSize+1)
	go func() {
		WriteFrame(server, big, testHeaderSize)
	}()

	_, err := ReadFrame(client, testHeaderSize, testBufferSize, testMaxMessageSize)
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestWriteFrameRejectsPayloadTooWideForHeader(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	payload := make([]byte, 20)
	err := WriteFrame(server, payload, 1)
	assert.Error(t, err)
}

func TestReadFrameReportsSocketClosedOnEOF(t *testing.T) {
	server, client := net.Pipe()
	client.Close()

	_, err := ReadFrame(server, testHeaderSize, testBufferSize, testMaxMessageSize)
	assert.ErrorIs(t, err, ErrSocketClosed)
}

func TestReadFrameClassifiesTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	server.SetReadDeadline(time.Now().Add(10 * time.Millisecond))
	_, err := ReadFrame(server, testHeaderSize, testBufferSize, testMaxMessageSize)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestEncodeDecodeRequestResponse(t *testing.T) {
	payload, err := EncodeRequest("add_transaction", map[string]any{"receiver": "abc", "amount": 10, "fee": 1})
	require.NoError(t, err)

	req, err := DecodeRequest(payload)
	require.NoError(t, err)
	assert.Equal(t, "add_transaction", req.Path)

	resp := NewResponse(true, "ok").With("transaction", "wire-form")
	respBytes, err := EncodeResponse(resp)
	require.NoError(t, err)

	decoded, err := DecodeResponse(respBytes)
	require.NoError(t, err)
	assert.True(t, decoded.Success())
	assert.Equal(t, "ok", decoded.Message())
	assert.Equal(t, "wire-form", decoded["transaction"])
}
