package peer

import (
	"net"
	"testing"

	"github.com/akoin-project/akoin/chaincfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURLValid(t *testing.T) {
	assert.True(t, IsURLValid("http://127.0.0.1:5588"))
	assert.False(t, IsURLValid("127.0.0.1:5588"))
	assert.False(t, IsURLValid("not a url"))
	assert.False(t, IsURLValid(""))
}

func TestRegisterNewNodeIsIdempotent(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accept := make(chan net.Conn, 2)
	go func() {
		for i := 0; i < 2; i++ {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			accept <- c
		}
	}()

	params := chaincfg.TestParams()
	r := NewRegistry(params)
	url := "http://" + ln.Addr().String()

	added, err := r.RegisterNewNode(url)
	require.NoError(t, err)
	assert.True(t, added)
	conn1 := <-accept
	defer conn1.Close()

	added, err = r.RegisterNewNode(url)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, []string{url}, r.URLs())
}

func TestRegisterNewNodeRejectsInvalidURL(t *testing.T) {
	r := NewRegistry(chaincfg.TestParams())
	_, err := r.RegisterNewNode("not-a-url")
	assert.ErrorIs(t, err, ErrBadPeer)
}

func TestBroadcastDoesNotPanicOnEmptyOrClosedPeers(t *testing.T) {
	r := NewRegistry(chaincfg.TestParams())
	assert.NotPanics(t, func() {
		r.Broadcast("register_new_transactions", []string{})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	connCh := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			connCh <- c
		}
	}()

	url := "http://" + ln.Addr().String()
	_, err = r.RegisterNewNode(url)
	require.NoError(t, err)
	serverConn := <-connCh
	serverConn.Close()

	assert.NotPanics(t, func() {
		r.Broadcast("register_new_transactions", []string{"a", "b"})
	})
}
