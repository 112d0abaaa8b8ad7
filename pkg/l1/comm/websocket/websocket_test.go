package websocket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenDial(t *testing.T) {
	ln, err := Listen("127.0.0.1:0", "")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan error, 1)
	var server interface {
		ReadPacket() ([]byte, error)
		WritePacket([]byte) error
	}
	go func() {
		rw, err := ln.Accept()
		server = rw
		accepted <- err
	}()

	client, err := Dial("ws://"+ln.Addr().String()+DefaultPath, "http://localhost/")
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, <-accepted)

	require.NoError(t, client.WritePacket([]byte{4}))
	pkt, err := server.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{4}, pkt)

	require.NoError(t, server.WritePacket([]byte{21, 'o', 'k'}))
	pkt, err = client.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{21, 'o', 'k'}, pkt)
}
