package link

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bldc.go/pkg/l0/comm"
	"github.com/robotalks/bldc.go/pkg/l0/serial"
)

func TestParseTarget(t *testing.T) {
	testCases := []struct {
		in     string
		expect Target
	}{
		{"/dev/ttyUSB0", Target{"serial", "/dev/ttyUSB0"}},
		{"serial:/dev/ttyACM0", Target{"serial", "/dev/ttyACM0"}},
		{"tcp:localhost:7000", Target{"tcp", "localhost:7000"}},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			target, err := ParseTarget(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.expect, target)
			require.Equal(t, tc.expect.Scheme+":"+tc.expect.Address, target.String())
		})
	}
	_, err := ParseTarget("udp:localhost:7000")
	require.Error(t, err)
	_, err = ParseTarget("tcp:")
	require.Error(t, err)
}

func waitReady(t *testing.T, c *Conn) {
	for {
		select {
		case state := <-c.StateChan():
			if state == comm.SyncStateReady {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatal("link not ready")
		}
	}
}

func TestTCPLink(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	accepted := make(chan *Conn, 1)
	go func() {
		conn, err := ln.AcceptConn()
		if err == nil {
			accepted <- conn
		}
	}()

	client, err := Open("tcp:"+ln.Addr().String(), serial.Options{})
	require.NoError(t, err)
	defer client.Close()
	go client.Run(ctx)

	server := <-accepted
	defer server.Close()
	go server.Run(ctx)

	waitReady(t, client)
	waitReady(t, server)

	require.NoError(t, client.WritePacket([]byte{0x04}))
	pkt, err := server.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{0x04}, pkt)

	require.NoError(t, server.WritePacket([]byte{0x15, 'o', 'k'}))
	pkt, err = client.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{0x15, 'o', 'k'}, pkt)
}
