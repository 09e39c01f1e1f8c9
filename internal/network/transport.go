package network

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Connected UDP socket usable as a gelf.Transport
type UDPTransport struct {
	conn *net.UDPConn
}

// Dials address ("host:port"). A positive sendBuffer sets SO_SNDBUF on the socket.
func DialUDP(ctx context.Context, address string, sendBuffer int) (transport *UDPTransport, err error) {
	dialer := net.Dialer{
		Control: func(network, address string, c syscall.RawConn) error {
			if sendBuffer <= 0 {
				return nil
			}
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, sendBuffer)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	conn, err := dialer.DialContext(ctx, "udp", address)
	if err != nil {
		err = fmt.Errorf("failed to open udp socket to %s: %w", address, err)
		return
	}

	transport = &UDPTransport{conn: conn.(*net.UDPConn)}
	return
}

// Writes one datagram. Errors are returned as produced by the socket.
func (transport *UDPTransport) Send(datagram []byte) (err error) {
	_, err = transport.conn.Write(datagram)
	return
}

func (transport *UDPTransport) RemoteAddr() net.Addr {
	return transport.conn.RemoteAddr()
}

// Current kernel send buffer size
func (transport *UDPTransport) SendBuffer() (size int, err error) {
	raw, err := transport.conn.SyscallConn()
	if err != nil {
		return
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		size, sockErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF)
	})
	if err == nil {
		err = sockErr
	}
	return
}

func (transport *UDPTransport) Close() (err error) {
	if transport == nil || transport.conn == nil {
		return
	}
	err = transport.conn.Close()
	return
}
