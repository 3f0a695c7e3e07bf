//go:build darwin || linux

package netpool

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// alive polls the socket without blocking. An idle HTTP/1.1 connection
// must not be readable, readability means the peer closed or misbehaved.
func alive(c net.Conn) bool {
	if t, ok := c.(interface{ NetConn() net.Conn }); ok {
		c = t.NetConn() // *tls.Conn
	}
	sc, ok := c.(syscall.Conn)
	if !ok {
		return true
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return false
	}
	readable := false
	err = rc.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, perr := unix.Poll(fds, 0)
		if perr == nil && n > 0 {
			readable = fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0
		}
	})
	return err == nil && !readable
}
