package pipeline

import (
	"fmt"
	"net"
	"time"
)

// UDPSender owns the datagram socket for the loop's entire lifetime. It is
// bound once to the configured local port; sends are fire-and-forget with
// no timeout, which is all a datagram socket needs.
//
// The target address string is resolved lazily and cached for the
// configured TTL. A changed address string bypasses the cache, so an
// operator edit to graylog_addr takes effect on the very next record.
//
// The sender belongs to the single loop goroutine and is not safe for
// concurrent use.
type UDPSender struct {
	conn *net.UDPConn

	cachedTarget string
	cachedAddr   *net.UDPAddr
	resolvedAt   time.Time
}

// NewUDPSender binds a UDP socket to the given local port. Port 0 picks an
// ephemeral port.
func NewUDPSender(localPort int) (*UDPSender, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: localPort})
	if err != nil {
		return nil, fmt.Errorf("failed to bind local udp port %d: %w", localPort, err)
	}
	return &UDPSender{conn: conn}, nil
}

// Send resolves target (subject to the TTL cache) and writes one datagram.
func (s *UDPSender) Send(target string, ttl time.Duration, datagram []byte) error {
	addr, err := s.resolve(target, ttl)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", target, err)
	}
	if _, err := s.conn.WriteToUDP(datagram, addr); err != nil {
		return fmt.Errorf("failed to send to %s: %w", target, err)
	}
	return nil
}

func (s *UDPSender) resolve(target string, ttl time.Duration) (*net.UDPAddr, error) {
	if s.cachedAddr != nil && s.cachedTarget == target && time.Since(s.resolvedAt) < ttl {
		return s.cachedAddr, nil
	}

	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, err
	}

	s.cachedTarget = target
	s.cachedAddr = addr
	s.resolvedAt = time.Now()
	return addr, nil
}

// LocalAddr returns the bound local address.
func (s *UDPSender) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Close releases the socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}
