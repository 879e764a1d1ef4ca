// Package server implements the SNMPv1 UDP serving loop: receive a
// datagram, authenticate its community string, dispatch the decoded PDU
// into a mib.Agent, and send the response back.
//
// Grounded on the teacher's trapreceiver.go listener lifecycle (Start/Stop
// with a stop channel and a done channel so Stop blocks until the read
// loop has actually exited) adapted from a gosnmp.TrapListener wrapper to
// a plain net.ListenUDP loop — SNMPv1 Get/GetNext serving has no
// gosnmp-side listener type to wrap. The read loop itself is single-
// threaded and blocking by default, per spec.md §5: requests are handled
// one at a time unless a plugin/proxy call suspends it. See DESIGN.md
// "pkg/snmpmibd/server".
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/vpbank/snmpmibd/mib"
	"github.com/vpbank/snmpmibd/pkg/snmpmibd/codec"
)

// Options configures the serving loop.
type Options struct {
	Port          int
	MaxPacketSize int
	Communities   []string
	CloseTimeout  time.Duration
}

func (o *Options) defaults() {
	if o.Port == 0 {
		o.Port = 161
	}
	if o.MaxPacketSize == 0 {
		o.MaxPacketSize = 65507
	}
	if o.CloseTimeout == 0 {
		o.CloseTimeout = 5 * time.Second
	}
}

// Server owns the UDP socket and serves requests against agent until
// stopped.
type Server struct {
	opts   Options
	agent  *mib.Agent
	logger *slog.Logger

	conn   *net.UDPConn
	stopCh chan struct{}
	doneCh chan struct{}
}

// New returns a Server bound to agent. It does not listen yet; call Start.
func New(opts Options, agent *mib.Agent, logger *slog.Logger) *Server {
	opts.defaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	return &Server{
		opts:   opts,
		agent:  agent,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start opens the UDP socket and begins serving in the background. It
// returns once the socket is listening, matching the teacher's readiness-
// before-return convention.
func (s *Server) Start() error {
	addr := &net.UDPAddr{Port: s.opts.Port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("server: listen :%d: %w", s.opts.Port, err)
	}
	s.conn = conn
	s.logger.Info("server: listening", "port", s.opts.Port)

	go s.serve()
	return nil
}

// Stop closes the socket and blocks until the serving loop has exited, or
// CloseTimeout elapses.
func (s *Server) Stop() error {
	close(s.stopCh)
	if s.conn != nil {
		_ = s.conn.Close()
	}
	select {
	case <-s.doneCh:
		return nil
	case <-time.After(s.opts.CloseTimeout):
		return errors.New("server: stop timed out waiting for serve loop to exit")
	}
}

// Run starts the server and blocks until ctx is cancelled, then stops it —
// the shape cmd/snmpagentd uses under signal.NotifyContext.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

func (s *Server) serve() {
	defer close(s.doneCh)

	buf := make([]byte, s.opts.MaxPacketSize)
	for {
		n, remote, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("server: read error", "error", err.Error())
			continue
		}
		s.handleDatagram(append([]byte(nil), buf[:n]...), remote)
	}
}

func (s *Server) handleDatagram(data []byte, remote *net.UDPAddr) {
	packet, err := codec.DecodeRequest(data)
	if err != nil {
		s.logger.Warn("server: malformed message", "remote", remote.String(), "error", err.Error())
		return
	}

	if !s.communityAllowed(packet.Community) {
		s.logger.Debug("server: community rejected, dropping", "remote", remote.String())
		return
	}

	var response *gosnmp.SnmpPacket
	switch packet.PDUType {
	case gosnmp.GetRequest:
		response = s.handleGet(packet)
	case gosnmp.GetNextRequest:
		response = s.handleGetNext(packet)
	default:
		s.logger.Warn("server: unsupported pdu type, dropping", "type", packet.PDUType, "remote", remote.String())
		return
	}

	out, err := codec.EncodeResponse(response)
	if err != nil {
		s.logger.Warn("server: failed to encode response", "error", err.Error())
		return
	}
	if _, err := s.conn.WriteToUDP(out, remote); err != nil {
		s.logger.Warn("server: failed to send response", "remote", remote.String(), "error", err.Error())
	}
}

func (s *Server) communityAllowed(got string) bool {
	for _, c := range s.opts.Communities {
		if c == got {
			return true
		}
	}
	return false
}

func (s *Server) handleGet(req *gosnmp.SnmpPacket) *gosnmp.SnmpPacket {
	oids := make([]mib.ObjectId, len(req.Variables))
	for i, v := range req.Variables {
		oid, err := mib.ParseOid(v.Name)
		if err != nil {
			oid = mib.Empty
		}
		oids[i] = oid
	}

	values := s.agent.ProcessGetRequest(oids, req.Community)

	vars := make([]gosnmp.SnmpPDU, len(values))
	for i, v := range values {
		vars[i] = gosnmp.SnmpPDU{Name: "." + oids[i].String(), Type: v.Type, Value: v.Data}
	}
	return codec.NewResponse(req, vars)
}

func (s *Server) handleGetNext(req *gosnmp.SnmpPacket) *gosnmp.SnmpPacket {
	oids := make([]mib.ObjectId, len(req.Variables))
	for i, v := range req.Variables {
		oid, err := mib.ParseOid(v.Name)
		if err != nil {
			oid = mib.Empty
		}
		oids[i] = oid
	}

	nextOids, values := s.agent.ProcessGetNextRequest(oids, req.Community)

	vars := make([]gosnmp.SnmpPDU, len(values))
	errIndex := -1
	for i, v := range values {
		if v.IsSentinel() && v.Type == mib.EndOfMibView.Type {
			vars[i] = gosnmp.SnmpPDU{Name: "0", Type: v.Type, Value: v.Data}
			if errIndex < 0 {
				errIndex = i
			}
			continue
		}
		vars[i] = gosnmp.SnmpPDU{Name: "." + nextOids[i].String(), Type: v.Type, Value: v.Data}
	}

	resp := codec.NewResponse(req, vars)
	if errIndex >= 0 {
		resp.Error = gosnmp.NoSuchName
		resp.ErrorIndex = uint8(errIndex)
	}
	return resp
}

type noopWriter struct{}

func (noopWriter) Write(b []byte) (int, error) { return len(b), nil }
