package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/model"
)

const DefaultPort = 20777

// Decoder turns a datagram into a sample. A nil sample without error means the datagram is ignored.
type Decoder func(b []byte) (model.Sample, error)

type Stats struct {
	Packets   int64
	Samples   int64
	Ignored   int64
	Malformed int64
}

type Listener struct {
	addr        string
	decode      Decoder
	out         chan<- model.Sample
	readTimeout time.Duration
	bufSize     int
	conn        *net.UDPConn
	log         *log.Logger

	packets   atomic.Int64
	samples   atomic.Int64
	ignored   atomic.Int64
	malformed atomic.Int64
}

type Option func(l *Listener)

func WithReadTimeout(d time.Duration) Option {
	return func(l *Listener) {
		l.readTimeout = d
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Listener) {
		l.log = logger
	}
}

func NewListener(addr string, decode Decoder, out chan<- model.Sample, opts ...Option) *Listener {
	ret := &Listener{
		addr:        addr,
		decode:      decode,
		out:         out,
		readTimeout: time.Second,
		bufSize:     2048,
		log:         log.Default().Named("udp"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Listen binds the socket.
func (l *Listener) Listen() error {
	addr, err := net.ResolveUDPAddr("udp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP: %w", err)
	}
	l.conn = conn
	l.log.Info("listening", log.String("addr", conn.LocalAddr().String()))
	return nil
}

// Addr returns the bound address, nil before Listen.
func (l *Listener) Addr() net.Addr {
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

// Serve reads datagrams until ctx is done. Undecodable datagrams are counted and dropped.
func (l *Listener) Serve(ctx context.Context) error {
	if l.conn == nil {
		if err := l.Listen(); err != nil {
			return err
		}
	}
	defer l.conn.Close()

	buffer := make([]byte, l.bufSize)
	for {
		select {
		case <-ctx.Done():
			l.log.Info("listener shutting down", l.statsFields()...)
			return nil
		default:
		}
		if err := l.conn.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}
		n, _, err := l.conn.ReadFromUDP(buffer)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.log.Warn("error reading UDP packet", log.ErrorField(err))
			continue
		}
		l.packets.Add(1)
		s, err := l.decode(buffer[:n])
		if err != nil {
			if l.malformed.Add(1)%100 == 1 {
				l.log.Debug("dropping datagram", log.ErrorField(err), log.Int("size", n))
			}
			continue
		}
		if s == nil {
			l.ignored.Add(1)
			continue
		}
		select {
		case l.out <- s:
			l.samples.Add(1)
		case <-ctx.Done():
			l.log.Info("listener shutting down", l.statsFields()...)
			return nil
		}
	}
}

func (l *Listener) Stats() Stats {
	return Stats{
		Packets:   l.packets.Load(),
		Samples:   l.samples.Load(),
		Ignored:   l.ignored.Load(),
		Malformed: l.malformed.Load(),
	}
}

func (l *Listener) statsFields() []log.Field {
	s := l.Stats()
	return []log.Field{
		log.Int64("packets", s.Packets),
		log.Int64("samples", s.Samples),
		log.Int64("ignored", s.Ignored),
		log.Int64("malformed", s.Malformed),
	}
}
