package natssink

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/export"
	"github.com/racetelemetry/laprecorder/pkg/model"
	"github.com/racetelemetry/laprecorder/pkg/utils"
)

const (
	HeaderIndex      = "Lrec-Lap-Index"
	HeaderReason     = "Lrec-Lap-Reason"
	HeaderCapturedAt = "Lrec-Captured-At"
	HeaderFileName   = "Lrec-File-Name"
	HeaderChecksum   = "Lrec-Sha256"
)

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
}

// NatsSink publishes the export document of every lap.
type NatsSink struct {
	pub       Publisher
	prefix    string
	sessionID string
	l         *log.Logger
}

type Option func(n *NatsSink)

func WithLogger(l *log.Logger) Option {
	return func(n *NatsSink) {
		n.l = l
	}
}

func NewNatsSink(pub Publisher, prefix, sessionID string, opts ...Option) *NatsSink {
	ret := &NatsSink{
		pub:       pub,
		prefix:    prefix,
		sessionID: sessionID,
		l:         log.Default().Named("nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Connect opens a connection that keeps reconnecting while the recorder runs.
func Connect(url string) (*nats.Conn, error) {
	l := log.Default().Named("nats")
	return nats.Connect(url,
		nats.Name("lrec"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			l.Warn("disconnected", log.ErrorField(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info("reconnected", log.String("url", c.ConnectedUrl()))
		}),
	)
}

func (n *NatsSink) Name() string {
	return "nats"
}

// Subject returns the subject a lap is published on.
func (n *NatsSink) Subject(rec *model.LapRecord) string {
	return fmt.Sprintf("%s.%s.%d", n.prefix, n.sessionID, rec.Index)
}

func (n *NatsSink) Store(ctx context.Context, rec *model.LapRecord) error {
	_, span := otel.Tracer("lrec.sink").Start(ctx, "nats.publish")
	defer span.End()

	data, err := export.Marshal(export.FromRecord(rec))
	if err != nil {
		return fmt.Errorf("marshal lap %d: %w", rec.Index, err)
	}
	msg := nats.NewMsg(n.Subject(rec))
	msg.Header.Set(HeaderIndex, strconv.Itoa(rec.Index))
	msg.Header.Set(HeaderReason, string(rec.Reason))
	msg.Header.Set(HeaderCapturedAt, rec.CapturedAt.Format(time.RFC3339))
	msg.Header.Set(HeaderFileName, rec.SuggestedFileName)
	msg.Header.Set(HeaderChecksum, utils.HashContent(data))
	// JetStream deduplication
	msg.Header.Set(nats.MsgIdHdr, fmt.Sprintf("%s-%d", n.sessionID, rec.Index))
	msg.Data = data
	span.SetAttributes(attribute.String("subject", msg.Subject), attribute.Int("size", len(data)))
	if err := n.pub.PublishMsg(msg); err != nil {
		span.RecordError(err)
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	n.l.Debug("lap published", log.String("subject", msg.Subject), log.Int("size", len(data)))
	return nil
}
