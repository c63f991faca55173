package processing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/model"
	"github.com/racetelemetry/laprecorder/pkg/processing/lap"
	"github.com/racetelemetry/laprecorder/pkg/processing/stats"
	"github.com/racetelemetry/laprecorder/pkg/store"
)

const (
	DefaultProgressEvery  = 600
	DefaultPublishTimeout = 5 * time.Second
)

// Processor is the single consumer of the sample stream.
// It feeds the lap detector and turns finished captures into records.
type Processor struct {
	detector      *lap.Detector
	store         *store.LapStore
	publish       chan<- *model.LapRecord
	now           func() time.Time
	progressEvery  int64
	publishTimeout time.Duration
	detectorOpts   []lap.DetectorOption
	stopOnce       sync.Once
	tracer         trace.Tracer
	log            *log.Logger
	counters       counters
}

type counters struct {
	samples     atomic.Int64
	positions   atomic.Int64
	channels    atomic.Int64
	accepted    atomic.Int64
	dropped     atomic.Int64
	discarded   atomic.Int64
	laps        atomic.Int64
	unpublished atomic.Int64
}

// Counters is a snapshot of the processing counters.
type Counters struct {
	Samples     int64
	Positions   int64
	Channels    int64
	Accepted    int64
	Dropped     int64
	Discarded   int64 // captures without data at finalize
	Laps        int64
	Unpublished int64 // records not handed to the publisher
}

type ProcessorOption func(proc *Processor)

func WithStore(s *store.LapStore) ProcessorOption {
	return func(proc *Processor) {
		proc.store = s
	}
}

// WithPublisher sets the channel that receives every new record.
// A send blocks until the channel accepts the record, the context is done
// or the publish timeout expires.
func WithPublisher(ch chan<- *model.LapRecord) ProcessorOption {
	return func(proc *Processor) {
		proc.publish = ch
	}
}

// WithPublishTimeout bounds how long a record send may block. Zero waits for the context only.
func WithPublishTimeout(d time.Duration) ProcessorOption {
	return func(proc *Processor) {
		proc.publishTimeout = d
	}
}

func WithClock(now func() time.Time) ProcessorOption {
	return func(proc *Processor) {
		proc.now = now
	}
}

func WithProgressEvery(n int) ProcessorOption {
	return func(proc *Processor) {
		proc.progressEvery = int64(n)
	}
}

func WithDetectorOptions(opts ...lap.DetectorOption) ProcessorOption {
	return func(proc *Processor) {
		proc.detectorOpts = append(proc.detectorOpts, opts...)
	}
}

func WithLogger(l *log.Logger) ProcessorOption {
	return func(proc *Processor) {
		proc.log = l
	}
}

func NewProcessor(opts ...ProcessorOption) *Processor {
	ret := &Processor{
		now:           time.Now,
		progressEvery:  DefaultProgressEvery,
		publishTimeout: DefaultPublishTimeout,
		tracer:         otel.Tracer("lrec.processing"),
		log:            log.Default().Named("processor"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.store == nil {
		ret.store = store.New()
	}
	ret.detector = lap.NewDetector(ret, ret.detectorOpts...)
	ret.setupMetrics()
	return ret
}

func (p *Processor) Store() *store.LapStore {
	return p.store
}

// Detector gives access to the detector state. Only use it on the ingestion goroutine.
func (p *Processor) Detector() *lap.Detector {
	return p.detector
}

func (p *Processor) Counters() Counters {
	return Counters{
		Samples:     p.counters.samples.Load(),
		Positions:   p.counters.positions.Load(),
		Channels:    p.counters.channels.Load(),
		Accepted:    p.counters.accepted.Load(),
		Dropped:     p.counters.dropped.Load(),
		Discarded:   p.counters.discarded.Load(),
		Laps:        p.counters.laps.Load(),
		Unpublished: p.counters.unpublished.Load(),
	}
}

// Process handles one sample. A finalize triggered by the sample completes before it returns.
func (p *Processor) Process(ctx context.Context, s model.Sample) {
	var outcome lap.Outcome
	switch v := s.(type) {
	case model.PositionSample:
		p.counters.positions.Add(1)
		outcome = p.detector.HandlePosition(ctx, v)
	case model.ChannelSample:
		p.counters.channels.Add(1)
		outcome = p.detector.HandleChannel(v)
	default:
		p.log.Warn("unknown sample type", log.Any("sample", s))
		return
	}
	if outcome == lap.Accepted {
		p.counters.accepted.Add(1)
	} else {
		p.counters.dropped.Add(1)
	}
	n := p.counters.samples.Add(1)
	if p.progressEvery > 0 && n%p.progressEvery == 0 {
		p.log.Info("progress",
			log.Int64("samples", n),
			log.String("state", p.detector.State()),
			log.Int("timePoints", p.detector.Capture().TimeNormalized.Len()),
			log.Int("speedPoints", len(p.detector.Capture().Channel(model.ChannelSpeed))),
			log.Int("completed", p.store.Len()))
	}
}

// Finalize freezes the capture into a record. Captures without any meter are discarded.
func (p *Processor) Finalize(ctx context.Context, c *model.LapCapture, reason model.Reason) {
	if c.Empty() {
		p.counters.discarded.Add(1)
		p.log.Debug("discarding empty capture", log.String("reason", string(reason)))
		return
	}
	ctx, span := p.tracer.Start(ctx, "lap.finalize")
	defer span.End()

	capturedAt := p.now()
	index := p.store.Len() + 1
	rec := &model.LapRecord{
		Index:             index,
		CapturedAt:        capturedAt,
		Reason:            reason,
		SuggestedFileName: model.SuggestedFileName(index, capturedAt),
		Stats:             stats.Compute(c),
		Data:              c.Clone(),
	}
	p.store.Append(rec)
	p.counters.laps.Add(1)
	span.SetAttributes(
		attribute.Int("lap.index", index),
		attribute.String("lap.reason", string(reason)),
		attribute.Int("lap.meters", rec.Data.TimeNormalized.Len()),
	)
	p.log.Info("lap completed",
		log.Int("index", rec.Index),
		log.String("reason", string(rec.Reason)),
		log.String("file", rec.SuggestedFileName),
		log.String("speedTop", rec.Stats.SpeedTopKph.Round(0).String()),
		log.String("speedAvg", rec.Stats.SpeedAvgKph.Round(1).String()))

	if p.publish != nil {
		p.forward(ctx, rec)
	}
}

func (p *Processor) forward(ctx context.Context, rec *model.LapRecord) {
	select {
	case p.publish <- rec:
		return
	default:
	}
	if p.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.publishTimeout)
		defer cancel()
	}
	select {
	case p.publish <- rec:
	case <-ctx.Done():
		p.counters.unpublished.Add(1)
		p.log.Warn("record not forwarded",
			log.Int("index", rec.Index),
			log.ErrorField(ctx.Err()))
	}
}

// Stop finalizes the capture in progress as manual stop. Only the first call has an effect.
// It must not run concurrently with Process.
func (p *Processor) Stop(ctx context.Context) {
	p.stopOnce.Do(func() {
		p.detector.Stop(ctx)
	})
}

// Run consumes samples until ctx is done or the channel is closed.
// Cancellation is checked between samples. The capture in progress is finalized
// as manual stop before Run returns, its record is still published after ctx is done.
func (p *Processor) Run(ctx context.Context, samples <-chan model.Sample) {
	defer func() {
		p.Stop(context.WithoutCancel(ctx))
		p.log.Info("processor stopped",
			log.Int64("samples", p.counters.samples.Load()),
			log.Int("completed", p.store.Len()))
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-samples:
			if !ok {
				return
			}
			p.Process(ctx, s)
		}
	}
}
