package lap

import (
	"context"

	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"

	"github.com/racetelemetry/laprecorder/pkg/model"
	"github.com/racetelemetry/laprecorder/pkg/processing/resample"
)

const (
	StateArmed  = "ARMED"
	StateActive = "ACTIVE"
)

const (
	DefaultWrapFrom = 1000
	DefaultWrapTo   = 50
	DefaultJitter   = 2
)

// Finalizer receives captures that are done.
// The detector drops its reference to c right after the call.
type Finalizer interface {
	Finalize(ctx context.Context, c *model.LapCapture, reason model.Reason)
}

// Outcome describes what happened to a sample.
type Outcome int

const (
	Accepted Outcome = iota
	DroppedArmed
	DroppedNegative
	DroppedJitter
	DroppedNoBaseline
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case DroppedArmed:
		return "armed"
	case DroppedNegative:
		return "negative"
	case DroppedJitter:
		return "jitter"
	case DroppedNoBaseline:
		return "no-baseline"
	}
	return "unknown"
}

// Detector segments the sample stream into laps.
// It is not safe for concurrent use.
type Detector struct {
	state     string
	capture   *model.LapCapture
	prev      omit.Val[decimal.Decimal]
	finalizer Finalizer
	wrapFrom  decimal.Decimal
	wrapTo    decimal.Decimal
	jitter    decimal.Decimal
	starts    int
}

type DetectorOption func(d *Detector)

// WithWrap sets the thresholds of the distance wrap heuristic.
// A start is detected when the previous distance is above from and the current below to.
func WithWrap(from, to decimal.Decimal) DetectorOption {
	return func(d *Detector) {
		d.wrapFrom = from
		d.wrapTo = to
	}
}

// WithJitter sets how many meters a distance may go backwards without being dropped.
func WithJitter(meters decimal.Decimal) DetectorOption {
	return func(d *Detector) {
		d.jitter = meters
	}
}

func NewDetector(finalizer Finalizer, opts ...DetectorOption) *Detector {
	ret := &Detector{
		state:     StateArmed,
		capture:   model.NewLapCapture(),
		finalizer: finalizer,
		wrapFrom:  decimal.NewFromInt(DefaultWrapFrom),
		wrapTo:    decimal.NewFromInt(DefaultWrapTo),
		jitter:    decimal.NewFromInt(DefaultJitter),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (d *Detector) State() string {
	return d.state
}

// Capture returns the capture in progress. Callers must not keep the reference.
func (d *Detector) Capture() *model.LapCapture {
	return d.capture
}

// Starts returns how often a lap start was detected.
func (d *Detector) Starts() int {
	return d.starts
}

//nolint:gocritic // by design
func (d *Detector) HandlePosition(ctx context.Context, s model.PositionSample) Outcome {
	cur := s.DistanceMeters
	if prev, ok := d.prev.Get(); ok && d.state == StateArmed && d.isStart(prev, cur) {
		d.state = StateActive
		d.capture = model.NewLapCapture()
		d.starts++
	}
	d.prev = omit.From(cur)

	if d.state == StateArmed {
		return DroppedArmed
	}
	if cur.IsNegative() {
		return DroppedNegative
	}
	if last, ok := d.capture.LastLapNumber.Get(); ok && last != s.LapNumber {
		d.finalize(ctx, model.ReasonLapComplete)
	}
	if d.capture.LastLapNumber.IsUnset() {
		d.capture.LastLapNumber = omit.From(s.LapNumber)
	}
	if last, ok := d.capture.LastDistance.Get(); ok && cur.Add(d.jitter).LessThan(last) {
		return DroppedJitter
	}
	d.capture.LastDistance = omit.From(cur)
	d.capture.TimeNormalized.Set(model.WholeMeter(cur), s.LapTimeMs.Round(2))
	return Accepted
}

//nolint:gocritic // by design
func (d *Detector) HandleChannel(s model.ChannelSample) Outcome {
	if d.state == StateArmed {
		return DroppedArmed
	}
	last, ok := d.capture.LastDistance.Get()
	if !ok {
		return DroppedNoBaseline
	}
	resample.Apply(d.capture, model.WholeMeter(last), s)
	return Accepted
}

// Stop finalizes the capture in progress as manual stop and re-arms the detector.
func (d *Detector) Stop(ctx context.Context) {
	d.finalize(ctx, model.ReasonManualStop)
	d.state = StateArmed
	d.prev = omit.Val[decimal.Decimal]{}
}

func (d *Detector) isStart(prev, cur decimal.Decimal) bool {
	if prev.IsNegative() && !cur.IsNegative() {
		return true
	}
	return prev.GreaterThan(d.wrapFrom) && cur.LessThan(d.wrapTo)
}

func (d *Detector) finalize(ctx context.Context, reason model.Reason) {
	done := d.capture
	d.capture = model.NewLapCapture()
	if d.finalizer != nil {
		d.finalizer.Finalize(ctx, done, reason)
	}
}
