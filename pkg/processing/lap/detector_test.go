//nolint:funlen // ok for tests
package lap

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racetelemetry/laprecorder/pkg/model"
)

type finalized struct {
	capture *model.LapCapture
	reason  model.Reason
}

type recorder struct {
	laps []finalized
}

func (r *recorder) Finalize(_ context.Context, c *model.LapCapture, reason model.Reason) {
	r.laps = append(r.laps, finalized{capture: c, reason: reason})
}

func pos(dist string, lap int) model.PositionSample {
	d := decimal.RequireFromString(dist)
	return model.PositionSample{DistanceMeters: d, LapTimeMs: d.Mul(decimal.NewFromInt(10)), LapNumber: lap}
}

func tel(speed int64) model.ChannelSample {
	return model.ChannelSample{SpeedKph: decimal.NewFromInt(speed), Gear: 3}
}

func TestStartsOnNegToPosCrossing(t *testing.T) {
	r := &recorder{}
	d := NewDetector(r)
	want := []struct {
		dist    string
		state   string
		outcome Outcome
	}{
		{"-5", StateArmed, DroppedArmed},
		{"-2", StateArmed, DroppedArmed},
		{"0", StateActive, Accepted},
		{"5", StateActive, Accepted},
		{"10", StateActive, Accepted},
	}
	for _, w := range want {
		got := d.HandlePosition(context.Background(), pos(w.dist, 1))
		assert.Equal(t, w.outcome, got, "distance %s", w.dist)
		assert.Equal(t, w.state, d.State(), "distance %s", w.dist)
	}
	assert.Equal(t, 1, d.Starts())
	assert.Equal(t, []int{0, 5, 10}, d.Capture().TimeNormalized.Keys())
	assert.Empty(t, r.laps)
}

func TestStartsOnDistanceWrap(t *testing.T) {
	tests := []struct {
		name      string
		opts      []DetectorOption
		dists     []string
		wantState string
	}{
		{"default wrap", nil, []string{"1200", "1500", "10"}, StateActive},
		{"below wrap from", nil, []string{"900", "1000", "10"}, StateArmed},
		{"not below wrap to", nil, []string{"1500", "50"}, StateArmed},
		{
			"configured thresholds",
			[]DetectorOption{WithWrap(decimal.NewFromInt(400), decimal.NewFromInt(20))},
			[]string{"500", "10"},
			StateActive,
		},
		{
			"configured thresholds reject default case",
			[]DetectorOption{WithWrap(decimal.NewFromInt(2000), decimal.NewFromInt(50))},
			[]string{"1500", "10"},
			StateArmed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(&recorder{}, tt.opts...)
			for _, dist := range tt.dists {
				d.HandlePosition(context.Background(), pos(dist, 1))
			}
			assert.Equal(t, tt.wantState, d.State())
		})
	}
}

func TestArmedDropsEverything(t *testing.T) {
	d := NewDetector(&recorder{})
	assert.Equal(t, DroppedArmed, d.HandlePosition(context.Background(), pos("100", 1)))
	assert.Equal(t, DroppedArmed, d.HandleChannel(tel(200)))
	assert.True(t, d.Capture().Empty())
	assert.Empty(t, d.Capture().Channel(model.ChannelSpeed))
	assert.True(t, d.Capture().LastDistance.IsUnset())
}

func TestStartReplacesCapture(t *testing.T) {
	d := NewDetector(&recorder{})
	d.HandlePosition(context.Background(), pos("-1", 1))
	before := d.Capture()
	d.HandlePosition(context.Background(), pos("0.4", 1))
	assert.NotSame(t, before, d.Capture())
	assert.Equal(t, []int{0}, d.Capture().TimeNormalized.Keys())
}

func TestNoRestartWhileActive(t *testing.T) {
	d := NewDetector(&recorder{})
	d.HandlePosition(context.Background(), pos("-1", 1))
	d.HandlePosition(context.Background(), pos("0", 1))
	d.HandlePosition(context.Background(), pos("1", 1))
	assert.Equal(t, DroppedNegative, d.HandlePosition(context.Background(), pos("-0.5", 1)))
	assert.Equal(t, Accepted, d.HandlePosition(context.Background(), pos("2", 1)))
	assert.Equal(t, 1, d.Starts())
	assert.Equal(t, []int{0, 1, 2}, d.Capture().TimeNormalized.Keys())
}

func TestJitterTolerance(t *testing.T) {
	d := NewDetector(&recorder{})
	d.HandlePosition(context.Background(), pos("-1", 1))
	for _, dist := range []string{"100", "102"} {
		require.Equal(t, Accepted, d.HandlePosition(context.Background(), pos(dist, 1)))
	}
	assert.Equal(t, DroppedJitter, d.HandlePosition(context.Background(), pos("99", 1)))
	last, ok := d.Capture().LastDistance.Get()
	require.True(t, ok)
	assert.Equal(t, "102", last.String())
	assert.Equal(t, []int{100, 102}, d.Capture().TimeNormalized.Keys())

	// exactly at the tolerance is accepted and overwrites the meter
	assert.Equal(t, Accepted, d.HandlePosition(context.Background(), pos("100", 1)))
	v, _ := d.Capture().TimeNormalized.Get(100)
	assert.Equal(t, "1000", v.String())
}

func TestConfiguredJitter(t *testing.T) {
	d := NewDetector(&recorder{}, WithJitter(decimal.NewFromInt(5)))
	d.HandlePosition(context.Background(), pos("-1", 1))
	d.HandlePosition(context.Background(), pos("100", 1))
	assert.Equal(t, Accepted, d.HandlePosition(context.Background(), pos("96", 1)))
	assert.Equal(t, DroppedJitter, d.HandlePosition(context.Background(), pos("90", 1)))
}

func TestLapAdvanceKeepsSample(t *testing.T) {
	r := &recorder{}
	d := NewDetector(r)
	d.HandlePosition(context.Background(), pos("-1", 1))
	for _, s := range []model.PositionSample{pos("10", 1), pos("20", 1), pos("5", 2)} {
		assert.Equal(t, Accepted, d.HandlePosition(context.Background(), s))
	}
	require.Len(t, r.laps, 1)
	assert.Equal(t, model.ReasonLapComplete, r.laps[0].reason)
	assert.Equal(t, []int{10, 20}, r.laps[0].capture.TimeNormalized.Keys())

	assert.Equal(t, []int{5}, d.Capture().TimeNormalized.Keys())
	lapNum, ok := d.Capture().LastLapNumber.Get()
	require.True(t, ok)
	assert.Equal(t, 2, lapNum)
	last, _ := d.Capture().LastDistance.Get()
	assert.Equal(t, "5", last.String())
}

func TestTimeIsRoundedToTwoPlaces(t *testing.T) {
	d := NewDetector(&recorder{})
	d.HandlePosition(context.Background(), pos("-1", 1))
	d.HandlePosition(context.Background(), model.PositionSample{
		DistanceMeters: decimal.RequireFromString("12.5"),
		LapTimeMs:      decimal.RequireFromString("1234.565"),
		LapNumber:      1,
	})
	v, ok := d.Capture().TimeNormalized.Get(13)
	require.True(t, ok)
	assert.Equal(t, "1234.57", v.String())
}

func TestChannelSamples(t *testing.T) {
	d := NewDetector(&recorder{})
	// a wrap start onto a negative distance leaves the capture without baseline
	d.HandlePosition(context.Background(), pos("1500", 1))
	assert.Equal(t, DroppedNegative, d.HandlePosition(context.Background(), pos("-3", 1)))
	require.Equal(t, StateActive, d.State())
	assert.Equal(t, DroppedNoBaseline, d.HandleChannel(tel(100)))

	d.HandlePosition(context.Background(), pos("0", 1))
	d.HandlePosition(context.Background(), pos("10.5", 1))
	assert.Equal(t, Accepted, d.HandleChannel(tel(100)))
	assert.Equal(t, Accepted, d.HandleChannel(tel(110)))
	d.HandlePosition(context.Background(), pos("12.2", 1))
	assert.Equal(t, Accepted, d.HandleChannel(tel(120)))

	speed := d.Capture().Channel(model.ChannelSpeed)
	require.Len(t, speed, 2)
	assert.Equal(t, 11, speed[0].X)
	assert.Equal(t, "110", speed[0].Y.String())
	assert.Equal(t, 12, speed[1].X)
	for _, ch := range model.Channels() {
		assert.Len(t, d.Capture().Channel(ch), 2, ch.String())
	}
}

func TestChannelSamplesWithinJitter(t *testing.T) {
	tests := []struct {
		name  string
		dists []string
		wantX []int
		wantY []string
	}{
		{
			name:  "passed meter is dropped",
			dists: []string{"100", "102", "100.6", "102"},
			wantX: []int{100, 102},
			wantY: []string{"1", "4"},
		},
		{
			name:  "recorded meter is replaced",
			dists: []string{"100", "102", "100.4"},
			wantX: []int{100, 102},
			wantY: []string{"3", "2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(&recorder{})
			d.HandlePosition(context.Background(), pos("-1", 1))
			for i, dist := range tt.dists {
				require.Equal(t, Accepted, d.HandlePosition(context.Background(), pos(dist, 1)), dist)
				require.Equal(t, Accepted, d.HandleChannel(tel(int64(i+1))), dist)
			}
			for _, ch := range model.Channels() {
				s := d.Capture().Channel(ch)
				xs := make([]int, len(s))
				for i := range s {
					xs[i] = s[i].X
				}
				assert.Equal(t, tt.wantX, xs, ch.String())
			}
			speed := d.Capture().Channel(model.ChannelSpeed)
			ys := make([]string, len(speed))
			for i := range speed {
				ys[i] = speed[i].Y.String()
			}
			assert.Equal(t, tt.wantY, ys)
		})
	}
}

func TestStop(t *testing.T) {
	r := &recorder{}
	d := NewDetector(r)
	d.HandlePosition(context.Background(), pos("-1", 1))
	d.HandlePosition(context.Background(), pos("10", 1))
	d.Stop(context.Background())

	require.Len(t, r.laps, 1)
	assert.Equal(t, model.ReasonManualStop, r.laps[0].reason)
	assert.Equal(t, StateArmed, d.State())
	assert.True(t, d.Capture().Empty())

	// previous distance is forgotten, a positive distance alone does not start
	d.HandlePosition(context.Background(), pos("20", 1))
	assert.Equal(t, StateArmed, d.State())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "jitter", DroppedJitter.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
