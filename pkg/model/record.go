package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Reason string

const (
	ReasonLapComplete Reason = "lap-complete"
	ReasonManualStop  Reason = "manual-stop"
)

// FileNameTimeLayout is the compact date-time used in suggested file names.
const FileNameTimeLayout = "20060102_150405"

type LapStats struct {
	SpeedTopKph    decimal.Decimal
	SpeedAvgKph    decimal.Decimal
	ThrottleAvgPct decimal.Decimal // 0..100
	BrakeAvgPct    decimal.Decimal // 0..100
}

// LapRecord is a finished lap. Records are created once and must not be modified.
type LapRecord struct {
	Index             int
	CapturedAt        time.Time
	Reason            Reason
	SuggestedFileName string
	Data              *LapCapture
	Stats             LapStats
}

func SuggestedFileName(index int, capturedAt time.Time) string {
	return fmt.Sprintf("lap_%03d_%s.json", index, capturedAt.Format(FileNameTimeLayout))
}

func (r *LapRecord) String() string {
	return fmt.Sprintf("Lap #%03d @ %s (%s)", r.Index, r.CapturedAt.Format("15:04:05"), r.Reason)
}
