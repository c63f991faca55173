package f1

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/racetelemetry/laprecorder/pkg/model"
)

var (
	ErrMalformed   = errors.New("malformed packet")
	ErrUnsupported = errors.New("unsupported packet format")
)

func ParseHeader(b []byte) (Header, error) {
	var h Header
	if len(b) < headerSize {
		return h, fmt.Errorf("%w: %d bytes, header needs %d", ErrMalformed, len(b), headerSize)
	}
	if err := binary.Read(bytes.NewReader(b[:headerSize]), binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return h, nil
}

// Decode extracts the sample of the player car.
// Packets other than lap data and car telemetry return a nil sample and no error.
func Decode(b []byte) (model.Sample, error) {
	h, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	switch h.PacketID {
	case PacketLapData:
		return decodeLapData(h, b)
	case PacketCarTelemetry:
		return decodeCarTelemetry(h, b)
	default:
		return nil, nil
	}
}

func decodeLapData(h Header, b []byte) (model.Sample, error) {
	switch h.PacketFormat {
	case Format2023:
		var d LapData23
		if err := readCarEntry(h, b, lapData23Size, &d); err != nil {
			return nil, err
		}
		return positionSample(d.LapDistance, d.CurrentLapTimeInMS, d.CurrentLapNum), nil
	case Format2024:
		var d LapData24
		if err := readCarEntry(h, b, lapData24Size, &d); err != nil {
			return nil, err
		}
		return positionSample(d.LapDistance, d.CurrentLapTimeInMS, d.CurrentLapNum), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupported, h.PacketFormat)
	}
}

func decodeCarTelemetry(h Header, b []byte) (model.Sample, error) {
	var d CarTelemetry
	if err := readCarEntry(h, b, carTelemetrySize, &d); err != nil {
		return nil, err
	}
	return model.ChannelSample{
		SpeedKph:     decimal.NewFromInt(int64(d.Speed)),
		BrakeFrac:    decimal.NewFromFloat32(d.Brake),
		ThrottleFrac: decimal.NewFromFloat32(d.Throttle),
		Gear:         int(d.Gear),
		SteerFrac:    decimal.NewFromFloat32(d.Steer),
		DrsOn:        d.Drs == 1,
	}, nil
}

func positionSample(dist float32, lapTimeMs uint32, lapNum uint8) model.PositionSample {
	return model.PositionSample{
		DistanceMeters: decimal.NewFromFloat32(dist),
		LapTimeMs:      decimal.NewFromInt(int64(lapTimeMs)),
		LapNumber:      int(lapNum),
	}
}

// readCarEntry reads the entry of the player car into out.
func readCarEntry(h Header, b []byte, size int, out any) error {
	idx := int(h.PlayerCarIndex)
	if idx >= NumCars {
		return fmt.Errorf("%w: player car index %d", ErrMalformed, idx)
	}
	start := headerSize + idx*size
	if len(b) < start+size {
		return fmt.Errorf("%w: packet %d has %d bytes, need %d",
			ErrMalformed, h.PacketID, len(b), start+size)
	}
	if err := binary.Read(bytes.NewReader(b[start:start+size]), binary.LittleEndian, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}
