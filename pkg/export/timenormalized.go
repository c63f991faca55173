package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/racetelemetry/laprecorder/pkg/model"
)

// TimeNormalized writes the meter map as a JSON object keeping insertion order.
type TimeNormalized struct {
	m *model.TimeNormalizedMap
}

func (t TimeNormalized) Map() *model.TimeNormalizedMap {
	if t.m == nil {
		return model.NewTimeNormalizedMap()
	}
	return t.m
}

func (t TimeNormalized) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for meter, ms := range t.Map().All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(meter))
		buf.WriteString(`":`)
		buf.WriteString(ms.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *TimeNormalized) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("time_normalized: expected object, got %v", tok)
	}
	m := model.NewTimeNormalizedMap()
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		meter, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("time_normalized: invalid meter %q: %w", key, err)
		}
		var n Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("time_normalized[%d]: %w", meter, err)
		}
		m.Set(meter, n.Decimal)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	t.m = m
	return nil
}
