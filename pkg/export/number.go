package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Number is a decimal written as a plain JSON number literal.
type Number struct {
	decimal.Decimal
}

func NewNumber(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalJSON accepts number literals and quoted numbers.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("null is not a number")
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", b, err)
	}
	n.Decimal = d
	return nil
}
