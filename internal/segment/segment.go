// Package segment enumerates the customer segments the pricing model
// distinguishes and the fixed coefficients bound to each of them.
package segment

import (
	"fmt"
	"strings"
)

// Key identifies a customer segment by price sensitivity.
type Key int

const (
	Low Key = iota
	Med
	High

	// Count is the number of segments; tables indexed by Key use it as their length.
	Count = 3
)

// Higher elasticity means more price-sensitive customers.
var elasticity = [Count]float64{
	Low:  0.20,
	Med:  0.35,
	High: 0.55,
}

// Band-wide shift applied to the acceptable price band.
var bandOffset = [Count]float64{
	Low:  0.05,
	Med:  0,
	High: -0.05,
}

var names = [Count]string{
	Low:  "low",
	Med:  "med",
	High: "high",
}

// All returns every segment in ascending sensitivity order.
func All() []Key {
	return []Key{Low, Med, High}
}

// Parse converts a configuration or request value into a Key.
func Parse(value string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return Low, nil
	case "med", "medium":
		return Med, nil
	case "high":
		return High, nil
	default:
		return 0, fmt.Errorf("unknown segment %q (expected low, med or high)", value)
	}
}

// Valid reports whether k is one of the enumerated segments.
func (k Key) Valid() bool {
	return k >= Low && k <= High
}

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("segment(%d)", int(k))
	}
	return names[k]
}

// Elasticity returns the segment's competitive elasticity coefficient.
func (k Key) Elasticity() float64 {
	return elasticity[k]
}

// BandOffset returns the fixed relative shift applied to the segment's band.
func (k Key) BandOffset() float64 {
	return bandOffset[k]
}

// MarshalText encodes the segment by name.
func (k Key) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid segment %d", int(k))
	}
	return []byte(names[k]), nil
}

// UnmarshalText decodes a segment name.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
