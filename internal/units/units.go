// Package units normalizes raw station readings to metric units.
package units

import (
	"fmt"

	"boreas/internal/domain"
)

// Conversion factors for stations reporting in US units.
const (
	inHgToHPa = 33.86389 // inches of mercury to hectopascal
	mphToKmh  = 1.60934  // miles per hour to kilometres per hour
	inchToMm  = 25.4     // inches to millimetres
)

// Convert normalizes a single raw value. When imperial is false the value is
// already metric and returned unchanged; percent and direction fields are
// unit-free either way. An unknown field name indicates the archive schema
// has drifted from the static field table and is not recoverable.
func Convert(field string, value float64, imperial bool) (float64, error) {
	q, ok := domain.QuantityOf(field)
	if !ok {
		return 0, fmt.Errorf("unknown measurement field %q", field)
	}
	if !imperial {
		return value, nil
	}

	switch q {
	case domain.Pressure:
		return value * inHgToHPa, nil
	case domain.Temperature:
		return (value - 32.0) * 5.0 / 9.0, nil
	case domain.Speed:
		return value * mphToKmh, nil
	case domain.Rate, domain.Amount:
		return value * inchToMm, nil
	default:
		// percent, direction
		return value, nil
	}
}

// ConvertReading normalizes all present values of a reading in place.
// Absent (nil) values are left untouched.
func ConvertReading(r *domain.Reading) error {
	if !r.Imperial {
		return nil
	}
	for i, v := range r.Values {
		if v == nil {
			continue
		}
		nv, err := Convert(domain.Fields[i].Name, *v, true)
		if err != nil {
			return err
		}
		*r.Values[i] = nv
	}
	r.Imperial = false
	return nil
}
