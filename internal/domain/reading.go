package domain

import "time"

// Quantity is the physical type of a measurement field. It determines which
// unit conversion applies and which unit string the output carries.
type Quantity string

const (
	Pressure    Quantity = "pressure"
	Temperature Quantity = "temperature"
	Percent     Quantity = "percent"
	Speed       Quantity = "speed"
	Direction   Quantity = "direction"
	Rate        Quantity = "rate"
	Amount      Quantity = "amount"
)

// Field is one named measurement column of the station archive.
type Field struct {
	Name     string
	Quantity Quantity
}

// Fields is the fixed, ordered projection of measurement columns read from
// every station archive. The order is the column order of both the SQL
// projection and a Reading's Values slice.
var Fields = []Field{
	{"barometer", Pressure},
	{"pressure", Pressure},
	{"altimeter", Pressure},
	{"inTemp", Temperature},
	{"outTemp", Temperature},
	{"inHumidity", Percent},
	{"outHumidity", Percent},
	{"windSpeed", Speed},
	{"windDir", Direction},
	{"windGust", Speed},
	{"windGustDir", Direction},
	{"rainRate", Rate},
	{"rain", Amount},
	{"dewpoint", Temperature},
	{"windchill", Temperature},
	{"heatindex", Temperature},
}

// fieldIndex maps field name to its position in Fields.
var fieldIndex = func() map[string]int {
	m := make(map[string]int, len(Fields))
	for i, f := range Fields {
		m[f.Name] = i
	}
	return m
}()

// QuantityOf returns the physical quantity of a field name. ok is false for
// names outside the static table, which callers treat as a schema error.
func QuantityOf(name string) (q Quantity, ok bool) {
	i, ok := fieldIndex[name]
	if !ok {
		return "", false
	}
	return Fields[i].Quantity, true
}

// Units maps each quantity to the unit string of its normalized (metric)
// representation.
var Units = map[Quantity]string{
	Pressure:    "hPa",
	Temperature: "deg C",
	Percent:     "%",
	Speed:       "km/h",
	Direction:   "deg",
	Rate:        "mm/hr",
	Amount:      "mm",
}

// Reading is one archive row: a timestamp, the unit-system flag the station
// recorded it in, and one value per entry of Fields. A nil value means the
// station did not report that field; it is carried through to the output
// untouched.
type Reading struct {
	Timestamp time.Time
	Imperial  bool
	Values    []*float64
}
