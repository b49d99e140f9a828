package artifact

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"boreas/internal/domain"
)

// record is the parquet row schema of the multi-station (4.0.0) layout.
// The measurement columns mirror domain.Fields in name and order; pointer
// types make them optional so absent readings stay null.
type record struct {
	Station     string   `parquet:"station,dict"`
	Time        int64    `parquet:"time"`
	Barometer   *float64 `parquet:"barometer"`
	Pressure    *float64 `parquet:"pressure"`
	Altimeter   *float64 `parquet:"altimeter"`
	InTemp      *float64 `parquet:"inTemp"`
	OutTemp     *float64 `parquet:"outTemp"`
	InHumidity  *float64 `parquet:"inHumidity"`
	OutHumidity *float64 `parquet:"outHumidity"`
	WindSpeed   *float64 `parquet:"windSpeed"`
	WindDir     *float64 `parquet:"windDir"`
	WindGust    *float64 `parquet:"windGust"`
	WindGustDir *float64 `parquet:"windGustDir"`
	RainRate    *float64 `parquet:"rainRate"`
	Rain        *float64 `parquet:"rain"`
	Dewpoint    *float64 `parquet:"dewpoint"`
	Windchill   *float64 `parquet:"windchill"`
	Heatindex   *float64 `parquet:"heatindex"`
}

// legacyRecord is the single-station (3.0.0) row schema: identical except
// that no station column exists.
type legacyRecord struct {
	Time        int64    `parquet:"time"`
	Barometer   *float64 `parquet:"barometer"`
	Pressure    *float64 `parquet:"pressure"`
	Altimeter   *float64 `parquet:"altimeter"`
	InTemp      *float64 `parquet:"inTemp"`
	OutTemp     *float64 `parquet:"outTemp"`
	InHumidity  *float64 `parquet:"inHumidity"`
	OutHumidity *float64 `parquet:"outHumidity"`
	WindSpeed   *float64 `parquet:"windSpeed"`
	WindDir     *float64 `parquet:"windDir"`
	WindGust    *float64 `parquet:"windGust"`
	WindGustDir *float64 `parquet:"windGustDir"`
	RainRate    *float64 `parquet:"rainRate"`
	Rain        *float64 `parquet:"rain"`
	Dewpoint    *float64 `parquet:"dewpoint"`
	Windchill   *float64 `parquet:"windchill"`
	Heatindex   *float64 `parquet:"heatindex"`
}

// newRecord maps a normalized reading onto the multi-station row schema.
// The assignments follow the fixed order of domain.Fields.
func newRecord(station string, r domain.Reading) record {
	v := r.Values
	return record{
		Station:     station,
		Time:        r.Timestamp.Unix(),
		Barometer:   v[0],
		Pressure:    v[1],
		Altimeter:   v[2],
		InTemp:      v[3],
		OutTemp:     v[4],
		InHumidity:  v[5],
		OutHumidity: v[6],
		WindSpeed:   v[7],
		WindDir:     v[8],
		WindGust:    v[9],
		WindGustDir: v[10],
		RainRate:    v[11],
		Rain:        v[12],
		Dewpoint:    v[13],
		Windchill:   v[14],
		Heatindex:   v[15],
	}
}

// newLegacyRecord maps a normalized reading onto the single-station schema.
func newLegacyRecord(r domain.Reading) legacyRecord {
	v := r.Values
	return legacyRecord{
		Time:        r.Timestamp.Unix(),
		Barometer:   v[0],
		Pressure:    v[1],
		Altimeter:   v[2],
		InTemp:      v[3],
		OutTemp:     v[4],
		InHumidity:  v[5],
		OutHumidity: v[6],
		WindSpeed:   v[7],
		WindDir:     v[8],
		WindGust:    v[9],
		WindGustDir: v[10],
		RainRate:    v[11],
		Rain:        v[12],
		Dewpoint:    v[13],
		Windchill:   v[14],
		Heatindex:   v[15],
	}
}

// writeDay writes the multi-station layout: one row per reading with a
// station column, station and series attributes namespaced by station name,
// and an index_map entry pointing each station's time index at the shared
// time column.
func writeDay(path string, stations []StationData, meta map[string]string) (int, error) {
	var rows []record
	for _, st := range stations {
		indexName := "station_time_" + st.Name
		meta["index_map/"+indexName] = "time"
		addStationMetadata(meta, st.Name+"/", st, indexName)
		meta[st.Name+"/samples"] = strconv.Itoa(len(st.Readings))

		for _, r := range st.Readings {
			rows = append(rows, newRecord(st.Name, r))
		}
	}

	if err := parquet.WriteFile(path, rows, metadataOptions(meta)...); err != nil {
		return 0, fmt.Errorf("writing artifact %s: %w", path, err)
	}
	return len(rows), nil
}

// writeLegacyDay writes the single-station layout with un-namespaced
// attributes.
func writeLegacyDay(path string, st StationData, meta map[string]string) (int, error) {
	meta["index_map/station_time"] = "time"
	addStationMetadata(meta, "", st, "station_time")

	rows := make([]legacyRecord, 0, len(st.Readings))
	for _, r := range st.Readings {
		rows = append(rows, newLegacyRecord(r))
	}

	if err := parquet.WriteFile(path, rows, metadataOptions(meta)...); err != nil {
		return 0, fmt.Errorf("writing artifact %s: %w", path, err)
	}
	return len(rows), nil
}

// addStationMetadata records one station's source, geolocation, description,
// and per-series unit/axis attributes under the given key prefix. Missing
// geolocation becomes an explicit NaN sentinel and a missing description an
// empty string, matching what downstream readers expect.
func addStationMetadata(meta map[string]string, prefix string, st StationData, indexName string) {
	meta[prefix+"wview_database"] = st.DBPath
	meta[prefix+"longitude"] = formatCoord(st.Longitude)
	meta[prefix+"latitude"] = formatCoord(st.Latitude)
	meta[prefix+"description"] = st.Description

	for _, f := range domain.Fields {
		meta[prefix+f.Name+"/units"] = domain.Units[f.Quantity]
		meta[prefix+f.Name+"/axis"] = indexName
	}
}

func formatCoord(v *float64) string {
	if v == nil {
		return "NaN"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// metadataOptions converts the attribute map into writer options in a
// deterministic key order.
func metadataOptions(meta map[string]string) []parquet.WriterOption {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]parquet.WriterOption, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, parquet.KeyValueMetadata(k, meta[k]))
	}
	return opts
}
