package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a custom type for handling free-form JSON/JSONB columns
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, m)
}

// Coordinate is a single {lat, lng} point in a JSON column
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CoordinateList is a custom type for JSON columns holding an ordered path
type CoordinateList []Coordinate

// Value implements the driver.Valuer interface
func (l CoordinateList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *CoordinateList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, l)
}

// Waypoint is a labelled point inside a trip pack
type Waypoint struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
}

// WaypointList is a custom type for the trip_packs.waypoints JSON column
type WaypointList []Waypoint

// Value implements the driver.Valuer interface
func (l WaypointList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *WaypointList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, l)
}

// StringList is a custom type for JSON columns holding an array of strings
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, l)
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type for JSON column: %T", src)
	}
}
