package types

import "time"

// DateLayout is the wire and storage format for observation dates.
const DateLayout = time.DateOnly

// Station is one row of the station table as exposed by the API. Name is
// nil when the store holds NULL.
type Station struct {
	ID   string  `json:"station"`
	Name *string `json:"name"`
}

// Precipitation is a dated precipitation reading; Value is nil when the
// store holds NULL.
type Precipitation struct {
	Date  string
	Value *float64
}

// TemperatureObservation is one dated tobs reading for a station.
type TemperatureObservation struct {
	Date  string
	Value float64
}

// TemperatureStats holds min/avg/max tobs over a date range.
type TemperatureStats struct {
	Min float64
	Avg float64
	Max float64
}

// StationRecord and MeasurementRecord describe the columns the service
// reads. They are checked against the store at startup and never written.
type StationRecord struct {
	Station   string   `gorm:"column:station"`
	Name      string   `gorm:"column:name"`
	Latitude  *float64 `gorm:"column:latitude"`
	Longitude *float64 `gorm:"column:longitude"`
	Elevation *float64 `gorm:"column:elevation"`
}

func (StationRecord) TableName() string { return "station" }

type MeasurementRecord struct {
	Station string   `gorm:"column:station"`
	Date    string   `gorm:"column:date"`
	Prcp    *float64 `gorm:"column:prcp"`
	Tobs    float64  `gorm:"column:tobs"`
}

func (MeasurementRecord) TableName() string { return "measurement" }

// RecordColumns names the fields of Record that must exist in the store.
type RecordColumns struct {
	Record  any
	Columns []string
}

// RequiredColumns is checked in order at startup. Geographic station
// attributes are optional and not listed.
var RequiredColumns = []RecordColumns{
	{Record: &StationRecord{}, Columns: []string{"Station", "Name"}},
	{Record: &MeasurementRecord{}, Columns: []string{"Station", "Date", "Prcp", "Tobs"}},
}

// TemperatureSummary is the body of the date-range stats routes.
type TemperatureSummary struct {
	StartDate string  `json:"Start Date"`
	EndDate   string  `json:"End Date"`
	TMin      float64 `json:"TMIN"`
	TAvg      float64 `json:"TAVG"`
	TMax      float64 `json:"TMAX"`
}
