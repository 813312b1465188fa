package controller

import (
	"context"
	"errors"
	"time"

	"climate-server/internal/modules/climate/types"
)

const trailingWindowDays = 365

const (
	msgInvalidDate    = "Invalid date format. Please use YYYY-MM-DD."
	msgEndBeforeStart = "End date must be after start date."
	msgNoData         = "No data found for the specified date range."
	msgMissingStation = "Please provide a station ID"
	msgTimedOut       = "timed out waiting for the data store"
)

var errInvalidDate = errors.New(msgInvalidDate)

// parseDate accepts a zero-padded YYYY-MM-DD calendar date only.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return t, nil
}

// trailingYear returns the inclusive window ending at the latest measurement
// date and starting 365 days before it.
func (c *climateControllerImpl) trailingYear(ctx context.Context) (time.Time, time.Time, error) {
	end, err := c.repository.MaxMeasurementDate(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return end.AddDate(0, 0, -trailingWindowDays), end, nil
}
