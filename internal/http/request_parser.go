package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finboard/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// errBadRequest marks malformed requests that never reached validation.
var errBadRequest = errors.New("bad request")

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams reads year and month from the query, defaulting each to
// the month containing now.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	p := MonthParams{Year: now.Year(), Month: int(now.Month())}
	var err error
	if p.Year, err = intParam(query, "year", p.Year); err != nil {
		return MonthParams{}, err
	}
	if p.Month, err = intParam(query, "month", p.Month); err != nil {
		return MonthParams{}, err
	}
	if p.Month < 1 || p.Month > 12 {
		return MonthParams{}, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
	}
	if p.Year < 1970 || p.Year > 9999 {
		return MonthParams{}, &core.ValidationError{Field: "year", Err: fmt.Errorf("year %d out of range", p.Year)}
	}
	return p, nil
}

// ParseYearParam reads year from the query, defaulting to now's year.
func ParseYearParam(query url.Values, now time.Time) (int, error) {
	p, err := ParseMonthParams(url.Values{"year": query["year"]}, now)
	if err != nil {
		return 0, err
	}
	return p.Year, nil
}

// ParseDateParam parses an optional YYYY-MM-DD query value. Empty yields
// the zero Date.
func ParseDateParam(query url.Values, key string) (core.Date, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: key, Err: fmt.Errorf("expected YYYY-MM-DD, got %q", v)}
	}
	return d, nil
}

func intParam(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &core.ValidationError{Field: key, Err: fmt.Errorf("not a number: %q", v)}
	}
	return n, nil
}

// decodeJSON reads a single JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errBadRequest)
	}
	return nil
}
