package http

import (
	"net/http"
	"strconv"
	"time"

	"stayworks/pkg/config"
	apperrors "stayworks/pkg/errors"
)

const dateLayout = "2006-01-02"

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDate parses a required YYYY-MM-DD query parameter.
func ExtractDate(r *http.Request, param string) (time.Time, error) {
	s := r.URL.Query().Get(param)
	if s == "" {
		return time.Time{}, apperrors.InvalidInput("missing required query parameter: " + param)
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + param + " parameter, must be YYYY-MM-DD: " + s)
	}
	return d, nil
}
