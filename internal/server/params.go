package server

import (
	"net/http"
	"strconv"
)

// matchParams reads limit and min_similarity. Absent values select the
// matcher defaults (limit 0, min_similarity -1).
func matchParams(r *http.Request) (limit int, minSimilarity float64, err error) {
	q := r.URL.Query()
	minSimilarity = -1

	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			return 0, 0, &ErrValidation{Field: "limit", Message: "must be an integer between 1 and 100"}
		}
	}
	if raw := q.Get("min_similarity"); raw != "" {
		minSimilarity, err = strconv.ParseFloat(raw, 64)
		if err != nil || minSimilarity < 0 || minSimilarity > 1 {
			return 0, 0, &ErrValidation{Field: "min_similarity", Message: "must be a number between 0 and 1"}
		}
	}
	return limit, minSimilarity, nil
}

// listLimit reads an optional limit for list endpoints.
func listLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 500 {
		return 0, &ErrValidation{Field: "limit", Message: "must be an integer between 1 and 500"}
	}
	return n, nil
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
