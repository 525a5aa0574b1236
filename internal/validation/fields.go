package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Year bounds accepted for certifications and similar fields.
const (
	MinYear = 1950
	MaxYear = 2030
)

// MinPhoneDigits is the minimum digit count of a usable phone number.
const MinPhoneDigits = 10

// PresentToken is the normalized form of an open-ended end date.
const PresentToken = "Present"

var (
	emailRe     = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	urlSchemeRe = regexp.MustCompile(`(?i)^https?://`)
	urlWWWRe    = regexp.MustCompile(`(?i)^www\.`)
	yearRe      = regexp.MustCompile(`^\d{4}$`)
	yearMonthRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// Email returns the lowercased address, or nil when it does not conform.
func Email(raw string, r *Report) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if !emailRe.MatchString(v) {
		r.reject("email", raw, "not a valid email address")
		return nil
	}
	v = strings.ToLower(v)
	r.accept("email", v)
	return &v
}

// Phone returns raw unchanged when it carries at least MinPhoneDigits digits.
func Phone(raw string, r *Report) *string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	digits := 0
	for _, c := range raw {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	if digits < MinPhoneDigits {
		r.reject("phone", raw, fmt.Sprintf("has %d digits, need %d", digits, MinPhoneDigits))
		return nil
	}
	r.accept("phone", raw)
	return &raw
}

// URL strips the scheme and www prefix and requires a dot and a slash in the rest.
func URL(field, raw string, r *Report) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	v = urlSchemeRe.ReplaceAllString(v, "")
	v = urlWWWRe.ReplaceAllString(v, "")
	if !strings.Contains(v, ".") || !strings.Contains(v, "/") {
		r.reject(field, raw, "URL must contain a domain and a path")
		return nil
	}
	r.accept(field, v)
	return &v
}

// Year accepts integers, integral floats and numeric strings in [MinYear, MaxYear].
func Year(field string, raw any, r *Report) *int {
	var y int
	switch v := raw.(type) {
	case nil:
		return nil
	case int:
		y = v
	case int64:
		y = int(v)
	case float64:
		if v != math.Trunc(v) {
			r.reject(field, fmt.Sprint(raw), "year is not an integer")
			return nil
		}
		y = int(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			r.reject(field, v, "year is not a number")
			return nil
		}
		y = parsed
	default:
		r.reject(field, fmt.Sprint(raw), "unsupported year type")
		return nil
	}

	if y < MinYear || y > MaxYear {
		r.reject(field, strconv.Itoa(y), fmt.Sprintf("year outside [%d, %d]", MinYear, MaxYear))
		return nil
	}
	r.accept(field, strconv.Itoa(y))
	return &y
}

// Date accepts YYYY, YYYY-MM with a month in [1, 12], or present/current/now,
// which normalize to PresentToken.
func Date(field, raw string, r *Report) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}

	switch strings.ToLower(v) {
	case "present", "current", "now":
		out := PresentToken
		r.accept(field, out)
		return &out
	}

	if yearRe.MatchString(v) {
		if !inYearRange(v) {
			r.reject(field, raw, fmt.Sprintf("year outside [%d, %d]", MinYear, MaxYear))
			return nil
		}
		r.accept(field, v)
		return &v
	}
	if m := yearMonthRe.FindStringSubmatch(v); m != nil {
		if !inYearRange(m[1]) {
			r.reject(field, raw, fmt.Sprintf("year outside [%d, %d]", MinYear, MaxYear))
			return nil
		}
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			r.accept(field, v)
			return &v
		}
		r.reject(field, raw, "month outside [1, 12]")
		return nil
	}

	r.reject(field, raw, "unrecognized date format")
	return nil
}

func inYearRange(s string) bool {
	y, err := strconv.Atoi(s)
	return err == nil && y >= MinYear && y <= MaxYear
}
