package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ChielvanV/BugBeheer/internal/domain"
)

// BugInput carries the raw client payload for create and update. Pointer
// fields distinguish "omitted" from "set to empty"; impact, likelihood and
// completedAt stay untyped because clients send them in whatever shape their
// form state happens to hold.
type BugInput struct {
	Ticket      *string `json:"ticket"`
	Description *string `json:"description"`
	JiraLink    *string `json:"jiraLink"`
	Impact      any     `json:"impact"`
	Likelihood  any     `json:"likelihood"`
	Label       *string `json:"label"`
	Reference   *bool   `json:"reference"`
	CompletedAt any     `json:"completedAt"`
}

// coerceScale turns an arbitrary value into a 1..5 scale. Non-numeric input
// defaults to 1 rather than failing; numeric input outside the scale is
// clamped.
func coerceScale(v any) int {
	n, ok := toNumber(v)
	if !ok {
		return 1
	}
	i := int(n)
	if i < 1 {
		return 1
	}
	if i > 5 {
		return 5
	}
	return i
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		n, err := x.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return n, err == nil
	}
	return 0, false
}

// coerceTimestamp validates an explicitly supplied completedAt value as a
// millisecond epoch. Unlike the scales there is no silent default here: a
// non-numeric timestamp is a validation error.
func coerceTimestamp(v any) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := toNumber(v)
	if !ok {
		return nil, fmt.Errorf("%w: completedAt must be a timestamp", domain.ErrValidation)
	}
	ms := int64(n)
	return &ms, nil
}

// normalizeOptional trims an optional text field, mapping whitespace-only
// input to absent.
func normalizeOptional(s string) string { return strings.TrimSpace(s) }

func validateDescription(s string) (string, error) {
	d := strings.TrimSpace(s)
	if d == "" {
		return "", fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	return d, nil
}

func validateLabel(s string) (domain.Label, error) {
	l := domain.Label(strings.TrimSpace(s))
	if l == "" {
		return "", nil
	}
	if !domain.ValidLabel(l) {
		return "", fmt.Errorf("%w: unknown label %q", domain.ErrValidation, s)
	}
	return l, nil
}
