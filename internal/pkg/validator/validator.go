package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

// ParseItemID parses a positive item id from a path segment
func ParseItemID(field, s string) (int64, error) {
	if !IsNumeric(s) {
		return 0, ValidationErrors{{Field: field, Message: "must be a positive integer"}}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ValidationErrors{{Field: field, Message: "must be a positive integer"}}
	}
	return id, nil
}

// ValidateItemIDs checks a batch of item ids
func ValidateItemIDs(field string, ids []int64) error {
	var errs ValidationErrors
	for i, id := range ids {
		if id <= 0 {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Message: "must be a positive integer"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
