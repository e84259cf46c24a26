package enums

import "fmt"

// RecordStatus marks catalog items, vendors and users as usable or retired.
type RecordStatus string

const (
	RecordStatusActive   RecordStatus = "Active"
	RecordStatusInactive RecordStatus = "Inactive"
)

var validRecordStatuses = []RecordStatus{
	RecordStatusActive,
	RecordStatusInactive,
}

// String implements fmt.Stringer.
func (s RecordStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RecordStatus.
func (s RecordStatus) IsValid() bool {
	for _, candidate := range validRecordStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRecordStatus converts the raw string to RecordStatus.
func ParseRecordStatus(value string) (RecordStatus, error) {
	for _, candidate := range validRecordStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", value)
}
