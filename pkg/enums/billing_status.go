package enums

import "fmt"

// BillingStatus is the settlement state of a billing record.
type BillingStatus string

const (
	BillingStatusPending   BillingStatus = "Pending"
	BillingStatusPaid      BillingStatus = "Paid"
	BillingStatusCancelled BillingStatus = "Cancelled"
)

var validBillingStatuses = []BillingStatus{
	BillingStatusPending,
	BillingStatusPaid,
	BillingStatusCancelled,
}

// String implements fmt.Stringer.
func (s BillingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BillingStatus.
func (s BillingStatus) IsValid() bool {
	for _, candidate := range validBillingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether a record may move from s to next.
// Paid and Cancelled are terminal.
func (s BillingStatus) CanTransitionTo(next BillingStatus) bool {
	if s == next {
		return true
	}
	return s == BillingStatusPending && next.IsValid()
}

// ParseBillingStatus converts the raw string to BillingStatus.
func ParseBillingStatus(value string) (BillingStatus, error) {
	for _, candidate := range validBillingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid billing status %q", value)
}
