package domain

// ProviderStatus is the moderation status of a provider record
type ProviderStatus string

const (
	ProviderPending  ProviderStatus = "pending"
	ProviderApproved ProviderStatus = "approved"
	ProviderRejected ProviderStatus = "rejected"
)

// ParseProviderStatus returns the status named by s or ErrInvalidStatus.
func ParseProviderStatus(s string) (ProviderStatus, error) {
	switch st := ProviderStatus(s); st {
	case ProviderPending, ProviderApproved, ProviderRejected:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// CanTransition reports whether an admin may move a record from one status to another.
// Any moderation outcome may be replaced by another; a record never returns to pending.
func CanTransition(from, to ProviderStatus) error {
	if _, err := ParseProviderStatus(string(to)); err != nil {
		return err
	}
	if to == ProviderPending {
		return ErrInvalidTransition
	}
	return nil
}

// ComplaintStatus is the handling status of a complaint
type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "pending"
	ComplaintResolved ComplaintStatus = "resolved"
)
