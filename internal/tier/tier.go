package tier

import "strings"

// Tier is a subscription level.
type Tier string

const (
	Free     Tier = "free"
	Monthly  Tier = "monthly"
	Yearly   Tier = "yearly"
	Lifetime Tier = "lifetime"
)

// Parse maps a stored tier string onto a known Tier.
func Parse(raw string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case Free:
		return Free, true
	case Monthly:
		return Monthly, true
	case Yearly:
		return Yearly, true
	case Lifetime:
		return Lifetime, true
	default:
		return Free, false
	}
}

// Paid reports whether t unlocks the pro features.
func (t Tier) Paid() bool {
	switch t {
	case Monthly, Yearly, Lifetime:
		return true
	default:
		return false
	}
}

func (t Tier) String() string {
	return string(t)
}

// UserKey is the subscription lookup key for an identity:
// the lower-cased email when present, else the subject id.
func UserKey(subject, email string) string {
	if e := strings.ToLower(strings.TrimSpace(email)); e != "" {
		return e
	}
	return strings.TrimSpace(subject)
}
