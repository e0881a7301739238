package models

import "time"

// RevokedToken is a ledger entry recording that the token identified by JTI
// was invalidated before its natural expiry. ExpiryHint is the token's own
// expiry time; entries past it can be purged without correctness loss.
type RevokedToken struct {
	JTI        string
	RevokedAt  time.Time
	ExpiryHint time.Time
}
