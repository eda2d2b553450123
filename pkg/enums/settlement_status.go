package enums

// SettlementStatus maps to the settlement_status enum in Postgres.
type SettlementStatus string

const (
	SettlementStatusCompleted SettlementStatus = "completed"
	SettlementStatusFailed    SettlementStatus = "failed"
)

// IsValid reports whether the value matches the canonical settlement status enum.
func (s SettlementStatus) IsValid() bool {
	return s == SettlementStatusCompleted || s == SettlementStatusFailed
}
