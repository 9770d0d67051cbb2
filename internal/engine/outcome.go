package engine

// Outcome is the terminal result of dispatching one inbound event.
type Outcome string

const (
	OutcomeDelivered      Outcome = "delivered"
	OutcomeDuplicate      Outcome = "suppressed_duplicate"
	OutcomeUnknownTenant  Outcome = "suppressed_unknown_tenant"
	OutcomeInactiveTenant Outcome = "suppressed_inactive_tenant"
	OutcomeNoMatch        Outcome = "suppressed_no_match"
	OutcomeQuotaExceeded  Outcome = "suppressed_quota_exceeded"
	OutcomeFailedSend     Outcome = "failed_send"
)

// Delivered reports whether the outcome consumed a send.
func (o Outcome) Delivered() bool {
	return o == OutcomeDelivered
}
