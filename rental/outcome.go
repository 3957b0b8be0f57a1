package rental

// Outcome tells how an interactive operation ended.
type Outcome int

const (
	// OutcomeCommitted means the change was applied.
	OutcomeCommitted Outcome = iota
	// OutcomeDiscarded means the operator declined the final confirmation.
	OutcomeDiscarded
	// OutcomeCancelled means the operator aborted at a prompt.
	OutcomeCancelled
	// OutcomeEmpty means there was nothing to commit.
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeEmpty:
		return "empty"
	}
	return "unknown"
}

// Changed reports whether the operation mutated state that must be saved.
func (o Outcome) Changed() bool { return o == OutcomeCommitted }

// Rules holds the eligibility thresholds of the rental desk.
type Rules struct {
	MinInsuredAge  int
	MinCustomerAge int
}

// DefaultRules are the thresholds used when none are configured.
var DefaultRules = Rules{MinInsuredAge: 21, MinCustomerAge: 18}
