package recurrence

// ExpansionOptions tunes Iterator's behavior. A plain struct of knobs,
// matching the Options style used across the module.
type ExpansionOptions struct {
	// MaxOccurrences caps the number of occurrences an Iterator will ever
	// yield, regardless of COUNT/UNTIL. It is the last-resort safety valve
	// for an unbounded rule (no COUNT, no UNTIL) that a caller drives
	// without ever supplying an upper bound.
	MaxOccurrences int
}

// DefaultExpansionOptions bounds unbounded iterators at 3650 occurrences,
// matching the core's default MaxExpansions.
var DefaultExpansionOptions = ExpansionOptions{
	MaxOccurrences: 3650,
}
