package domain

// CauseKind tells a remote fetch error apart from a rule violation.
type CauseKind string

// Cause kinds.
const (
	CauseRemote CauseKind = "remote"
	CauseRule   CauseKind = "rule"
)

// Cause is one problem found while validating or resolving a record.
type Cause struct {
	Kind    CauseKind
	Message string
}

// ValidationOutcome collects every cause found in one pass.
// Causes only accumulate; nothing is ever overwritten.
type ValidationOutcome struct {
	Causes []Cause
}

// IsValid returns true if no cause was recorded.
func (o ValidationOutcome) IsValid() bool {
	return len(o.Causes) == 0
}

// Add appends a rule cause.
func (o *ValidationOutcome) Add(message string) {
	o.Causes = append(o.Causes, Cause{Kind: CauseRule, Message: message})
}

// AddRemote appends a remote cause.
func (o *ValidationOutcome) AddRemote(message string) {
	o.Causes = append(o.Causes, Cause{Kind: CauseRemote, Message: message})
}

// Merge appends every cause of other, each message prefixed when prefix is set.
func (o *ValidationOutcome) Merge(prefix string, other ValidationOutcome) {
	for _, c := range other.Causes {
		if prefix != "" {
			c.Message = prefix + c.Message
		}
		o.Causes = append(o.Causes, c)
	}
}

// Messages returns the flattened cause messages.
func (o ValidationOutcome) Messages() []string {
	out := make([]string, 0, len(o.Causes))
	for _, c := range o.Causes {
		out = append(out, c.Message)
	}
	return out
}

// HasRemote returns true if any cause came from a remote fetch error.
func (o ValidationOutcome) HasRemote() bool {
	for _, c := range o.Causes {
		if c.Kind == CauseRemote {
			return true
		}
	}
	return false
}
