package host

import "time"

// StageRun is the journal record of one staging pass.
type StageRun struct {
	Source   string
	Dest     string
	Files    int
	Bytes    int64
	Skipped  int
	Errors   []string
	Started  time.Time
	Duration time.Duration
}

// Negotiation is the journal record of one surface negotiation.
type Negotiation struct {
	Strategy string
	Request  string
	ConfigID int
	Config   string
	Error    string
	At       time.Time
}

// Succeeded reports whether a configuration and context were obtained.
func (n Negotiation) Succeeded() bool {
	return n.Error == ""
}

// Journal persists host history. Write failures are logged, never fatal.
type Journal interface {
	SaveStageRun(run StageRun) error
	SaveNegotiation(n Negotiation) error
}
