package srs

// DefaultMaxRepresentableStep is the largest repetition step whose interval
// (2^step days) still yields a valid timestamp. 2^40 days is roughly three
// billion years; beyond ~2^46 days time.Time arithmetic overflows.
const DefaultMaxRepresentableStep int32 = 40

// Params defines all configurable parameters for the review schedule.
type Params struct {
	// MaxRepresentableStep bounds the repetition step that RecordSuccess may
	// produce. It is not a learning cap: the schedule keeps doubling up to the
	// point where the next review date can no longer be represented.
	MaxRepresentableStep int32
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MaxRepresentableStep: DefaultMaxRepresentableStep,
	}
}
