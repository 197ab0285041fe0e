package recur

// Params defines the configurable limits of the instance generator.
type Params struct {
	// MaxInstancesPerCall is the hard cap on instances produced by a single
	// Generate call, guarding against runaway expansion from a mis-specified
	// or effectively infinite horizon.
	MaxInstancesPerCall int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MaxInstancesPerCall: 100,
	}
}
