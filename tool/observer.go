package tool

import "time"

// ObservationKind distinguishes the registry operations reported to observers.
type ObservationKind string

const (
	ObservationValidate ObservationKind = "validate"
	ObservationExecute  ObservationKind = "execute"
)

// Observation is one registry-operation outcome reported to an Observer.
type Observation struct {
	Kind         ObservationKind
	Tool         string
	InvocationID string
	Success      bool
	ErrorCode    string
	Duration     time.Duration
}

// Observer receives registry-operation observations. Implementations must
// not block; the manager calls them synchronously.
type Observer interface {
	Observe(obs Observation)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(obs Observation)

// Observe implements Observer.
func (f ObserverFunc) Observe(obs Observation) {
	f(obs)
}
