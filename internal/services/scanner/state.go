package scanner

// State lifecycle state of the scanner.
type State int32

const (
	// StateIdle waiting for the next tick or manual trigger.
	StateIdle State = iota
	// StateScanning a scan is in flight.
	StateScanning
	// StateStopped terminal; no further scans are started or published.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
