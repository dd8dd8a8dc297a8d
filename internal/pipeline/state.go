package pipeline

// State represents a phase in the batch generation lifecycle
type State string

const (
	StateValidating         State = "VALIDATING"
	StateGenerating         State = "GENERATING"
	StateRendering          State = "RENDERING"
	StateMerging            State = "MERGING"
	StateCompleted          State = "COMPLETED"
	StatePartiallyCompleted State = "PARTIALLY_COMPLETED"
	StateFailed             State = "FAILED"
)

var validStates = map[State]bool{
	StateValidating:         true,
	StateGenerating:         true,
	StateRendering:          true,
	StateMerging:            true,
	StateCompleted:          true,
	StatePartiallyCompleted: true,
	StateFailed:             true,
}

var terminalStates = map[State]bool{
	StateCompleted:          true,
	StatePartiallyCompleted: true,
	StateFailed:             true,
}

// IsTerminal returns true if no further transitions are allowed
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a known lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// Trigger represents an event that advances the batch lifecycle
type Trigger string

const (
	TriggerStartGeneration Trigger = "START_GENERATION"
	TriggerStartRendering  Trigger = "START_RENDERING"
	TriggerStartMerge      Trigger = "START_MERGE"
	TriggerComplete        Trigger = "COMPLETE"
	TriggerCompletePartial Trigger = "COMPLETE_PARTIAL"
	TriggerFail            Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
