package feed

import "github.com/umputun/feedkeeper/pkg/domain"

// State is the health state of a feed
type State int

// enum of feed health states
const (
	StateActive State = iota
	StateDisabled
)

func (s State) String() string {
	if s == StateDisabled {
		return "disabled"
	}
	return "active"
}

// StateOf returns the health state stored on the feed
func StateOf(f domain.Feed) State {
	if f.IsActive {
		return StateActive
	}
	return StateDisabled
}

// Event is the kind of fetch outcome that drives a transition
type Event int

// enum of fetch outcome events
const (
	EventItems Event = iota
	EventEmpty
	EventFatal
	EventTransient
)

func (e Event) String() string {
	switch e {
	case EventItems:
		return "items"
	case EventEmpty:
		return "empty"
	case EventFatal:
		return "fatal"
	default:
		return "transient"
	}
}

// Outcome is the result of a single feed fetch
type Outcome struct {
	Items int
	Err   *FetchError
}

// Event maps the outcome to its transition event
func (o Outcome) Event() Event {
	switch {
	case o.Err != nil && Classify(o.Err) == Fatal:
		return EventFatal
	case o.Err != nil:
		return EventTransient
	case o.Items == 0:
		return EventEmpty
	default:
		return EventItems
	}
}

// Audit is the content of the FeedError record a transition emits
type Audit struct {
	Code    ErrorCode
	Message string
}

// Transition describes what has to happen to a feed after a fetch.
// Touching last_fetched_at is implied for every transition.
type Transition struct {
	Event   Event
	Next    State
	Upsert  bool   // persist fetched items
	Disable bool   // flip is_active to false
	Audit   *Audit // FeedError to record, nil if none
}

// Next computes the transition for a feed in the given state after a fetch outcome.
// DISABLED has no outgoing transition.
func Next(state State, out Outcome) Transition {
	ev := out.Event()
	tr := Transition{Event: ev, Next: state}
	if state == StateDisabled {
		return tr
	}

	switch ev {
	case EventItems:
		tr.Upsert = true
	case EventEmpty:
		tr.Next, tr.Disable = StateDisabled, true
		tr.Audit = &Audit{Code: CodeNoItems, Message: "feed returned no items"}
	case EventFatal:
		tr.Next, tr.Disable = StateDisabled, true
		tr.Audit = &Audit{Code: out.Err.Code, Message: out.Err.Err.Error()}
	case EventTransient:
	}
	return tr
}
