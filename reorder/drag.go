package reorder

import (
	"errors"
	"strings"
)

// EventType of the browser drag protocol
type EventType int

const (
	DragStart EventType = iota
	DragOver
	DragEnd
	DragCancel
)

// ErrUnknownEvent godoc
var ErrUnknownEvent = errors.New("unknown drag event")

var eventNames = map[string]EventType{
	"drag_start":  DragStart,
	"drag_over":   DragOver,
	"drag_end":    DragEnd,
	"drag_cancel": DragCancel,
}

// ParseEventType godoc
func ParseEventType(name string) (EventType, error) {
	if t, ok := eventNames[strings.ToLower(name)]; ok {
		return t, nil
	}
	return 0, ErrUnknownEvent
}

func (t EventType) String() string {
	for name, v := range eventNames {
		if v == t {
			return name
		}
	}
	return "unknown"
}

// Event of the drag protocol. For DragEnd an empty ID means the item was
// released outside of any drop target.
type Event struct {
	Type EventType
	ID   string
}

// DragState is the state between a DragStart and its DragEnd or DragCancel
type DragState struct {
	Active string
	Over   string
}

// Drop is the outcome of a completed drag
type Drop struct {
	Source string
	Target string
}

// Reduce applies an event to the drag state. A Drop is returned only when a
// drag ends over a target other than the dragged item itself.
func Reduce(state DragState, ev Event) (DragState, *Drop) {
	switch ev.Type {
	case DragStart:
		return DragState{Active: ev.ID}, nil
	case DragOver:
		if state.Active == "" {
			return state, nil
		}
		state.Over = ev.ID
		return state, nil
	case DragEnd:
		if state.Active == "" || ev.ID == "" || ev.ID == state.Active {
			return DragState{}, nil
		}
		return DragState{}, &Drop{Source: state.Active, Target: ev.ID}
	default:
		return DragState{}, nil
	}
}

// Replay folds a sequence of events and returns the last completed drop
func Replay(events []Event) *Drop {
	var (
		state DragState
		last  *Drop
	)
	for _, ev := range events {
		var drop *Drop
		state, drop = Reduce(state, ev)
		if drop != nil {
			last = drop
		}
	}
	return last
}
