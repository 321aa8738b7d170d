package domain

import (
	"encoding/json"

	"github.com/romshark/todosim/pkg/broadcast"
)

// Kind identifies the type of a broadcast change event.
type Kind string

const (
	KindCreateList Kind = "createList"
	KindDeleteList Kind = "deleteList"
	KindAddItem    Kind = "addItem"
	KindRemoveItem Kind = "removeItem"
	KindMoveItem   Kind = "moveItem"
	KindEditItem   Kind = "editItem"
)

// Event describes one successfully committed store mutation.
type Event interface{ Kind() Kind }

type EventCreateList struct {
	Name  string     `json:"name"`
	Items []TodoItem `json:"items"`
}

func (EventCreateList) Kind() Kind { return KindCreateList }

type EventDeleteList struct {
	Index int `json:"index"`
}

func (EventDeleteList) Kind() Kind { return KindDeleteList }

type EventAddItem struct {
	ListIndex int      `json:"listIndex"`
	Item      TodoItem `json:"item"`
}

func (EventAddItem) Kind() Kind { return KindAddItem }

type EventRemoveItem struct {
	ListIndex int `json:"listIndex"`
	ItemIndex int `json:"itemIndex"`
}

func (EventRemoveItem) Kind() Kind { return KindRemoveItem }

type EventMoveItem struct {
	ListIndex   int `json:"listIndex"`
	SourceIndex int `json:"sourceIndex"`
	DestIndex   int `json:"destIndex"`
}

func (EventMoveItem) Kind() Kind { return KindMoveItem }

type EventEditItem struct {
	ListIndex int      `json:"listIndex"`
	ItemIndex int      `json:"itemIndex"`
	NewValue  TodoItem `json:"newValue"`
}

func (EventEditItem) Kind() Kind { return KindEditItem }

// SequencedMessage is the envelope delivered to broadcast listeners.
type SequencedMessage = broadcast.Sequenced[Event]

// Publisher announces committed change events to interested listeners.
// *broadcast.Broadcaster[Event] implements it.
type Publisher interface {
	Publish(Event) (notified int, seq int64)
}

// EncodeMessage renders m in the wire shape
// {"sequenceId":...,"type":...,"message":...}.
func EncodeMessage(m SequencedMessage) ([]byte, error) {
	return json.Marshal(struct {
		SequenceID int64 `json:"sequenceId"`
		Type       Kind  `json:"type"`
		Message    Event `json:"message"`
	}{m.SequenceID, m.Event.Kind(), m.Event})
}
