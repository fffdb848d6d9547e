package chat

import (
	"sort"

	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

type EntryState int

const (
	// Pending entries were added by this client's own send and not yet echoed by the feed.
	Pending EntryState = iota
	Confirmed
)

type Entry struct {
	Message model.Message
	State   EntryState
}

// Timeline is the ordered, id-deduplicated message sequence of one conversation.
type Timeline struct {
	entries []Entry
	byID    map[string]model.Message
}

func NewTimeline() *Timeline {
	return &Timeline{
		byID: make(map[string]model.Message),
	}
}

// Insert merges msg and reports whether the timeline changed. A known id is a
// no-op, except that a Confirmed arrival promotes a Pending entry.
func (t *Timeline) Insert(msg model.Message, state EntryState) bool {
	if known, ok := t.byID[msg.ID]; ok {
		i := t.search(known)
		if i < len(t.entries) && t.entries[i].Message.ID == msg.ID && t.entries[i].State == Pending && state == Confirmed {
			t.entries[i].State = Confirmed
			return true
		}
		return false
	}

	i := t.search(msg)
	t.entries = append(t.entries, Entry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = Entry{Message: msg, State: state}
	t.byID[msg.ID] = msg

	return true
}

func (t *Timeline) Len() int {
	return len(t.entries)
}

func (t *Timeline) Has(id string) bool {
	_, ok := t.byID[id]
	return ok
}

func (t *Timeline) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Timeline) Messages() model.MessageList {
	out := make(model.MessageList, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Message
	}
	return out
}

// search returns the first index whose message does not sort before msg.
func (t *Timeline) search(msg model.Message) int {
	return sort.Search(len(t.entries), func(i int) bool {
		return !t.entries[i].Message.Before(msg)
	})
}
