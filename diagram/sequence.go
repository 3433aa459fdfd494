package diagram

import (
	"fmt"
	"sort"
)

// Participant is a lane in a sequence diagram.
type Participant struct {
	ID    string
	Label string
	Actor bool // drawn as an actor rather than a box in vector output
	// Declared marks participants introduced by an explicit declaration.
	// Declared participants take the leftmost lanes in declaration order.
	Declared bool
}

// Message is a horizontal arrow between two lanes.
type Message struct {
	From  string
	To    string
	Label string
	Line  LineStyle // LineSolid for calls, LineDashed for replies
	Head  Head
	// Index orders messages top to bottom. Messages with equal Index keep slice order.
	Index      int
	Activate   bool // activates the target after this message
	Deactivate bool // deactivates the source after this message
}

// NotePosition places a note relative to its participants.
type NotePosition int

const (
	NoteRightOf NotePosition = iota
	NoteLeftOf
	NoteOver
)

// Note is a text box anchored to one or two participants.
type Note struct {
	Over     []string
	Position NotePosition
	Text     string
	// After is the number of messages that precede the note.
	After int
}

// BlockKind names a combined fragment.
type BlockKind string

const (
	BlockLoop     BlockKind = "loop"
	BlockAlt      BlockKind = "alt"
	BlockOpt      BlockKind = "opt"
	BlockPar      BlockKind = "par"
	BlockCritical BlockKind = "critical"
	BlockBreak    BlockKind = "break"
	BlockRect     BlockKind = "rect"
)

// Divider splits a block into sections (else / and branches).
type Divider struct {
	Before int // index of the first message in the new section
	Label  string
}

// Block frames the messages in [Start, End).
type Block struct {
	Kind     BlockKind
	Label    string
	Start    int
	End      int
	Dividers []Divider
}

// Sequence is a sequence diagram.
type Sequence struct {
	Participants []Participant
	Messages     []Message
	Notes        []Note
	Blocks       []Block
}

func (*Sequence) Kind() Kind { return KindSequence }
func (*Sequence) sealed()    {}

// Validate checks participant ids and that every message and note refers to a declared participant.
func (s *Sequence) Validate() error {
	ids := newIDIndex(KindSequence, "participant", len(s.Participants))
	for i, p := range s.Participants {
		if err := ids.add(p.ID, i); err != nil {
			return err
		}
	}
	for i, m := range s.Messages {
		if err := ids.require(m.From, fmt.Sprintf("message %d source", i)); err != nil {
			return err
		}
		if err := ids.require(m.To, fmt.Sprintf("message %d target", i)); err != nil {
			return err
		}
	}
	for i, n := range s.Notes {
		if len(n.Over) == 0 {
			return modelErr(KindSequence, "", fmt.Sprintf("note %d", i), ErrEmptyID)
		}
		for _, id := range n.Over {
			if err := ids.require(id, fmt.Sprintf("note %d", i)); err != nil {
				return err
			}
		}
	}
	for i, b := range s.Blocks {
		if b.Start < 0 || b.End < b.Start || b.End > len(s.Messages) {
			return modelErr(KindSequence, string(b.Kind), fmt.Sprintf("block %d range", i), ErrInvalidValue)
		}
	}
	return nil
}

// Ordered returns the messages sorted by Index, ties kept in slice order.
func (s *Sequence) Ordered() []Message {
	out := make([]Message, len(s.Messages))
	copy(out, s.Messages)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Lanes returns participant ids in lane order: declared participants first,
// then the rest by first appearance in the ordered messages, then any never used.
func (s *Sequence) Lanes() []string {
	lanes := make([]string, 0, len(s.Participants))
	placed := make(map[string]bool, len(s.Participants))
	add := func(id string) {
		if !placed[id] {
			placed[id] = true
			lanes = append(lanes, id)
		}
	}
	for _, p := range s.Participants {
		if p.Declared {
			add(p.ID)
		}
	}
	for _, m := range s.Ordered() {
		add(m.From)
		add(m.To)
	}
	for _, p := range s.Participants {
		add(p.ID)
	}
	return lanes
}

// Participant returns the participant with the given id.
func (s *Sequence) Participant(id string) (Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}
