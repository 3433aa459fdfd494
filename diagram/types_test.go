package diagram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphValidate(t *testing.T) {
	nodes := []Node{{ID: "A", Label: "Start"}, {ID: "B"}, {ID: "C"}}

	tests := []struct {
		name    string
		graph   Graph
		wantErr error
		wantID  string
	}{
		{
			name:  "valid chain",
			graph: Graph{Nodes: nodes, Edges: []Edge{{From: "A", To: "B"}, {From: "B", To: "C"}}},
		},
		{
			name:    "unknown target",
			graph:   Graph{Nodes: nodes, Edges: []Edge{{From: "A", To: "Z"}}},
			wantErr: ErrUnknownNode,
			wantID:  "Z",
		},
		{
			name:    "duplicate node",
			graph:   Graph{Nodes: append(nodes, Node{ID: "B"})},
			wantErr: ErrDuplicateID,
			wantID:  "B",
		},
		{
			name:    "empty id",
			graph:   Graph{Nodes: []Node{{ID: ""}}},
			wantErr: ErrEmptyID,
		},
		{
			name: "node in sibling clusters",
			graph: Graph{Nodes: nodes, Groups: []Group{
				{ID: "one", Nodes: []string{"A", "B"}},
				{ID: "two", Nodes: []string{"B"}},
			}},
			wantErr: ErrClusterConflict,
			wantID:  "B",
		},
		{
			name: "node in parent and child cluster",
			graph: Graph{Nodes: nodes, Groups: []Group{
				{ID: "outer", Nodes: []string{"A"}, Groups: []Group{{ID: "inner", Nodes: []string{"A"}}}},
			}},
			wantErr: ErrClusterConflict,
			wantID:  "A",
		},
		{
			name: "nested clusters",
			graph: Graph{Nodes: nodes, Groups: []Group{
				{ID: "outer", Nodes: []string{"A"}, Groups: []Group{{ID: "inner", Nodes: []string{"B"}}}},
			}},
		},
		{
			name:    "unknown cluster member",
			graph:   Graph{Nodes: nodes, Groups: []Group{{ID: "g", Nodes: []string{"Q"}}}},
			wantErr: ErrUnknownNode,
			wantID:  "Q",
		},
		{
			name:    "group id shadows node",
			graph:   Graph{Nodes: nodes, Groups: []Group{{ID: "A"}}},
			wantErr: ErrDuplicateID,
			wantID:  "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.graph.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var me *ModelError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, KindGraph, me.Kind)
			assert.Equal(t, tt.wantID, me.ID)
			if tt.wantID != "" {
				assert.Contains(t, err.Error(), `"`+tt.wantID+`"`)
			}
		})
	}
}

func TestSequenceLanes(t *testing.T) {
	s := &Sequence{
		Participants: []Participant{{ID: "Carol"}, {ID: "Bob"}, {ID: "Alice"}, {ID: "Dave", Declared: true}},
		Messages: []Message{
			{From: "Bob", To: "Alice", Index: 2},
			{From: "Alice", To: "Bob", Index: 1},
		},
	}
	require.NoError(t, s.Validate())
	assert.Equal(t, []string{"Dave", "Alice", "Bob", "Carol"}, s.Lanes())

	ordered := s.Ordered()
	assert.Equal(t, "Alice", ordered[0].From)
	assert.Equal(t, "Bob", s.Messages[0].From, "Ordered must not reorder the model")
}

func TestSequenceValidate(t *testing.T) {
	s := &Sequence{
		Participants: []Participant{{ID: "Alice"}},
		Messages:     []Message{{From: "Alice", To: "Bob"}},
	}
	err := s.Validate()
	require.ErrorIs(t, err, ErrUnknownNode)
	assert.Contains(t, err.Error(), "Bob")

	s = &Sequence{
		Participants: []Participant{{ID: "Alice"}},
		Blocks:       []Block{{Kind: BlockLoop, Start: 0, End: 3}},
	}
	assert.ErrorIs(t, s.Validate(), ErrInvalidValue)

	s = &Sequence{
		Participants: []Participant{{ID: "Alice"}},
		Notes:        []Note{{Over: []string{"Eve"}, Text: "hi"}},
	}
	assert.ErrorIs(t, s.Validate(), ErrUnknownNode)
}

func TestClassAndERValidate(t *testing.T) {
	c := &Class{
		Classes:   []ClassNode{{ID: "Animal"}, {ID: "Dog"}},
		Relations: []Relation{{From: "Animal", To: "Cat", Kind: RelationInheritance, MarkerAt: EndFrom}},
	}
	assert.ErrorIs(t, c.Validate(), ErrUnknownNode)

	er := &ER{
		Entities:      []Entity{{ID: "CUSTOMER"}, {ID: "CUSTOMER"}},
		Relationships: nil,
	}
	assert.ErrorIs(t, er.Validate(), ErrDuplicateID)
}

func TestMemberString(t *testing.T) {
	tests := []struct {
		m    Member
		want string
	}{
		{Member{Visibility: VisibilityPublic, Name: "name", Type: "String"}, "+name: String"},
		{Member{Visibility: VisibilityPrivate, Name: "speak()"}, "-speak()"},
		{Member{Name: "count", Type: "int", Static: true}, "count: int$"},
		{Member{Visibility: VisibilityProtected, Name: "move()", Type: "void", Abstract: true}, "#move(): void*"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.m.String())
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"td": TopDown, "TB": TopDown, "BT": BottomUp, "lr": LeftRight, "RL": RightLeft, "": DirectionDefault} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDirection("diagonal")
	assert.Error(t, err)
	assert.True(t, LeftRight.Horizontal())
	assert.True(t, BottomUp.Reversed())
	assert.Equal(t, TopDown, DirectionDefault.Or(TopDown))
}
