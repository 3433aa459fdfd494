package diagram

import (
	"fmt"
	"strings"
)

// Visibility is a UML member visibility marker.
type Visibility string

const (
	VisibilityNone      Visibility = ""
	VisibilityPublic    Visibility = "+"
	VisibilityPrivate   Visibility = "-"
	VisibilityProtected Visibility = "#"
	VisibilityPackage   Visibility = "~"
)

// Member is an attribute or method of a class.
type Member struct {
	Visibility Visibility
	Name       string // methods include their parameter list, e.g. "speak()"
	Type       string
	Static     bool
	Abstract   bool
}

// String renders the member as "+name: Type". Static members are
// suffixed with '$' and abstract members with '*', as Mermaid writes them.
func (m Member) String() string {
	var b strings.Builder
	b.WriteString(string(m.Visibility))
	b.WriteString(m.Name)
	if m.Type != "" {
		b.WriteString(": ")
		b.WriteString(m.Type)
	}
	if m.Static {
		b.WriteByte('$')
	}
	if m.Abstract {
		b.WriteByte('*')
	}
	return b.String()
}

// ClassNode is one class box.
type ClassNode struct {
	ID         string
	Label      string // defaults to ID when empty
	Annotation string // e.g. "interface", shown as «interface»
	Attributes []Member
	Methods    []Member
}

// Title returns the display name of the class.
func (c ClassNode) Title() string {
	if c.Label != "" {
		return c.Label
	}
	return c.ID
}

// RelationKind is a UML relationship type.
type RelationKind int

const (
	RelationAssociation RelationKind = iota
	RelationInheritance
	RelationRealization
	RelationComposition
	RelationAggregation
	RelationDependency
)

func (k RelationKind) String() string {
	switch k {
	case RelationAssociation:
		return "association"
	case RelationInheritance:
		return "inheritance"
	case RelationRealization:
		return "realization"
	case RelationComposition:
		return "composition"
	case RelationAggregation:
		return "aggregation"
	case RelationDependency:
		return "dependency"
	default:
		return fmt.Sprintf("relation(%d)", int(k))
	}
}

// Hierarchical reports whether the relation places From above To
// (the marker end is the parent).
func (k RelationKind) Hierarchical() bool {
	return k == RelationInheritance || k == RelationRealization
}

// End selects one side of a relation.
type End int

const (
	EndTo End = iota
	EndFrom
)

// Relation links two classes. `Animal <|-- Dog` is
// Relation{From: "Animal", To: "Dog", Kind: RelationInheritance, MarkerAt: EndFrom}.
type Relation struct {
	From            string
	To              string
	Kind            RelationKind
	MarkerAt        End
	Label           string
	FromCardinality string
	ToCardinality   string
}

// Class is a class diagram.
type Class struct {
	Direction Direction
	Classes   []ClassNode
	Relations []Relation
}

func (*Class) Kind() Kind { return KindClass }
func (*Class) sealed()    {}

// Validate checks class ids and relation endpoints.
func (c *Class) Validate() error {
	ids := newIDIndex(KindClass, "class", len(c.Classes))
	for i, cls := range c.Classes {
		if err := ids.add(cls.ID, i); err != nil {
			return err
		}
	}
	for i, r := range c.Relations {
		if err := ids.require(r.From, fmt.Sprintf("relation %d source", i)); err != nil {
			return err
		}
		if err := ids.require(r.To, fmt.Sprintf("relation %d target", i)); err != nil {
			return err
		}
	}
	return nil
}
