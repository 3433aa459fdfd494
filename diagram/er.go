package diagram

import (
	"fmt"
	"strings"
)

// Cardinality is one side of an ER relationship in crow's-foot notation.
type Cardinality int

const (
	ExactlyOne Cardinality = iota // ||
	ZeroOrOne                     // |o
	OneOrMore                     // }|
	ZeroOrMore                    // o{
)

func (c Cardinality) String() string {
	switch c {
	case ExactlyOne:
		return "one"
	case ZeroOrOne:
		return "zero-one"
	case OneOrMore:
		return "many"
	case ZeroOrMore:
		return "zero-many"
	default:
		return fmt.Sprintf("cardinality(%d)", int(c))
	}
}

// Key is an attribute key marker.
type Key string

const (
	KeyPrimary Key = "PK"
	KeyForeign Key = "FK"
	KeyUnique  Key = "UK"
)

// Attribute is a column of an entity.
type Attribute struct {
	Type    string
	Name    string
	Keys    []Key
	Comment string
}

// KeyString joins the attribute's keys with commas.
func (a Attribute) KeyString() string {
	keys := make([]string, len(a.Keys))
	for i, k := range a.Keys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ",")
}

// Entity is one ER box.
type Entity struct {
	ID         string
	Label      string
	Attributes []Attribute
}

// Title returns the display name of the entity.
func (e Entity) Title() string {
	if e.Label != "" {
		return e.Label
	}
	return e.ID
}

// Relationship links two entities. `CUSTOMER ||--o{ ORDER : places` is
// Relationship{From: "CUSTOMER", To: "ORDER", FromCardinality: ExactlyOne,
// ToCardinality: ZeroOrMore, Label: "places", Identifying: true}.
type Relationship struct {
	From            string
	To              string
	FromCardinality Cardinality
	ToCardinality   Cardinality
	Label           string
	Identifying     bool // identifying relationships draw solid, others dashed
}

// ER is an entity-relationship diagram.
type ER struct {
	Direction     Direction
	Entities      []Entity
	Relationships []Relationship
}

func (*ER) Kind() Kind { return KindER }
func (*ER) sealed()    {}

// Validate checks entity ids and relationship endpoints.
func (d *ER) Validate() error {
	ids := newIDIndex(KindER, "entity", len(d.Entities))
	for i, e := range d.Entities {
		if err := ids.add(e.ID, i); err != nil {
			return err
		}
	}
	for i, r := range d.Relationships {
		if err := ids.require(r.From, fmt.Sprintf("relationship %d source", i)); err != nil {
			return err
		}
		if err := ids.require(r.To, fmt.Sprintf("relationship %d target", i)); err != nil {
			return err
		}
	}
	return nil
}
