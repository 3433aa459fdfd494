package diagram

import "fmt"

// idIndex records declared ids and rejects empty or repeated ones.
type idIndex struct {
	kind Kind
	what string
	seen map[string]int
}

func newIDIndex(k Kind, what string, capacity int) *idIndex {
	return &idIndex{kind: k, what: what, seen: make(map[string]int, capacity)}
}

// add registers id as the i-th declaration.
func (x *idIndex) add(id string, i int) error {
	if id == "" {
		return modelErr(x.kind, id, fmt.Sprintf("%s %d", x.what, i), ErrEmptyID)
	}
	if _, dup := x.seen[id]; dup {
		return modelErr(x.kind, id, x.what, ErrDuplicateID)
	}
	x.seen[id] = i
	return nil
}

// require fails with ErrUnknownNode when id was never declared.
func (x *idIndex) require(id, detail string) error {
	if _, ok := x.seen[id]; !ok {
		return modelErr(x.kind, id, detail, ErrUnknownNode)
	}
	return nil
}

func (x *idIndex) has(id string) bool {
	_, ok := x.seen[id]
	return ok
}
