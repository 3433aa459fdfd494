package canvas

import "strings"

// TrimText crops rendered text to its occupied bounding box: trailing spaces
// are removed from every row, blank rows at the top and bottom are dropped,
// and the indentation common to all non-blank rows is removed. Applying it
// to its own output changes nothing.
func TrimText(s string) string {
	rows := strings.Split(s, "\n")
	for i, r := range rows {
		rows[i] = strings.TrimRight(r, " ")
	}

	first, last := -1, -1
	for i, r := range rows {
		if r != "" {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return ""
	}
	rows = rows[first : last+1]

	indent := -1
	for _, r := range rows {
		if r == "" {
			continue
		}
		n := len(r) - len(strings.TrimLeft(r, " "))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, r := range rows {
		if len(r) >= indent {
			rows[i] = r[indent:]
		}
	}
	return strings.Join(rows, "\n")
}
