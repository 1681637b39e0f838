package cbuffer

import "fmt"

// Field is one line of a laid-out struct: a buffer member or inserted padding.
type Field struct {
	Type    string // Rendered type name
	Name    string // Member name, or "paddingN[k]" for padding
	Comment string
	Words   int
	Padding bool
}

// Layout places members in order, inserting padding wherever a member would
// straddle a 16-byte register. A member that does not fit in the words left
// in a partially filled register is pushed to the next one; members whose
// size is a multiple of four words leave the register budget unchanged.
func Layout(members []Member) []Field {
	fields := make([]Field, 0, len(members))
	left := SlotWords
	pads := 0

	for _, m := range members {
		size := m.Type.Words
		if left != SlotWords && size > left {
			fields = append(fields, Field{
				Type:    "float",
				Name:    fmt.Sprintf("padding%d[%d]", pads, left),
				Words:   left,
				Padding: true,
			})
			pads++
			left = SlotWords
		}

		fields = append(fields, Field{
			Type:    m.Type.Name,
			Name:    m.Name,
			Comment: m.Comment,
			Words:   size,
		})

		left -= size % SlotWords
		if left == 0 {
			left = SlotWords
		}
	}
	return fields
}

// Words returns the total size of fields in 4-byte words.
func Words(fields []Field) int {
	n := 0
	for _, f := range fields {
		n += f.Words
	}
	return n
}
