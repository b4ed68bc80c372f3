package structure

import "github.com/pdfstruct/pdfstruct/model"

// HeaderStack tracks the chain of open sections while the builder scans
// a document top to bottom. Levels on the stack are strictly increasing
// from bottom to top; pushing a section first closes every open section
// at the same or deeper level.
type HeaderStack struct {
	stack  []*model.SectionNode
	levels map[int]*model.SectionNode
}

// NewHeaderStack returns an empty stack.
func NewHeaderStack() *HeaderStack {
	return &HeaderStack{levels: make(map[int]*model.SectionNode)}
}

// Push opens a section, closing any sections at the same or deeper
// level, and attaches it as a child of the nearest shallower open
// section. It reports whether the section has no parent and belongs at
// the root of the tree.
func (h *HeaderStack) Push(section *model.SectionNode) (isRoot bool) {
	for len(h.stack) > 0 && h.stack[len(h.stack)-1].Level >= section.Level {
		top := h.stack[len(h.stack)-1]
		delete(h.levels, int(top.Level))
		h.stack = h.stack[:len(h.stack)-1]
	}
	isRoot = len(h.stack) == 0
	if !isRoot {
		h.stack[len(h.stack)-1].AddChild(section)
	}
	h.stack = append(h.stack, section)
	h.levels[int(section.Level)] = section
	return isRoot
}

// Current returns the innermost open section, or nil when no section is
// open.
func (h *HeaderStack) Current() *model.SectionNode {
	if len(h.stack) == 0 {
		return nil
	}
	return h.stack[len(h.stack)-1]
}

// AtLevel returns the open section at the given level, or nil.
func (h *HeaderStack) AtLevel(level model.HeaderLevel) *model.SectionNode {
	return h.levels[int(level)]
}

// Depth returns the number of open sections.
func (h *HeaderStack) Depth() int { return len(h.stack) }

// IsEmpty reports whether no section is open.
func (h *HeaderStack) IsEmpty() bool { return len(h.stack) == 0 }

// Clear closes all open sections.
func (h *HeaderStack) Clear() {
	h.stack = h.stack[:0]
	clear(h.levels)
}
