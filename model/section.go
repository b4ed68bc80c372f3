package model

import "fmt"

// HeaderLevel is a heading depth from 1 (top) to 6.
type HeaderLevel int

const (
	H1 HeaderLevel = 1
	H2 HeaderLevel = 2
	H3 HeaderLevel = 3
	H4 HeaderLevel = 4
	H5 HeaderLevel = 5
	H6 HeaderLevel = 6
)

// HeaderLevelFromInt validates and converts an integer heading depth.
func HeaderLevelFromInt(n int) (HeaderLevel, error) {
	if n < 1 || n > 6 {
		return 0, fmt.Errorf("header level %d out of range [1,6]", n)
	}
	return HeaderLevel(n), nil
}

func (h HeaderLevel) String() string { return fmt.Sprintf("h%d", int(h)) }

// SectionNode is one node of the document section tree. Content, tables
// and images belong to the section whose header most recently preceded
// them.
type SectionNode struct {
	Title    string
	Level    HeaderLevel
	Page     int
	BBox     BoundingBox
	Content  []TextBlock
	Tables   []Table
	Images   []ImageInfo
	Children []*SectionNode
	Metadata map[string]any
}

// ContentCount returns the number of content items attached directly
// to the section, not counting subsections.
func (s *SectionNode) ContentCount() int {
	return len(s.Content) + len(s.Tables) + len(s.Images)
}

// AddChild appends a child section.
func (s *SectionNode) AddChild(child *SectionNode) {
	s.Children = append(s.Children, child)
}

// Walk visits the node and all descendants depth-first in document
// order. Returning false from fn stops the walk.
func (s *SectionNode) Walk(fn func(*SectionNode) bool) bool {
	if !fn(s) {
		return false
	}
	for _, c := range s.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// DocumentStructure is the hierarchical view of a document built from
// its headers.
type DocumentStructure struct {
	Title      string
	TotalPages int
	Sections   []*SectionNode
	Metadata   map[string]any
}

// SectionCount returns the total number of sections at all depths.
func (d *DocumentStructure) SectionCount() int {
	n := 0
	for _, s := range d.Sections {
		s.Walk(func(*SectionNode) bool {
			n++
			return true
		})
	}
	return n
}

// Walk visits every section depth-first in document order.
func (d *DocumentStructure) Walk(fn func(*SectionNode) bool) {
	for _, s := range d.Sections {
		if !s.Walk(fn) {
			return
		}
	}
}
