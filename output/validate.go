package output

import (
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a built output: known
// item types, header and section levels in range, table shapes
// consistent with their declared counts.
func Validate(out *Output) error {
	if out == nil {
		return fmt.Errorf("nil output")
	}

	var problems []string
	report := func(path, format string, args ...any) {
		problems = append(problems, path+": "+fmt.Sprintf(format, args...))
	}

	if out.Metadata.PageCount < 0 {
		report("metadata", "page_count %d negative", out.Metadata.PageCount)
	}
	if out.ExtractionInfo.Errors == nil || out.ExtractionInfo.Warnings == nil {
		report("extraction_info", "errors and warnings must be present")
	}

	for i, item := range out.Document.Content {
		validateItem(item, fmt.Sprintf("content[%d]", i), report)
	}

	if len(problems) > 0 {
		return fmt.Errorf("output validation: %s", strings.Join(problems, "; "))
	}
	return nil
}

func validateItem(item any, path string, report func(string, string, ...any)) {
	switch v := item.(type) {
	case SectionItem:
		if v.Type != "section" {
			report(path, "type %q on section item", v.Type)
		}
		if v.Level < 1 || v.Level > 6 {
			report(path, "section level %d out of range [1,6]", v.Level)
		}
		if v.Content == nil {
			report(path, "section content missing")
		}
		for i, child := range v.Content {
			validateItem(child, fmt.Sprintf("%s.content[%d]", path, i), report)
		}
	case HeaderItem:
		if v.Type != "header" {
			report(path, "type %q on header item", v.Type)
		}
		if v.Level < 1 || v.Level > 6 {
			report(path, "header level %d out of range [1,6]", v.Level)
		}
		if v.Text == "" {
			report(path, "header text empty")
		}
	case ParagraphItem:
		if v.Type != "paragraph" {
			report(path, "type %q on paragraph item", v.Type)
		}
	case ListItem:
		if v.Type != "list" {
			report(path, "type %q on list item", v.Type)
		}
		if len(v.Items) == 0 {
			report(path, "list has no items")
		}
		if v.ListType != "ordered" && v.ListType != "unordered" {
			report(path, "list_type %q", v.ListType)
		}
	case TableItem:
		if v.Type != "table" {
			report(path, "type %q on table item", v.Type)
		}
		if len(v.Data) != v.Rows {
			report(path, "table declares %d rows but carries %d", v.Rows, len(v.Data))
		}
		for i, row := range v.Data {
			if len(row) > v.Cols {
				report(path, "row %d wider than declared %d cols", i, v.Cols)
				break
			}
		}
	case ImageItem:
		if v.Type != "image" {
			report(path, "type %q on image item", v.Type)
		}
		if v.ImageID == "" {
			report(path, "image id empty")
		}
	default:
		report(path, "unknown item type %T", item)
	}
}
