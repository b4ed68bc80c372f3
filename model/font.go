package model

// Font flag bits as reported by the span source.
const (
	fontFlagSuperscript = 1 << 0
	fontFlagItalic      = 1 << 1
	fontFlagSerif       = 1 << 2
	fontFlagBold        = 1 << 4
)

// FontInfo describes the font of a text span. It is attached to every
// span and never mutated after creation.
type FontInfo struct {
	Name      string   `json:"name"`
	Size      float64  `json:"size"`
	Flags     int      `json:"flags"`
	Color     int      `json:"color"`
	Ascender  *float64 `json:"ascender,omitempty"`
	Descender *float64 `json:"descender,omitempty"`
}

// IsBold reports whether the bold flag bit is set.
func (f FontInfo) IsBold() bool {
	return f.Flags&fontFlagBold != 0
}

// IsItalic reports whether the italic flag bit is set.
func (f FontInfo) IsItalic() bool {
	return f.Flags&fontFlagItalic != 0
}

// IsSuperscript reports whether the superscript flag bit is set.
func (f FontInfo) IsSuperscript() bool {
	return f.Flags&fontFlagSuperscript != 0
}

// IsSerif reports whether the serif flag bit is set.
func (f FontInfo) IsSerif() bool {
	return f.Flags&fontFlagSerif != 0
}

// AsMap returns the font attributes as a generic map for TextBlock
// font metadata.
func (f FontInfo) AsMap() map[string]any {
	return map[string]any{
		"name":   f.Name,
		"size":   f.Size,
		"bold":   f.IsBold(),
		"italic": f.IsItalic(),
		"flags":  f.Flags,
		"color":  f.Color,
	}
}
