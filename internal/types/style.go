package types

// StyleGuide is the user's layout configuration for the two document kinds.
type StyleGuide struct {
	CV          Style `yaml:"cv_style" json:"cv_style" validate:"required"`
	CoverLetter Style `yaml:"cover_letter_style" json:"cover_letter_style" validate:"required"`
}

// Style is the layout of one document kind.
type Style struct {
	Margins Margins `yaml:"margins" json:"margins" validate:"required"`
	Font    Font    `yaml:"font" json:"font" validate:"required"`
	Spacing Spacing `yaml:"spacing" json:"spacing" validate:"required"`
}

// Margins are page margins in inches.
type Margins struct {
	Top    float64 `yaml:"top" json:"top" validate:"gt=0,lte=3"`
	Bottom float64 `yaml:"bottom" json:"bottom" validate:"gt=0,lte=3"`
	Left   float64 `yaml:"left" json:"left" validate:"gt=0,lte=3"`
	Right  float64 `yaml:"right" json:"right" validate:"gt=0,lte=3"`
}

// Font is the main text font.
type Font struct {
	Main string  `yaml:"main" json:"main" validate:"required"`
	Size float64 `yaml:"size" json:"size" validate:"gte=6,lte=24"`
}

// Spacing controls line spacing as a multiple of the font size.
type Spacing struct {
	LineSpacing float64 `yaml:"line_spacing" json:"line_spacing" validate:"gte=1,lte=3"`
}

// DefaultStyle is used by tests and by the render command when no style file
// is configured.
func DefaultStyle() Style {
	return Style{
		Margins: Margins{Top: 1, Bottom: 1, Left: 1, Right: 1},
		Font:    Font{Main: "Helvetica", Size: 11},
		Spacing: Spacing{LineSpacing: 1.15},
	}
}

// DefaultStyleGuide uses DefaultStyle for both contexts.
func DefaultStyleGuide() StyleGuide {
	return StyleGuide{CV: DefaultStyle(), CoverLetter: DefaultStyle()}
}
