package enums

import "fmt"

// PaperSize selects the print target for a rendered invoice.
type PaperSize string

const (
	PaperSizeThermal58 PaperSize = "thermal_58"
	PaperSizeThermal80 PaperSize = "thermal_80"
	PaperSizeA4        PaperSize = "a4"
	PaperSizeLetter    PaperSize = "letter"
)

var validPaperSizes = []PaperSize{
	PaperSizeThermal58,
	PaperSizeThermal80,
	PaperSizeA4,
	PaperSizeLetter,
}

// String implements fmt.Stringer.
func (p PaperSize) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PaperSize) IsValid() bool {
	for _, candidate := range validPaperSizes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaperSize converts raw input into a PaperSize.
func ParsePaperSize(value string) (PaperSize, error) {
	for _, candidate := range validPaperSizes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid paper size %q", value)
}
