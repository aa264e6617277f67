package cleartext

import (
	"slices"
	"strings"

	"github.com/BespalovSergey/banners/internal/imaging"
)

// FormatReport renders the removal report:
//
//	Clear image path: <path>
//	Text boxes:
//	    text box: x: <int>, y: <int>, width: <int>, height: <int>
//
// Boxes are listed largest first. Without boxes the second line reads
// "Text boxes not found".
func FormatReport(clearImagePath string, boxes []imaging.TextBox) string {
	var sb strings.Builder
	sb.WriteString("Clear image path: ")
	sb.WriteString(clearImagePath)
	sb.WriteString("\n")

	if len(boxes) == 0 {
		sb.WriteString("Text boxes not found")
		return sb.String()
	}

	sorted := slices.Clone(boxes)
	imaging.SortByAreaDesc(sorted)

	sb.WriteString("Text boxes:")
	for _, b := range sorted {
		sb.WriteString("\n    text box: ")
		sb.WriteString(b.String())
	}
	return sb.String()
}
