package volume

import "strings"

// View selects which volume axis is treated as the slice axis.
type View int

const (
	// Transverse keeps the volume's leading axis as the slice axis.
	Transverse View = iota
	// Coronal navigates along the volume's second axis.
	Coronal
	// Sagittal navigates along the volume's trailing axis.
	Sagittal
)

var viewTokens = map[string]View{
	"t":          Transverse,
	"z":          Transverse,
	"transverse": Transverse,
	"c":          Coronal,
	"y":          Coronal,
	"coronal":    Coronal,
	"s":          Sagittal,
	"x":          Sagittal,
	"sagittal":   Sagittal,
	"saggital":   Sagittal, // accepted for older configs and scripts
}

// ParseView maps a case-insensitive token onto a View. Unknown tokens yield
// Transverse (no permutation) and ok == false.
func ParseView(token string) (View, bool) {
	v, ok := viewTokens[strings.ToLower(strings.TrimSpace(token))]
	return v, ok
}

func (v View) String() string {
	switch v {
	case Coronal:
		return "coronal"
	case Sagittal:
		return "sagittal"
	default:
		return "transverse"
	}
}
