package boundary

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser builds a fresh caser per call; cases.Caser carries internal
// state and must not be shared across goroutines.
func titleCaser() cases.Caser {
	return cases.Title(language.Indonesian)
}
