package descriptor

import (
	"errors"
	"fmt"
)

// validateStructure applies the cheap line notation checks every row
// gets before hashing: non-empty, bytes from the notation's alphabet
// and balanced ring and atom brackets. A failure here fails the row,
// not the run.
func validateStructure(structure string) error {
	if structure == "" {
		return errors.New("structure is empty")
	}

	var parenDepth, bracketDepth int
	for i := 0; i < len(structure); i++ {
		c := structure[i]
		switch {
		case c == '(':
			parenDepth++
		case c == ')':
			parenDepth--
			if parenDepth < 0 {
				return fmt.Errorf("unbalanced ')' at position %d", i)
			}
		case c == '[':
			bracketDepth++
		case c == ']':
			bracketDepth--
			if bracketDepth < 0 {
				return fmt.Errorf("unbalanced ']' at position %d", i)
			}
		case isStructureByte(c):
		default:
			return fmt.Errorf("illegal character %q at position %d", c, i)
		}
	}

	if parenDepth != 0 {
		return errors.New("unbalanced '(' in structure")
	}
	if bracketDepth != 0 {
		return errors.New("unbalanced '[' in structure")
	}
	return nil
}

func isStructureByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '=', '#', '$', ':', '/', '\\', '.', '@', '+', '%', '*', '~':
		return true
	}
	return false
}
