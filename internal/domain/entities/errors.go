package entities

import "fmt"

// CheckError signals that check mode found pending work: dependencies that
// could be consolidated, or conflicts that could not be resolved.
type CheckError struct {
	Consolidations int
	Conflicts      int
}

func (e *CheckError) Error() string {
	if e.Consolidations > 0 {
		return fmt.Sprintf("check failed: %d dependencies could be consolidated", e.Consolidations)
	}
	return fmt.Sprintf("check failed: %d unresolved conflicts", e.Conflicts)
}
