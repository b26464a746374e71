package services

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// clampLimit applies the list page-size defaults and ceiling.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
