package constants

// Categories is the allowed set for Request.Category.
var Categories = []string{
	"Tutoring",
	"Moving",
	"Tech Help",
	"Design",
	"Writing",
	"Research",
	"Other",
}

// IsValidCategory returns true if category is in the allowed set.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
