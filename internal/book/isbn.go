package book

// ISBNLength is the only accepted ISBN length. Check digits are not verified.
const ISBNLength = 13

// ValidateISBN reports whether candidate is exactly 13 ASCII decimal digits.
func ValidateISBN(candidate string) bool {
	if len(candidate) != ISBNLength {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		if candidate[i] < '0' || candidate[i] > '9' {
			return false
		}
	}
	return true
}
