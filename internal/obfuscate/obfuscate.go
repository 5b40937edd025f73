// Package obfuscate masks Brazilian phone numbers in summaries before they
// are published.
package obfuscate

import "regexp"

// Mask replaces the middle block of the number.
const Mask = "🫣"

var brPhone = regexp.MustCompile(`(\+55\s*\(?\s*\d{2}\s*\)?\s*)(\d{4,5})(-\d{4})`)

// Phones keeps the country code, area code and last four digits:
// "+55 21 97092-4781" becomes "+55 21 🫣-4781".
func Phones(text string) string {
	return brPhone.ReplaceAllString(text, "${1}"+Mask+"${3}")
}

// Count returns how many numbers Phones would mask.
func Count(text string) int {
	return len(brPhone.FindAllStringIndex(text, -1))
}
