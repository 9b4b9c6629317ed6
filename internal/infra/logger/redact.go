package logger

import "strings"

// RedactEmail mascara o email para o log.
// "john.doe@example.com" → "jo***@example.com"
// Parte local curta (≤2) some inteira: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
