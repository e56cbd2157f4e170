package utils

// MaskSecret returns a loggable form of a credential: the first four
// characters followed by "***". Credentials must never appear whole in logs.
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return "***"
	}
	return s[:4] + "***"
}
