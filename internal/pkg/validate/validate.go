package validate

import "strings"

const maxClientIDLen = 64

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ClientID accepts short opaque ids made of letters, digits, '.', '_' and
// '-'. They end up inside storage keys.
func ClientID(value string) bool {
	if value == "" || len(value) > maxClientIDLen {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
