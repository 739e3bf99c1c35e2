package services

import "github.com/dmitrijs2005/pointpool/internal/common"

// MaxNameLen is the longest accepted user name.
const MaxNameLen = 19

// ValidateName accepts 1 to 19 characters from [A-Za-z0-9-].
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLen {
		return common.ErrInvalidName
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return common.ErrInvalidName
		}
	}
	return nil
}
