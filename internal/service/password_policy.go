package service

const defaultPasswordMinLength = 8

func validatePassword(minLength int, password string) error {
	if minLength <= 0 {
		minLength = defaultPasswordMinLength
	}
	if len([]rune(password)) < minLength {
		return ErrPasswordTooShort
	}
	return nil
}
