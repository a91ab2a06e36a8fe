package user

// SetName returns an UpdateSetter that sets the user's display name.
func SetName(name string) UpdateSetter {
	return func(u *User) error {
		if name == "" {
			return ErrInvalidName
		}
		u.Name = name
		return nil
	}
}

// SetPassword returns an UpdateSetter that hashes and sets a new password.
func SetPassword(password string) UpdateSetter {
	return func(u *User) error {
		return u.SetPassword(password)
	}
}
