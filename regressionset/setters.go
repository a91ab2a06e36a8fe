package regressionset

// SetName returns an UpdateSetter that sets the regression set's name.
func SetName(name string) UpdateSetter {
	return func(rs *RegressionSet) error {
		if name == "" {
			return ErrInvalidName
		}
		rs.Name = name
		return nil
	}
}

// SetDescription returns an UpdateSetter that sets the description.
func SetDescription(description string) UpdateSetter {
	return func(rs *RegressionSet) error {
		rs.Description = description
		return nil
	}
}

// SetPlatform returns an UpdateSetter that sets the platform.
func SetPlatform(platform Platform) UpdateSetter {
	return func(rs *RegressionSet) error {
		if !platform.IsValid() {
			return ErrInvalidPlatform
		}
		rs.Platform = platform
		return nil
	}
}
