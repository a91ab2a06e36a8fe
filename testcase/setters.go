package testcase

// SetModule returns an UpdateSetter that sets the module.
func SetModule(module string) UpdateSetter {
	return func(tc *TestCase) error {
		if module == "" {
			return ErrInvalidModule
		}
		tc.Module = module
		return nil
	}
}

// SetTestScenario returns an UpdateSetter that sets the test scenario.
func SetTestScenario(scenario string) UpdateSetter {
	return func(tc *TestCase) error {
		tc.TestScenario = scenario
		return nil
	}
}

// SetTitle returns an UpdateSetter that sets the test case title.
func SetTitle(title string) UpdateSetter {
	return func(tc *TestCase) error {
		tc.Title = title
		return nil
	}
}

// SetPreConditions returns an UpdateSetter that sets the pre-conditions.
func SetPreConditions(preConditions string) UpdateSetter {
	return func(tc *TestCase) error {
		tc.PreConditions = preConditions
		return nil
	}
}

// SetTestData returns an UpdateSetter that sets the test data.
func SetTestData(testData string) UpdateSetter {
	return func(tc *TestCase) error {
		tc.TestData = testData
		return nil
	}
}

// SetTestStep returns an UpdateSetter that sets the test step description.
func SetTestStep(testStep string) UpdateSetter {
	return func(tc *TestCase) error {
		tc.TestStep = testStep
		return nil
	}
}

// SetExpectedResult returns an UpdateSetter that sets the expected result.
func SetExpectedResult(expectedResult string) UpdateSetter {
	return func(tc *TestCase) error {
		if expectedResult == "" {
			return ErrInvalidExpectedResult
		}
		tc.ExpectedResult = expectedResult
		return nil
	}
}

// SetActualResults returns an UpdateSetter that sets the actual results.
func SetActualResults(actualResults string) UpdateSetter {
	return func(tc *TestCase) error {
		tc.ActualResults = actualResults
		return nil
	}
}

// SetStatus returns an UpdateSetter that sets the standing status.
func SetStatus(status Status) UpdateSetter {
	return func(tc *TestCase) error {
		if !status.IsValid() {
			return ErrInvalidStatus
		}
		tc.Status = status
		return nil
	}
}
