package test

import (
	"errors"
	"strings"
	"testing"
)

func Equal[T comparable](t testing.TB, expected, actual T) bool {
	t.Helper()

	if expected != actual {
		t.Errorf(""+
			"Not equal: \n"+
			"Expected: %v\n"+
			"Actual: %v", expected, actual)
		return false
	}

	return true
}

func Contains(t testing.TB, s, substr string) bool {
	t.Helper()

	if !strings.Contains(s, substr) {
		t.Errorf(""+
			"Does not contain: \n"+
			"Expected: %q\n"+
			"In: %q", substr, s)
		return false
	}

	return true
}

func NotContains(t testing.TB, s, substr string) bool {
	t.Helper()

	if strings.Contains(s, substr) {
		t.Errorf(""+
			"Unexpectedly contains: \n"+
			"Substring: %q\n"+
			"In: %q", substr, s)
		return false
	}

	return true
}

func NoError(t testing.TB, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func ErrorIs(t testing.TB, err, target error) bool {
	t.Helper()

	if !errors.Is(err, target) {
		t.Errorf(""+
			"Error mismatch: \n"+
			"Expected: %v\n"+
			"Actual: %v", target, err)
		return false
	}

	return true
}
