package testutil

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestAssertEqual(t *testing.T) {
	AssertEqual(t, 42, 42)
	AssertEqual(t, "A01", "A01")
	AssertEqual(t, true, true)
}

func TestAssertNil(t *testing.T) {
	AssertNil(t, nil)
}

func TestAssertError(t *testing.T) {
	AssertError(t, errors.New("test error"))
}

func TestAssertErrorIs(t *testing.T) {
	base := errors.New("base")
	AssertErrorIs(t, fmt.Errorf("wrapped: %w", base), base)
}

func TestAssertContains(t *testing.T) {
	AssertContains(t, "hello world", "world")
	AssertContains(t, "Largo Town Center", "Largo")
	AssertContains(t, "anything", "")
}

func TestAssertNotContains(t *testing.T) {
	AssertNotContains(t, "hello world", "foo")
}

func TestAssertTimeEqual(t *testing.T) {
	now := time.Now()
	later := now.Add(100 * time.Millisecond)

	AssertTimeEqual(t, now, later, 200*time.Millisecond)
	AssertTimeEqual(t, later, now, 200*time.Millisecond)
}

func TestAssertTrue(t *testing.T) {
	AssertTrue(t, true)
	AssertTrue(t, 2 > 1)
}

func TestAssertFalse(t *testing.T) {
	AssertFalse(t, false)
	AssertFalse(t, 1 == 2)
}

func TestAssertLen(t *testing.T) {
	AssertLen(t, []int{1, 2, 3}, 3)
	AssertLen(t, []string{"a", "b"}, 2)
	AssertLen(t, []int{}, 0)
}
