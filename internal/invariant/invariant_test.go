package invariant_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/opal-lang/stratacore/internal/invariant"
)

func TestPreconditionPass(t *testing.T) {
	x := 1
	invariant.Precondition(true, "this should pass")
	invariant.Precondition(x == 1, "math works")
	invariant.Precondition(len("hello") > 0, "string not empty")
}

func TestPreconditionFail(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for false precondition")
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, "PRECONDITION VIOLATION") {
			t.Errorf("expected PRECONDITION VIOLATION, got: %s", msg)
		}
		if !strings.Contains(msg, "data must not be empty") {
			t.Errorf("expected custom message, got: %s", msg)
		}
		if !strings.Contains(msg, "at ") {
			t.Errorf("expected stack trace context, got: %s", msg)
		}
	}()

	invariant.Precondition(false, "data must not be empty")
}

func TestPostconditionFail(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for false postcondition")
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, "POSTCONDITION VIOLATION") {
			t.Errorf("expected POSTCONDITION VIOLATION, got: %s", msg)
		}
	}()

	invariant.Postcondition(false, "result must be positive")
}

func TestInvariantPass(t *testing.T) {
	pos, prevPos := 5, 4
	invariant.Invariant(pos > prevPos, "position advanced")
}

func TestInvariantFail(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for false invariant")
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, "INVARIANT VIOLATION") {
			t.Errorf("expected INVARIANT VIOLATION, got: %s", msg)
		}
		if !strings.Contains(msg, "position must advance") {
			t.Errorf("expected custom message, got: %s", msg)
		}
	}()

	invariant.Invariant(false, "position must advance")
}

func TestNotNilPass(t *testing.T) {
	str := "hello"
	invariant.NotNil(str, "str")
	invariant.NotNil(&str, "ptr")
	invariant.NotNil([]int{1, 2, 3}, "slice")
}

func TestNotNilFailsOnTypedNil(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for nil value")
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, "token must not be nil") {
			t.Errorf("expected 'token must not be nil', got: %s", msg)
		}
	}()

	var ptr *string
	invariant.NotNil(ptr, "token")
}

func TestInRangeBoundaries(t *testing.T) {
	invariant.InRange(5, 0, 10, "depth")
	invariant.InRange(0, 0, 10, "depth")
	invariant.InRange(10, 0, 10, "depth")
}

func TestInRangeFail(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for out of range value")
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, "must be in range") {
			t.Errorf("expected range message, got: %s", msg)
		}
	}()

	invariant.InRange(11, 0, 10, "depth")
}

func TestPositiveFail(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for non-positive value")
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, "must be positive") {
			t.Errorf("expected 'must be positive', got: %s", msg)
		}
	}()

	invariant.Positive(0, "fact_id")
}

func TestExpectNoErrorFail(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for non-nil error")
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, "digest must not fail") {
			t.Errorf("expected context in message, got: %s", msg)
		}
	}()

	invariant.ExpectNoError(fmt.Errorf("boom"), "digest")
}
