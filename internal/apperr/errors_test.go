package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"validation", Validation("name is required"), CodeValidation},
		{"permission", Permission("owner only"), CodePermission},
		{"not found", NotFound(errors.New("no rows"), "move %s not found", "m1"), CodeNotFound},
		{"expired", Expired("move %s expired", "m1"), CodeExpired},
		{"wrapped", fmt.Errorf("update: %w", Validation("bad")), CodeValidation},
		{"plain", errors.New("boom"), CodeUnknown},
		{"nil", nil, CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("cast vote: %w", Expired("move m1 expired"))
	if !errors.Is(err, ErrExpired) {
		t.Error("expected errors.Is to match ErrExpired")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is not to match ErrNotFound")
	}
}

func TestNotFoundUnwrapsCause(t *testing.T) {
	cause := errors.New("row missing")
	err := NotFound(cause, "group %s not found", "g1")
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if err.Error() != "group g1 not found: row missing" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
