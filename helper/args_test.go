package helper_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"firelock.dev/launcher/helper"
)

func TestArgsString(t *testing.T) {
	wantString := strings.Join(wantArgs, " ")
	if got := argsWt.(fmt.Stringer).String(); got != wantString {
		t.Errorf("String: %q, want %q",
			got, wantString)
	}
}

func TestNewCheckedArgs(t *testing.T) {
	args := []string{"\x00"}
	if _, err := helper.NewCheckedArgs(args); !errors.Is(err, helper.ErrContainsNull) {
		t.Errorf("NewCheckedArgs: error = %v, wantErr %v",
			err, helper.ErrContainsNull)
	}

	t.Run("must panic", func(t *testing.T) {
		badPayload := []string{"\x00"}
		defer func() {
			wantPanic := "argument contains null character"
			if r := recover(); r != wantPanic {
				t.Errorf("MustNewCheckedArgs: panic = %v, wantPanic %v",
					r, wantPanic)
			}
		}()
		helper.MustNewCheckedArgs(badPayload)
	})
}
