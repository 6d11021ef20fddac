package service

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "limit",
			err:  &ValidationError{Field: "limit", Message: "must not exceed 100"},
			want: "invalid limit: must not exceed 100",
		},
		{
			name: "source",
			err:  &ValidationError{Field: "source", Message: `unknown source filter "snap"`},
			want: `invalid source: unknown source filter "snap"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.want)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("ValidationError should match ErrInvalidInput")
			}
			if errors.Is(tt.err, ErrNotFound) {
				t.Error("ValidationError should not match ErrNotFound")
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		msg     string
		wantNil bool
		wantMsg string
	}{
		{name: "nil error", err: nil, msg: "failed to browse category", wantNil: true},
		{
			name:    "store error",
			err:     errors.New("database is locked"),
			msg:     "failed to browse category",
			wantMsg: "failed to browse category: database is locked",
		},
		{
			name:    "validation error keeps its type",
			err:     &ValidationError{Field: "q", Message: "cannot be empty"},
			msg:     "search",
			wantMsg: "search: invalid q: cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err, tt.msg)
			if tt.wantNil {
				if got != nil {
					t.Errorf("WrapError() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("WrapError() = nil, want error")
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("WrapError() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if !errors.Is(got, tt.err) {
				t.Error("WrapError() should wrap original error")
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	err := notFound("org.gnome.Chess.desktop")
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("notFound() should match ErrNotFound")
	}
	if want := `app "org.gnome.Chess.desktop": not found`; err.Error() != want {
		t.Errorf("notFound() = %q, want %q", err.Error(), want)
	}
}
