package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidParameter, "test message: %s", "value")

	if err.Code != ErrCodeInvalidParameter {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidParameter)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_PARAMETER: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeUpstreamUnreachable, cause, "kroki unreachable")

	if err.Code != ErrCodeUpstreamUnreachable {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeUpstreamUnreachable)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeEmptyBody, "test"),
			code:     ErrCodeEmptyBody,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeEmptyBody, "test"),
			code:     ErrCodeUpstream,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeRaster, New(ErrCodeEngineLaunch, "inner"), "outer"),
			code:     ErrCodeRaster,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidParameter,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeUpstreamTimeout, "slow")); got != ErrCodeUpstreamTimeout {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeUpstreamTimeout)
	}
	if got := GetCode(errors.New("plain")); got != ErrCodeInternal {
		t.Errorf("GetCode(plain) = %v, want %v", got, ErrCodeInternal)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeEmptyBody, "Empty request body")); got != "Empty request body" {
		t.Errorf("UserMessage() = %q", got)
	}

	cause := errors.New("dial tcp: connection refused")
	got := UserMessage(Wrap(ErrCodeUpstreamUnreachable, cause, "kroki unreachable"))
	want := "kroki unreachable: dial tcp: connection refused"
	if got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}

	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestValidateBackground(t *testing.T) {
	valid := []string{"#fff", "#ffff", "#1971c2", "#1971c2ff", "white", "transparent", "lightsteelblue", "rebecca-purple"}
	for _, v := range valid {
		if err := ValidateBackground(v); err != nil {
			t.Errorf("ValidateBackground(%q) = %v, want nil", v, err)
		}
	}

	invalid := []string{"", "not a color!", "#12", "#12345", "url(javascript:x)", "1971c2;", "#gggggg"}
	for _, v := range invalid {
		if err := ValidateBackground(v); err == nil {
			t.Errorf("ValidateBackground(%q) = nil, want error", v)
		}
	}
}

func TestValidateUpstreamURL(t *testing.T) {
	if err := ValidateUpstreamURL("https://kroki.example.com"); err != nil {
		t.Errorf("ValidateUpstreamURL(https) = %v", err)
	}
	if err := ValidateUpstreamURL("ftp://kroki.example.com"); err == nil {
		t.Error("ValidateUpstreamURL(ftp) = nil, want error")
	}
	if err := ValidateUpstreamURL(""); err == nil {
		t.Error("ValidateUpstreamURL(empty) = nil, want error")
	}
}
