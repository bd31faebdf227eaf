package status

import "testing"

func TestStatusCode_String(t *testing.T) {
	tests := []struct {
		code     StatusCode
		expected string
	}{
		{CodeOK, "OK"},
		{ErrCodeInvalidParam, "INVALID_PARAM"},
		{ErrCodeTimeout, "TIMEOUT"},
		{StatusCode(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.code.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestForErrorType(t *testing.T) {
	tests := []struct {
		errorType string
		expected  StatusCode
	}{
		{"validation", ErrCodeInvalidParam},
		{"timeout", ErrCodeTimeout},
		{"unknown", ErrCodeInternal},
		{"", ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.errorType, func(t *testing.T) {
			if got := ForErrorType(tt.errorType); got != tt.expected {
				t.Errorf("ForErrorType(%q) = %v, want %v", tt.errorType, got, tt.expected)
			}
		})
	}
}
