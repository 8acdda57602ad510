package safe

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidateSecret(t *testing.T) {
	if err := ValidateSecret([]byte("short")); err == nil {
		t.Fatal("expected error for short secret")
	}
	if err := ValidateSecret(bytes.Repeat([]byte("a"), MinSecretLen)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"doc_01234", false},
		{"brick-0.0", false},
		{"", true},
		{"has space", true},
		{"semi;colon", true},
		{strings.Repeat("a", 257), true},
	}
	for _, tt := range tests {
		err := ValidateIdentifier(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateIdentifier(%q) error=%v, wantErr=%v", tt.in, err, tt.wantErr)
		}
	}
}

func TestLimitedReadAll(t *testing.T) {
	data, err := LimitedReadAll(strings.NewReader("hello"), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q", data)
	}

	if _, err := LimitedReadAll(strings.NewReader("too many bytes"), 5); err == nil {
		t.Fatal("expected error for oversized input")
	}
}
