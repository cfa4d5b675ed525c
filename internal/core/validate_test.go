package core

import "testing"

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Abc12", true},
		{"Alice", true},
		{"abc", false},  // must start uppercase
		{"A", false},    // needs at least two characters
		{"Ab c", false}, // no spaces
		{"Ab-c", false}, // alphanumeric only
		{"", false},
	}
	for i, tc := range cases {
		err := ValidateUsername(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q) expected ok, got %v", i, tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.in)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Secret1!", true},
		{"P@ssw0rd", true},
		{"X-", true},
		{"Secret1", false},  // no symbol
		{"secret1!", false}, // must start uppercase
		{"1Secret!", false},
		{"Sec ret!", false}, // space is outside the allowed alphabet
		{"", false},
	}
	for i, tc := range cases {
		err := ValidatePassword(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q) expected ok, got %v", i, tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.in)
		}
	}
}
