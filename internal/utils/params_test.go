package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"   ", 3, 3},
		{"42", 0, 42},
		{" 42 ", 7, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{"x", 5, 5},
		{"4.2", 5, 5},
		{"999999999999999999999999", -1, -1},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestAtoiClamp(t *testing.T) {
	cases := []struct {
		s    string
		want int
	}{
		{"", 50},
		{"bad", 50},
		{"0", 1},
		{"-4", 1},
		{"20", 20},
		{"5000", 500},
	}
	for _, tc := range cases {
		if got := AtoiClamp(tc.s, 50, 1, 500); got != tc.want {
			t.Fatalf("AtoiClamp(%q) = %d; want %d", tc.s, got, tc.want)
		}
	}
}
