package helper

import "testing"

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range OrderStatuses {
		if !IsValidOrderStatus(s) {
			t.Errorf("%s harusnya valid", s)
		}
	}

	for _, s := range []string{"", "done", "READY", "shipped"} {
		if IsValidOrderStatus(s) {
			t.Errorf("%q harusnya tidak valid", s)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	cases := map[string]string{
		"urgent":  "urgent",
		"low":     "low",
		"high":    "high",
		"normal":  "normal",
		" high ":  "high",
		"bogus":   "normal",
		"":        "normal",
		"URGENT":  "normal",
		"darurat": "normal",
	}

	for in, want := range cases {
		if got := NormalizePriority(in); got != want {
			t.Errorf("NormalizePriority(%q) = %q, mau %q", in, got, want)
		}
	}
}
