package title_test

import (
	"testing"

	"chapterfind/internal/title"
)

func TestNormalizeCanonicalizesHeadings(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"chapter one. the beginning.", "Chapter One: The Beginning"},
		{"chapter 9, arrival", "Chapter 9: Arrival"},
		{"part two", "Part Two"},
		{"section ten.", "Section Ten"},
		{"PART THREE, THE LONG ROAD,", "Part Three: The Long Road"},
		{"chapter one:  the   beginning", "Chapter One: The Beginning"},
	}
	for _, tc := range cases {
		if got := title.Normalize(tc.raw, true); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeNonHeadings(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"he said chapter nine", "He Said Chapter Nine"},
		{"an unexpected party.", "An Unexpected Party"},
		{"epilogue,", "Epilogue"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := title.Normalize(tc.raw, true); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeWithoutFixup(t *testing.T) {
	got := title.Normalize("chapter one. the beginning.", false)
	want := "Chapter One. The Beginning."
	if got != want {
		t.Fatalf("Normalize without fixup = %q, want %q", got, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"chapter one. the beginning.",
		"part two",
		"he said chapter nine",
		"Chapter One: The Beginning",
		"some random text, with commas, inside.",
		"chapter eleven. not in the number words",
	}
	for _, raw := range inputs {
		for _, fixup := range []bool{true, false} {
			once := title.Normalize(raw, fixup)
			twice := title.Normalize(once, fixup)
			if once != twice {
				t.Errorf("Normalize(%q, fixup=%v) not idempotent: %q != %q", raw, fixup, once, twice)
			}
		}
	}
}
