package config_test

import (
	"testing"

	"chapterfind/internal/config"
)

func TestParseProfile(t *testing.T) {
	for _, name := range []string{"fast", "Flexible", " ACCURATE "} {
		if _, err := config.ParseProfile(name); err != nil {
			t.Errorf("ParseProfile(%q): %v", name, err)
		}
	}
	if _, err := config.ParseProfile("best"); err == nil {
		t.Error("ParseProfile should reject unknown names")
	}
	if _, err := config.ParseProfile(""); err == nil {
		t.Error("ParseProfile should reject the empty string")
	}
}

func TestProfileParams(t *testing.T) {
	cases := []struct {
		profile config.Profile
		want    config.ProfileParams
	}{
		{config.ProfileFast, config.ProfileParams{Model: "tiny.en", BestOf: 1, BeamSize: 1, Temperature: 0.0}},
		{config.ProfileFlexible, config.ProfileParams{Model: "base.en", BestOf: 3, BeamSize: 3, Temperature: 0.2}},
		{config.ProfileAccurate, config.ProfileParams{Model: "small.en", BestOf: 5, BeamSize: 5, Temperature: 0.0}},
	}
	for _, tc := range cases {
		if got := tc.profile.Params(); got != tc.want {
			t.Errorf("%s params = %+v, want %+v", tc.profile, got, tc.want)
		}
	}
}
