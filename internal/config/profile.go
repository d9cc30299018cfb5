package config

import (
	"fmt"
	"strings"
)

// Profile names a transcription speed/accuracy trade-off. The set is closed:
// unknown names are rejected during config validation rather than silently
// mapped to a fallback.
type Profile string

const (
	// ProfileFast trades accuracy for throughput on long books.
	ProfileFast Profile = "fast"
	// ProfileFlexible is the balanced default with light temperature sampling.
	ProfileFlexible Profile = "flexible"
	// ProfileAccurate uses a larger model and wider beam for difficult audio.
	ProfileAccurate Profile = "accurate"
)

// ProfileParams is the immutable parameter bundle a profile resolves to.
type ProfileParams struct {
	Model       string
	BestOf      int
	BeamSize    int
	Temperature float64
}

var profileParams = map[Profile]ProfileParams{
	ProfileFast:     {Model: "tiny.en", BestOf: 1, BeamSize: 1, Temperature: 0.0},
	ProfileFlexible: {Model: "base.en", BestOf: 3, BeamSize: 3, Temperature: 0.2},
	ProfileAccurate: {Model: "small.en", BestOf: 5, BeamSize: 5, Temperature: 0.0},
}

// ParseProfile converts a config string into a known Profile.
func ParseProfile(name string) (Profile, error) {
	profile := Profile(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := profileParams[profile]; !ok {
		return "", fmt.Errorf("unknown profile %q (expected fast, flexible, or accurate)", name)
	}
	return profile, nil
}

// Params returns the parameter bundle for a known profile. Unknown profiles
// return the zero value; callers should validate with ParseProfile first.
func (p Profile) Params() ProfileParams {
	return profileParams[p]
}

// ResolveProfile returns the transcription parameters for the configured
// profile with whisper.model_override applied.
func (c *Config) ResolveProfile() (ProfileParams, error) {
	profile, err := ParseProfile(c.Whisper.Profile)
	if err != nil {
		return ProfileParams{}, err
	}
	params := profile.Params()
	if c.Whisper.ModelOverride != "" {
		params.Model = c.Whisper.ModelOverride
	}
	return params, nil
}
