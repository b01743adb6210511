package dto

// PreferenceRequest is the payload for POST /api/preferences.
type PreferenceRequest struct {
	Intent             string `json:"intent" validate:"omitempty,max=64"`
	OnboardingComplete bool   `json:"onboardingComplete"`
}
