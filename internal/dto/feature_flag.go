package dto

// SetOverrideRequest pins a flag for one company.
type SetOverrideRequest struct {
	Enabled bool    `json:"enabled"`
	Reason  *string `json:"reason,omitempty"`
}

// SetDefaultRequest flips a flag's platform-wide default.
type SetDefaultRequest struct {
	Enabled bool `json:"enabled"`
}

// EffectiveFlagsResponse is the resolved flag map for a company.
type EffectiveFlagsResponse struct {
	CompanyID string          `json:"company_id"`
	Flags     map[string]bool `json:"flags"`
}
