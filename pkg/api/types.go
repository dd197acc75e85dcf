package api

// ErrorResponse is the standardized error body for all failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health. Remote reports whether a
// backend is configured, Cache which mirror backs the engine; neither
// probes liveness, the reconciler absorbs outages on its own.
type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment,omitempty"`
	Remote      string `json:"remote,omitempty"`
	Cache       string `json:"cache,omitempty"`
}

// UpdateProfileRequest is the expected body for PUT /profile. Identifier
// fields accept ephemeral demo ids, so they are length-capped rather than
// shape-checked here.
type UpdateProfileRequest struct {
	Email               string `json:"email" validate:"omitempty,email"`
	FirstName           string `json:"firstName" validate:"max=100"`
	LastName            string `json:"lastName" validate:"max=100"`
	FamilyID            string `json:"familyId" validate:"max=64"`
	OnboardingCompleted bool   `json:"onboardingCompleted"`
}

// CreateFamilyRequest is the expected body for POST /families.
type CreateFamilyRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// UpdateFamilyRequest is the expected body for PUT /families/{familyID}.
type UpdateFamilyRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// UpdateJourneyProgressRequest is the expected body for
// PUT /journeys/{journeyType}.
type UpdateJourneyProgressRequest struct {
	CompletedSteps []string `json:"completedSteps" validate:"max=500,dive,max=100"`
	CurrentStep    string   `json:"currentStep" validate:"max=100"`
}

// CreateTimeCapsuleRequest is the expected body for
// POST /families/{familyID}/capsules.
type CreateTimeCapsuleRequest struct {
	Title    string `json:"title" validate:"required,max=300"`
	Message  string `json:"message" validate:"max=10000"`
	OpenDate string `json:"openDate" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateBookPreferenceRequest is the expected body for
// PUT /book-preferences.
type UpdateBookPreferenceRequest struct {
	JourneyType string `json:"journeyType" validate:"required,oneof=couple pregnancy"`
	ChildID     string `json:"childId" validate:"max=64"`
	CustomTitle string `json:"customTitle" validate:"max=300"`
}
