package wizard

import "supplier-portal/internal/models"

// Hydrate copies the registration hand-off into the draft.
func Hydrate(v models.VerificationData) Change {
	return func(f *models.ProfileFormData) { f.HydrateFromVerification(v) }
}

// SetKeywords parses a comma separated keyword input.
func SetKeywords(input string) Change {
	return func(f *models.ProfileFormData) { f.SetProductKeywords(input) }
}

// Replace swaps in a whole draft, for example one loaded from disk.
func Replace(form *models.ProfileFormData) Change {
	return func(f *models.ProfileFormData) { *f = *form.Clone() }
}
