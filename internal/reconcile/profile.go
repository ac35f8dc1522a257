package reconcile

import (
	"github.com/umarmf343/vea-2025-sub005/internal/models"
	"github.com/umarmf343/vea-2025-sub005/internal/record"
)

// ResolveProfile merges a freshly fetched profile payload with the
// caller-supplied fallback. Each field takes the first non-blank remote
// candidate and keeps the fallback value otherwise, so the result stays
// complete even when the remote call failed entirely.
func ResolveProfile(raw any, fallback models.StudentProfile) models.StudentProfile {
	obj, ok := record.AsObject(raw)
	if !ok {
		return fallback
	}

	resolved := fallback
	if v := record.ProfileID.First(obj); v != "" {
		resolved.ID = v
	}
	if v := record.ProfileName.First(obj); v != "" {
		resolved.Name = v
	}
	if v := record.ProfileEmail.First(obj); v != "" {
		resolved.Email = v
	}
	if v := record.ProfileClass.First(obj); v != "" {
		resolved.Class = v
	}
	if v := record.ProfileAdmission.First(obj); v != "" {
		resolved.AdmissionNumber = v
	}
	return resolved
}
