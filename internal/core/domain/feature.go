package domain

// Feature is an atomic named permission. Feature strings are compared
// exactly as declared; there is no hierarchy and no normalization.
type Feature string

const (
	FeatureListUsers             Feature = "LIST_USERS"
	FeatureCreateUser            Feature = "CREATE_USER"
	FeatureUpdateUser            Feature = "UPDATE_USER"
	FeatureDeleteUser            Feature = "DELETE_USER"
	FeatureResetUserPassword     Feature = "RESET_USER_PASSWORD"
	FeatureAssignRoleToUser      Feature = "ASSIGN_ROLE_TO_USER"
	FeatureRevokeRoleFromUser    Feature = "REVOKE_ROLE_FROM_USER"
	FeatureListRoles             Feature = "LIST_ROLES"
	FeatureCreateRole            Feature = "CREATE_ROLE"
	FeatureUpdateRole            Feature = "UPDATE_ROLE"
	FeatureDeleteRole            Feature = "DELETE_ROLE"
	FeatureAssignFeatureToRole   Feature = "ASSIGN_FEATURE_TO_ROLE"
	FeatureRevokeFeatureFromRole Feature = "REVOKE_FEATURE_FROM_ROLE"
)

// featureCatalog keeps the vocabulary in presentation order.
var featureCatalog = []struct {
	Feature     Feature
	Description string
}{
	{FeatureListUsers, "View users list"},
	{FeatureCreateUser, "Create new users"},
	{FeatureUpdateUser, "Update user information"},
	{FeatureDeleteUser, "Delete users"},
	{FeatureResetUserPassword, "Reset user passwords"},
	{FeatureAssignRoleToUser, "Assign roles to users"},
	{FeatureRevokeRoleFromUser, "Remove roles from users"},
	{FeatureListRoles, "View roles list"},
	{FeatureCreateRole, "Create new roles"},
	{FeatureUpdateRole, "Update role information"},
	{FeatureDeleteRole, "Delete roles"},
	{FeatureAssignFeatureToRole, "Assign features to roles"},
	{FeatureRevokeFeatureFromRole, "Remove features from roles"},
}

// Features returns the full vocabulary in presentation order.
func Features() []Feature {
	out := make([]Feature, len(featureCatalog))
	for i, entry := range featureCatalog {
		out[i] = entry.Feature
	}
	return out
}

// Describe returns the human description of f, or "" for an unknown feature.
func (f Feature) Describe() string {
	for _, entry := range featureCatalog {
		if entry.Feature == f {
			return entry.Description
		}
	}
	return ""
}

// Known reports whether f belongs to the vocabulary.
func (f Feature) Known() bool {
	return f.Describe() != ""
}
