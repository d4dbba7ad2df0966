package cloudsync

import "slices"

// AdminPolicy decides who may run the destructive history operations.
type AdminPolicy struct {
	// AdminBuild grants the capability to everyone running this build.
	AdminBuild bool
	// Identities lists accounts allowed to administer on any build.
	Identities []string
}

// CanAdminister reports whether identity may clear history under p.
func CanAdminister(identity string, p AdminPolicy) bool {
	if p.AdminBuild {
		return true
	}
	return identity != "" && slices.Contains(p.Identities, identity)
}
