package service

import "filehub/internal/domain"

// AccessPolicy decides whether an actor may read or modify a file. The
// services consult it on every file-addressed operation; richer role models
// can be plugged in without touching the services.
type AccessPolicy interface {
	// CanRead reports whether the actor may see the file, with a reason when
	// denied.
	CanRead(actorID string, f *domain.File) (bool, string)

	// CanWrite reports whether the actor may modify or delete the file.
	CanWrite(actorID string, f *domain.File) (bool, string)
}

// OwnerOrPublicPolicy is the default policy: the owner can do everything,
// anyone can read public files, system-owned files (empty UserID) are
// readable by all and writable by all callers of the API.
type OwnerOrPublicPolicy struct{}

func NewOwnerOrPublicPolicy() OwnerOrPublicPolicy { return OwnerOrPublicPolicy{} }

func (OwnerOrPublicPolicy) CanRead(actorID string, f *domain.File) (bool, string) {
	if f.UserID == "" || f.IsPublic || f.UserID == actorID {
		return true, ""
	}
	return false, "file is private to another user"
}

func (OwnerOrPublicPolicy) CanWrite(actorID string, f *domain.File) (bool, string) {
	if f.UserID == "" || f.UserID == actorID {
		return true, ""
	}
	return false, "only the owner may modify the file"
}
