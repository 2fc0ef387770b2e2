package file

import "file-share-api/internal/domain/user"

// Requester is the identity a request acts under. The zero value is anonymous.
type Requester struct {
	userUUID      user.UUID
	authenticated bool
}

func Anonymous() Requester { return Requester{} }

func AuthenticatedAs(uuid user.UUID) Requester {
	return Requester{userUUID: uuid, authenticated: true}
}

func (r Requester) Authenticated() bool { return r.authenticated }

func (r Requester) UserUUID() (user.UUID, bool) { return r.userUUID, r.authenticated }

type Action int

const (
	ActionRead Action = iota
	ActionDelete
)

// Authorize decides whether requester may perform action on f. It is a pure
// function of its inputs and never touches storage.
//
// Read: allowed for public files, otherwise owner only. An anonymous reader of
// a private file gets ErrAuthenticationRequired so the caller can prompt for
// login; an authenticated non-owner gets ErrForbidden.
//
// Delete: owner only. Anonymous delete is expected to be rejected upstream by
// the auth middleware; here it still denies with ErrForbidden.
func Authorize(requester Requester, f *File, action Action) error {
	switch action {
	case ActionRead:
		if f.IsPublic {
			return nil
		}
		uid, ok := requester.UserUUID()
		if !ok {
			return ErrAuthenticationRequired
		}
		if uid != f.OwnerUUID {
			return ErrForbidden
		}
		return nil
	case ActionDelete:
		uid, ok := requester.UserUUID()
		if !ok || uid != f.OwnerUUID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}
