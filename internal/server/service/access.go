package service

import (
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/model"
	"github.com/pkg/errors"
)

// A Role is the effective permission of an actor on a journal.
type Role int

// Roles, from least to most capable.
const (
	RoleNone Role = iota
	RoleReadOnly
	RoleReadWrite
	RoleOwner
)

// CanAppend returns true if the role allows appending entries to the log.
func (r Role) CanAppend() bool {
	return r == RoleReadWrite || r == RoleOwner
}

// ResolveJournal returns the journal visible to the user under the given uid,
// with the user's effective role on it.
//
// A journal is visible iff the user owns it or holds a membership, and it is
// not soft-deleted. Anything else is reported as not found, never as
// forbidden, so unauthorized actors cannot probe for existence. The same uid
// may exist once per owner, so resolution scans all carriers of the uid and
// keeps the one the user can see.
func ResolveJournal(db database.Client, user *model.User, uid string) (*model.Journal, Role, error) {
	journals, err := db.FindJournalsByUID(uid)
	if err != nil {
		return nil, RoleNone, errors.Wrap(err, "could not get access to database")
	}

	for _, journal := range journals {
		if journal.Deleted {
			continue
		}

		if journal.OwnerID == user.ID {
			return journal, RoleOwner, nil
		}

		member, err := db.FindMember(journal.ID, user.ID)
		if err != nil {
			if db.IsNotFound(err) {
				continue
			}
			return nil, RoleNone, errors.Wrap(err, "could not get access to database")
		}

		if member.ReadOnly {
			return journal, RoleReadOnly, nil
		}
		return journal, RoleReadWrite, nil
	}

	return nil, RoleNone, jserror.NotFound("Journal not found.")
}
