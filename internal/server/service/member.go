package service

import (
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/model"
	"github.com/pkg/errors"
)

type (
	// A GrantParams is used when the owner shares a journal.
	GrantParams struct {
		User     string `json:"user"`
		Key      []byte `json:"key"`
		ReadOnly bool   `json:"read_only"`
	}

	// A MemberRender is the API representation of a membership.
	MemberRender struct {
		User     string `json:"user"`
		Key      []byte `json:"key"`
		ReadOnly bool   `json:"read_only"`
	}
)

// ListMembers returns the journal's memberships. Owner only.
func ListMembers(db database.Client, journal *model.Journal, role Role) ([]*MemberRender, error) {
	if role != RoleOwner {
		return nil, jserror.Forbidden("Only the owner can list members.")
	}

	members, err := db.FindMembersByJournal(journal.ID)
	if err != nil {
		return nil, errors.Wrap(err, "could not list members")
	}

	renders := make([]*MemberRender, 0, len(members))
	for _, member := range members {
		user, err := db.FindUser(member.UserID)
		if err != nil {
			return nil, errors.Wrap(err, "could not load member user")
		}
		renders = append(renders, &MemberRender{
			User:     user.Email,
			Key:      member.Key,
			ReadOnly: member.ReadOnly,
		})
	}
	return renders, nil
}

// GrantMember shares the journal with another account. Owner only.
// Granting an existing membership is a duplicate, not a silent update.
func GrantMember(db database.Client, journal *model.Journal, role Role, params GrantParams) error {
	if role != RoleOwner {
		return jserror.Forbidden("Only the owner can manage members.")
	}
	if len(params.Key) == 0 {
		return jserror.Validation("Member key can't be empty.")
	}

	user, err := db.FindUserByMail(params.User)
	if err != nil {
		if db.IsNotFound(err) {
			return jserror.NotFound("User not found.")
		}
		return errors.Wrap(err, "could not load user")
	}
	if user.ID == journal.OwnerID {
		return jserror.Validation("The owner's access is implicit.")
	}

	_, err = db.FindMember(journal.ID, user.ID)
	if err == nil {
		return jserror.Duplicate("User is already a member.")
	}
	if !db.IsNotFound(err) {
		return errors.Wrap(err, "could not check membership uniqueness")
	}

	member := &model.Member{
		JournalID: journal.ID,
		UserID:    user.ID,
		Key:       params.Key,
		ReadOnly:  params.ReadOnly,
	}
	return errors.Wrap(db.Save(member), "could not save member")
}

// RevokeMember removes an account's membership. Owner only, immediate and hard.
func RevokeMember(db database.Client, journal *model.Journal, role Role, email string) error {
	if role != RoleOwner {
		return jserror.Forbidden("Only the owner can manage members.")
	}

	user, err := db.FindUserByMail(email)
	if err != nil {
		if db.IsNotFound(err) {
			return jserror.NotFound("User not found.")
		}
		return errors.Wrap(err, "could not load user")
	}

	member, err := db.FindMember(journal.ID, user.ID)
	if err != nil {
		if db.IsNotFound(err) {
			return jserror.NotFound("User is not a member.")
		}
		return errors.Wrap(err, "could not load membership")
	}

	return errors.Wrap(db.Delete(member), "could not delete member")
}
