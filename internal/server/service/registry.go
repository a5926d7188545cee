package service

import (
	"time"

	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/model"
	"github.com/pkg/errors"
)

type (
	// A CreateJournalParams is used when a client pushes a new journal.
	CreateJournalParams struct {
		UID     string `json:"uid"`
		Version int    `json:"version"`
		Content []byte `json:"content"`
	}

	// An UpdateJournalParams is used when a client updates a journal.
	// Only the content is externally mutable. Clients may send uid, owner or
	// version fields, they are disregarded.
	UpdateJournalParams struct {
		Content []byte `json:"content"`
	}

	// A JournalRender is the API representation of a journal, annotated with
	// the caller's key material when shared and the current log tip.
	JournalRender struct {
		UID      string     `json:"uid"`
		Version  int        `json:"version"`
		Content  []byte     `json:"content"`
		Owner    string     `json:"owner"`
		Key      []byte     `json:"key,omitempty"`
		ReadOnly bool       `json:"read_only"`
		Tip      string     `json:"tip,omitempty"`
		Modified *time.Time `json:"modified"`
	}
)

// CreateJournal registers a new journal for the owner.
// The (uid, owner) pair is unique, a second push of the same uid by the same
// owner is a duplicate even when the previous journal was soft-deleted.
func CreateJournal(db database.Client, owner *model.User, params CreateJournalParams) error {
	if !model.ValidUID(params.UID) {
		return jserror.Validation("Invalid journal uid.")
	}
	if len(params.Content) == 0 {
		return jserror.Validation("Journal content can't be empty.")
	}

	_, err := db.FindJournal(owner.ID, params.UID)
	if err == nil {
		return jserror.Duplicate("Journal uid already exists.")
	}
	if !db.IsNotFound(err) {
		return errors.Wrap(err, "could not check journal uniqueness")
	}

	version := params.Version
	if version <= 0 {
		version = 1
	}

	journal := &model.Journal{
		UID:     params.UID,
		OwnerID: owner.ID,
		Version: version,
		Content: params.Content,
	}
	return errors.Wrap(db.Save(journal), "could not save journal")
}

// ListJournals returns all journals visible to the user: its own plus the
// ones shared with it, soft-deleted ones excluded.
func ListJournals(db database.Client, user *model.User) ([]*JournalRender, error) {
	renders := make([]*JournalRender, 0)

	journals, err := db.FindJournalsByOwner(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "could not list journals")
	}
	for _, journal := range journals {
		render, err := RenderJournal(db, user, journal, RoleOwner)
		if err != nil {
			return nil, err
		}
		renders = append(renders, render)
	}

	members, err := db.FindMembersByUser(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "could not list memberships")
	}
	for _, member := range members {
		journal, err := db.FindJournalByID(member.JournalID)
		if err != nil {
			return nil, errors.Wrap(err, "could not load shared journal")
		}
		if journal.Deleted {
			continue
		}

		role := RoleReadWrite
		if member.ReadOnly {
			role = RoleReadOnly
		}
		render, err := RenderJournal(db, user, journal, role)
		if err != nil {
			return nil, err
		}
		renders = append(renders, render)
	}

	return renders, nil
}

// RenderJournal builds the API representation of a journal for the user.
func RenderJournal(db database.Client, user *model.User, journal *model.Journal, role Role) (*JournalRender, error) {
	owner, err := db.FindUser(journal.OwnerID)
	if err != nil {
		return nil, errors.Wrap(err, "could not load journal owner")
	}

	render := &JournalRender{
		UID:      journal.UID,
		Version:  journal.Version,
		Content:  journal.Content,
		Owner:    owner.Email,
		Modified: journal.UpdatedAt,
	}

	if role == RoleReadOnly || role == RoleReadWrite {
		member, err := db.FindMember(journal.ID, user.ID)
		if err != nil {
			return nil, errors.Wrap(err, "could not load membership")
		}
		render.Key = member.Key
		render.ReadOnly = member.ReadOnly
	}

	tip, err := db.LastEntry(journal.ID)
	if err != nil {
		return nil, errors.Wrap(err, "could not read the log tail")
	}
	if tip != nil {
		render.Tip = tip.UID
	}

	return render, nil
}

// UpdateJournal replaces the journal's content. Owner only.
// The row is re-read right before the write so a struct resolved earlier
// cannot carry stale fields back into storage.
func UpdateJournal(db database.Client, journal *model.Journal, role Role, params UpdateJournalParams) error {
	if role != RoleOwner {
		return jserror.Forbidden("Only the owner can update the journal.")
	}
	if len(params.Content) == 0 {
		return jserror.Validation("Journal content can't be empty.")
	}

	fresh, err := db.FindJournalByID(journal.ID)
	if err != nil {
		return errors.Wrap(err, "could not reload journal")
	}
	fresh.Content = params.Content
	if err = db.Save(fresh); err != nil {
		return errors.Wrap(err, "could not save journal")
	}

	*journal = *fresh
	return nil
}

// DeleteJournal soft-deletes the journal. Owner only.
// The row, its log and its members are retained, but the journal becomes
// indistinguishable from a non-existent one through the API.
func DeleteJournal(db database.Client, journal *model.Journal, role Role) error {
	if role != RoleOwner {
		return jserror.Forbidden("Only the owner can delete the journal.")
	}

	fresh, err := db.FindJournalByID(journal.ID)
	if err != nil {
		return errors.Wrap(err, "could not reload journal")
	}
	fresh.Deleted = true
	if err = db.Save(fresh); err != nil {
		return errors.Wrap(err, "could not save journal")
	}

	*journal = *fresh
	return nil
}
