package database

import (
	"github.com/mdouchement/journalsync/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is a unique constraint violation.
		IsAlreadyExists(err error) bool

		UserInteraction
		JournalInteraction
		EntryInteraction
		MemberInteraction
		UserInfoInteraction
	}

	// An UserInteraction defines all the methods used to interact with a user record.
	UserInteraction interface {
		// FindUser returns the user for the given id (UUID).
		FindUser(id string) (*model.User, error)
		// FindUserByMail returns the user for the given email.
		FindUserByMail(email string) (*model.User, error)
	}

	// A JournalInteraction defines all the methods used to interact with journal records.
	JournalInteraction interface {
		// FindJournal returns the owner's journal for the given uid.
		FindJournal(ownerID, uid string) (*model.Journal, error)
		// FindJournalByID returns the journal for the given id (UUID).
		FindJournalByID(id string) (*model.Journal, error)
		// FindJournalsByUID returns all journals carrying the given uid, any owner.
		FindJournalsByUID(uid string) ([]*model.Journal, error)
		// FindJournalsByOwner returns all the owner's journals, soft-deleted excluded.
		FindJournalsByOwner(ownerID string) ([]*model.Journal, error)
		// PurgeJournals removes the owner's journals with their entries and
		// members. Debug/test envs only, production journals are never hard-deleted.
		PurgeJournals(ownerID string) error
	}

	// An EntryInteraction defines all the methods used to interact with a journal's log.
	EntryInteraction interface {
		// FindEntryByUID returns the journal's entry for the given uid.
		FindEntryByUID(journalID, uid string) (*model.Entry, error)
		// LastEntry returns the most recently appended entry of the journal.
		// It returns nil when the log is empty.
		LastEntry(journalID string) (*model.Entry, error)
		// FindEntriesAfter returns the journal's entries with a sequence number
		// strictly greater than seq, in log order, capped to limit if positive.
		FindEntriesAfter(journalID string, seq uint64, limit int) ([]*model.Entry, error)
		// CreateEntries persists the batch and the journal in a single
		// transaction. All entries commit or none do.
		CreateEntries(journal *model.Journal, entries []*model.Entry) error
	}

	// A MemberInteraction defines all the methods used to interact with membership records.
	MemberInteraction interface {
		// FindMember returns the membership of user on the journal.
		FindMember(journalID, userID string) (*model.Member, error)
		// FindMembersByJournal returns all memberships of the journal.
		FindMembersByJournal(journalID string) ([]*model.Member, error)
		// FindMembersByUser returns all the user's memberships.
		FindMembersByUser(userID string) ([]*model.Member, error)
	}

	// An UserInfoInteraction defines all the methods used to interact with a user info record.
	UserInfoInteraction interface {
		// FindUserInfo returns the info record owned by the given user.
		FindUserInfo(ownerID string) (*model.UserInfo, error)
	}
)
