package database

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/gofrs/uuid"
	"github.com/mdouchement/journalsync/internal/model"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(msgpack.Codec)

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range []interface{}{&model.User{}, &model.Journal{}, &model.Entry{}, &model.Member{}, &model.UserInfo{}} {
		if err := db.Init(m); err != nil {
			return errors.Wrap(err, "could not init index")
		}
	}
	return nil
}

// StormReIndex reindex Storm database.
func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range []interface{}{&model.User{}, &model.Journal{}, &model.Entry{}, &model.Member{}, &model.UserInfo{}} {
		if err := db.ReIndex(m); err != nil {
			return errors.Wrap(err, "could not reindex")
		}
	}
	return nil
}

// StormOpen returns a new Storm database connection.
func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db: db,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == "" {
		m.SetID(uuid.Must(uuid.NewV4()).String())
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.db.Save(m), "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.db.DeleteStruct(m), "could not delete the model")
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// IsAlreadyExists returns true if err is a unique constraint violation.
func (c *strm) IsAlreadyExists(err error) bool {
	return errors.Cause(err) == storm.ErrAlreadyExists
}

// FindUser returns the user for the given id (UUID).
func (c *strm) FindUser(id string) (*model.User, error) {
	var user model.User
	if err := c.db.One("ID", id, &user); err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

// FindUserByMail returns the user for the given email.
func (c *strm) FindUserByMail(email string) (*model.User, error) {
	var user model.User
	if err := c.db.One("Email", email, &user); err != nil {
		return nil, errors.Wrap(err, "find user by mail")
	}
	return &user, nil
}

// FindJournal returns the owner's journal for the given uid.
func (c *strm) FindJournal(ownerID, uid string) (*model.Journal, error) {
	var journal model.Journal
	err := c.db.Select(q.Eq("OwnerID", ownerID), q.Eq("UID", uid)).First(&journal)
	if err != nil {
		return nil, errors.Wrap(err, "find journal by owner and uid")
	}
	return &journal, nil
}

// FindJournalByID returns the journal for the given id (UUID).
func (c *strm) FindJournalByID(id string) (*model.Journal, error) {
	var journal model.Journal
	if err := c.db.One("ID", id, &journal); err != nil {
		return nil, errors.Wrap(err, "find journal by id")
	}
	return &journal, nil
}

// FindJournalsByUID returns all journals carrying the given uid, any owner.
func (c *strm) FindJournalsByUID(uid string) ([]*model.Journal, error) {
	journals := make([]*model.Journal, 0)
	err := c.db.Select(q.Eq("UID", uid)).Find(&journals)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find journals by uid")
	}
	return journals, nil
}

// FindJournalsByOwner returns all the owner's journals, soft-deleted excluded.
func (c *strm) FindJournalsByOwner(ownerID string) ([]*model.Journal, error) {
	journals := make([]*model.Journal, 0)
	err := c.db.Select(q.Eq("OwnerID", ownerID), q.Eq("Deleted", false)).OrderBy("CreatedAt").Find(&journals)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find journals by owner")
	}
	return journals, nil
}

// PurgeJournals removes the owner's journals with their entries and members.
func (c *strm) PurgeJournals(ownerID string) error {
	journals := make([]*model.Journal, 0)
	err := c.db.Select(q.Eq("OwnerID", ownerID)).Find(&journals)
	if err != nil {
		if c.IsNotFound(err) {
			return nil
		}
		return errors.Wrap(err, "could not find journals to purge")
	}

	tx, err := c.db.Begin(true)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback()

	for _, journal := range journals {
		err = tx.Select(q.Eq("JournalID", journal.ID)).Delete(&model.Entry{})
		if err != nil && errors.Cause(err) != storm.ErrNotFound {
			return errors.Wrap(err, "could not purge entries")
		}

		err = tx.Select(q.Eq("JournalID", journal.ID)).Delete(&model.Member{})
		if err != nil && errors.Cause(err) != storm.ErrNotFound {
			return errors.Wrap(err, "could not purge members")
		}

		if err = tx.DeleteStruct(journal); err != nil {
			return errors.Wrap(err, "could not purge journal")
		}
	}

	return errors.Wrap(tx.Commit(), "could not purge journals")
}

// FindEntryByUID returns the journal's entry for the given uid.
func (c *strm) FindEntryByUID(journalID, uid string) (*model.Entry, error) {
	var entry model.Entry
	err := c.db.Select(q.Eq("JournalID", journalID), q.Eq("UID", uid)).First(&entry)
	if err != nil {
		return nil, errors.Wrap(err, "find entry by uid")
	}
	return &entry, nil
}

// LastEntry returns the most recently appended entry of the journal.
func (c *strm) LastEntry(journalID string) (*model.Entry, error) {
	var entry model.Entry
	err := c.db.Select(q.Eq("JournalID", journalID)).OrderBy("Seq").Reverse().First(&entry)
	if err != nil {
		if c.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find last entry")
	}
	return &entry, nil
}

// FindEntriesAfter returns the journal's entries strictly after seq, in log order.
func (c *strm) FindEntriesAfter(journalID string, seq uint64, limit int) ([]*model.Entry, error) {
	entries := make([]*model.Entry, 0)
	stmt := c.db.Select(q.Eq("JournalID", journalID), q.Gt("Seq", seq)).OrderBy("Seq")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	err := stmt.Find(&entries)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find entries")
	}
	return entries, nil
}

// CreateEntries persists the batch in a single transaction and bumps the
// journal's modified timestamp. The journal row is re-read inside the
// transaction so a stale caller struct never overwrites a concurrent update.
func (c *strm) CreateEntries(journal *model.Journal, entries []*model.Entry) error {
	tx, err := c.db.Begin(true)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback()

	t := time.Now().UTC()
	for _, entry := range entries {
		entry.SetID(uuid.Must(uuid.NewV4()).String())
		entry.SetCreatedAt(t)
		entry.SetUpdatedAt(t)

		if err = tx.Save(entry); err != nil {
			return errors.Wrap(err, "could not save entry")
		}
	}

	var fresh model.Journal
	if err = tx.One("ID", journal.ID, &fresh); err != nil {
		return errors.Wrap(err, "could not reload journal")
	}
	fresh.SetUpdatedAt(t)
	if err = tx.Save(&fresh); err != nil {
		return errors.Wrap(err, "could not save journal")
	}

	return errors.Wrap(tx.Commit(), "could not commit entries")
}

// FindMember returns the membership of user on the journal.
func (c *strm) FindMember(journalID, userID string) (*model.Member, error) {
	var member model.Member
	err := c.db.Select(q.Eq("JournalID", journalID), q.Eq("UserID", userID)).First(&member)
	if err != nil {
		return nil, errors.Wrap(err, "find member")
	}
	return &member, nil
}

// FindMembersByJournal returns all memberships of the journal.
func (c *strm) FindMembersByJournal(journalID string) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	err := c.db.Select(q.Eq("JournalID", journalID)).OrderBy("CreatedAt").Find(&members)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find members by journal")
	}
	return members, nil
}

// FindMembersByUser returns all the user's memberships.
func (c *strm) FindMembersByUser(userID string) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	err := c.db.Select(q.Eq("UserID", userID)).OrderBy("CreatedAt").Find(&members)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find members by user")
	}
	return members, nil
}

// FindUserInfo returns the info record owned by the given user.
func (c *strm) FindUserInfo(ownerID string) (*model.UserInfo, error) {
	var info model.UserInfo
	if err := c.db.One("OwnerID", ownerID, &info); err != nil {
		return nil, errors.Wrap(err, "find user info")
	}
	return &info, nil
}
