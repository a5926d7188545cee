package service

import (
	"sync"

	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/model"
	"github.com/pkg/errors"
)

// appendLocks serializes appenders per journal. Contention is scoped to one
// journal's log tail, unrelated journals never block each other.
// Entries are refcounted and evicted once the last holder releases, so the
// table only holds journals with an append in flight.
var appendLocks = &lockTable{locks: make(map[string]*lockEntry)}

type lockTable struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sync.Mutex
	refs int
}

func (t *lockTable) lock(id string) (unlock func()) {
	t.mu.Lock()
	e, ok := t.locks[id]
	if !ok {
		e = &lockEntry{}
		t.locks[id] = e
	}
	e.refs++
	t.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()

		t.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(t.locks, id)
		}
		t.mu.Unlock()
	}
}

type (
	// An EntryParams is one entry of an append batch.
	EntryParams struct {
		UID     string `json:"uid"`
		Content []byte `json:"content"`
	}

	// An AppendParams is used when a client wants to append entries to a
	// journal's log. Last is the uid of the entry the client believes is the
	// current tail, empty when the client believes the log empty.
	AppendParams struct {
		Last    string
		Entries []EntryParams
	}

	// An Append is a service appending a batch of entries to a journal's log.
	//
	// The declared last entry works as a compare-and-swap token on the log
	// tail: the true tail is re-read under the journal's lock and compared to
	// it before anything is persisted. The whole batch commits atomically or
	// not at all.
	Append struct {
		db      database.Client
		journal *model.Journal
		role    Role
		params  AppendParams
	}
)

// NewAppend instantiates a new Append service.
func NewAppend(db database.Client, journal *model.Journal, role Role, params AppendParams) *Append {
	return &Append{
		db:      db,
		journal: journal,
		role:    role,
		params:  params,
	}
}

// Execute performs the append.
func (s *Append) Execute() error {
	if !s.role.CanAppend() {
		return jserror.Forbidden("Journal is read-only.")
	}

	if len(s.params.Entries) == 0 {
		return jserror.Validation("No entries provided.")
	}
	for _, params := range s.params.Entries {
		if !model.ValidUID(params.UID) {
			return jserror.Validation("Invalid entry uid.")
		}
		if len(params.Content) == 0 {
			return jserror.Validation("Entry content can't be empty.")
		}
	}

	unlock := appendLocks.lock(s.journal.ID)
	defer unlock()

	last, err := s.db.LastEntry(s.journal.ID)
	if err != nil {
		return errors.Wrap(err, "could not read the log tail")
	}

	if s.params.Last == "" {
		if last != nil {
			return jserror.Conflict("The journal is no longer empty.")
		}
	} else {
		if _, err = s.db.FindEntryByUID(s.journal.ID, s.params.Last); err != nil {
			if s.db.IsNotFound(err) {
				return jserror.NotFound("Unknown last entry.")
			}
			return errors.Wrap(err, "could not read the declared last entry")
		}

		if last == nil || last.UID != s.params.Last {
			return jserror.Conflict("The declared last entry is stale.")
		}
	}

	// The tail read under the lock is the only sequence authority, so a
	// concurrent journal update saving a stale row cannot roll it back.
	var seq uint64
	if last != nil {
		seq = last.Seq
	}

	seen := make(map[string]bool, len(s.params.Entries))
	entries := make([]*model.Entry, 0, len(s.params.Entries))
	for _, params := range s.params.Entries {
		if seen[params.UID] {
			return jserror.Duplicate("Entry uid already used in the batch.")
		}
		seen[params.UID] = true

		_, err = s.db.FindEntryByUID(s.journal.ID, params.UID)
		if err == nil {
			return jserror.Duplicate("Entry uid already exists in the journal.")
		}
		if !s.db.IsNotFound(err) {
			return errors.Wrap(err, "could not check entry uniqueness")
		}

		seq++
		entries = append(entries, &model.Entry{
			JournalID: s.journal.ID,
			UID:       params.UID,
			Seq:       seq,
			Content:   params.Content,
		})
	}

	return errors.Wrap(s.db.CreateEntries(s.journal, entries), "could not append entries")
}
