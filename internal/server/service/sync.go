package service

import (
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/model"
	"github.com/pkg/errors"
)

type (
	// A SyncParams is used when a client wants to fetch entries after its
	// cursor. Last is the uid of an entry the client has already seen, empty
	// to read from the head of the log. Limit caps the page, 0 means all.
	SyncParams struct {
		Last  string
		Limit int
	}

	// An EntryRender is the API representation of an entry.
	EntryRender struct {
		UID     string `json:"uid"`
		Content []byte `json:"content"`
	}

	// A Sync is a service reading a journal's log from a cursor.
	// For a given cursor and an unchanged log, repeated executions return
	// identical pages.
	Sync struct {
		db      database.Client
		journal *model.Journal
		params  SyncParams

		// Populated during Execute().
		Entries []*EntryRender
	}
)

// NewSync instantiates a new Sync service.
func NewSync(db database.Client, journal *model.Journal, params SyncParams) *Sync {
	return &Sync{
		db:      db,
		journal: journal,
		params:  params,
	}
}

// Execute performs the read.
func (s *Sync) Execute() error {
	var seq uint64
	if s.params.Last != "" {
		cursor, err := s.db.FindEntryByUID(s.journal.ID, s.params.Last)
		if err != nil {
			if s.db.IsNotFound(err) {
				return jserror.NotFound("Unknown entry cursor.")
			}
			return errors.Wrap(err, "could not read the entry cursor")
		}
		seq = cursor.Seq
	}

	entries, err := s.db.FindEntriesAfter(s.journal.ID, seq, s.params.Limit)
	if err != nil {
		return errors.Wrap(err, "could not read the log")
	}

	s.Entries = make([]*EntryRender, 0, len(entries))
	for _, entry := range entries {
		s.Entries = append(s.Entries, &EntryRender{
			UID:     entry.UID,
			Content: entry.Content,
		})
	}
	return nil
}
