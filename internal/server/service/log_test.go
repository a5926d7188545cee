package service_test

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"testing"

	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/model"
	"github.com/mdouchement/journalsync/internal/server/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (database.Client, func()) {
	tmpfile, err := os.CreateTemp("", "journalsync.*.db")
	require.NoError(t, err)
	filename := tmpfile.Name()
	tmpfile.Close()

	db, err := database.StormOpen(filename)
	require.NoError(t, err)

	return db, func() {
		db.Close()
		os.RemoveAll(filename)
	}
}

func createJournal(t *testing.T, db database.Client) *model.Journal {
	journal := &model.Journal{
		UID:     huid(1),
		OwnerID: "b329a187-ddf8-4e9b-960d-49c272a58794",
		Version: 1,
		Content: []byte("ciphertext"),
	}
	require.NoError(t, db.Save(journal))
	return journal
}

func huid(seed int) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(strconv.Itoa(seed))))
}

func entry(seed int) service.EntryParams {
	return service.EntryParams{
		UID:     huid(seed),
		Content: []byte("content-" + strconv.Itoa(seed)),
	}
}

func TestAppendAssignsLogOrder(t *testing.T) {
	db, cleanup := setup(t)
	defer cleanup()
	journal := createJournal(t, db)

	svc := service.NewAppend(db, journal, service.RoleOwner, service.AppendParams{
		Entries: []service.EntryParams{entry(1), entry(2), entry(3)},
	})
	require.NoError(t, svc.Execute())

	entries, err := db.FindEntriesAfter(journal.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, huid(i+1), e.UID)
		assert.Equal(t, uint64(i+1), e.Seq)
	}

	tip, err := db.LastEntry(journal.ID)
	require.NoError(t, err)
	assert.Equal(t, huid(3), tip.UID)
	assert.Equal(t, uint64(3), tip.Seq)
}

func TestAppendCompareAndSwap(t *testing.T) {
	db, cleanup := setup(t)
	defer cleanup()
	journal := createJournal(t, db)

	svc := service.NewAppend(db, journal, service.RoleOwner, service.AppendParams{
		Entries: []service.EntryParams{entry(1)},
	})
	require.NoError(t, svc.Execute())

	// Two appenders declare the same tail, only one can win.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			j, err := db.FindJournalByID(journal.ID)
			if err != nil {
				results[i] = err
				return
			}

			svc := service.NewAppend(db, j, service.RoleOwner, service.AppendParams{
				Last:    huid(1),
				Entries: []service.EntryParams{entry(10 + i)},
			})
			results[i] = svc.Execute()
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		if jserror.StatusCode(err) == http.StatusConflict {
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	// The log contains exactly the winner's entry after the initial one.
	entries, err := db.FindEntriesAfter(journal.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAppendSequenceSurvivesJournalUpdate(t *testing.T) {
	db, cleanup := setup(t)
	defer cleanup()
	journal := createJournal(t, db)

	// The journal struct is resolved before any entry lands.
	stale, err := db.FindJournalByID(journal.ID)
	require.NoError(t, err)

	svc := service.NewAppend(db, journal, service.RoleOwner, service.AppendParams{
		Entries: []service.EntryParams{entry(1)},
	})
	require.NoError(t, svc.Execute())

	// The update writes through the pre-append struct.
	require.NoError(t, service.UpdateJournal(db, stale, service.RoleOwner, service.UpdateJournalParams{
		Content: []byte("rewrapped"),
	}))

	// An append with a genuinely current cursor must keep the order strict.
	svc = service.NewAppend(db, journal, service.RoleOwner, service.AppendParams{
		Last:    huid(1),
		Entries: []service.EntryParams{entry(2)},
	})
	require.NoError(t, svc.Execute())

	entries, err := db.FindEntriesAfter(journal.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(1), entries[0].Seq)
	assert.Equal(t, uint64(2), entries[1].Seq)

	// The entry appended after the cursor is reachable from it.
	sync := service.NewSync(db, journal, service.SyncParams{Last: huid(1)})
	require.NoError(t, sync.Execute())
	require.Len(t, sync.Entries, 1)
	assert.Equal(t, huid(2), sync.Entries[0].UID)

	// And the append did not clobber the updated content.
	fresh, err := db.FindJournalByID(journal.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("rewrapped"), fresh.Content)
}

func TestAppendConflictOutcomes(t *testing.T) {
	db, cleanup := setup(t)
	defer cleanup()
	journal := createJournal(t, db)

	// Believed empty on an empty log is trivially accepted.
	svc := service.NewAppend(db, journal, service.RoleOwner, service.AppendParams{
		Entries: []service.EntryParams{entry(1), entry(2)},
	})
	require.NoError(t, svc.Execute())

	// Believed empty on a non-empty log.
	svc = service.NewAppend(db, journal, service.RoleOwner, service.AppendParams{
		Entries: []service.EntryParams{entry(3)},
	})
	assert.Equal(t, http.StatusConflict, jserror.StatusCode(svc.Execute()))

	// Stale cursor: it exists but is not the tail.
	svc = service.NewAppend(db, journal, service.RoleOwner, service.AppendParams{
		Last:    huid(1),
		Entries: []service.EntryParams{entry(3)},
	})
	assert.Equal(t, http.StatusConflict, jserror.StatusCode(svc.Execute()))

	// Unknown cursor: not in the log at all.
	svc = service.NewAppend(db, journal, service.RoleOwner, service.AppendParams{
		Last:    huid(99),
		Entries: []service.EntryParams{entry(3)},
	})
	assert.Equal(t, http.StatusNotFound, jserror.StatusCode(svc.Execute()))

	// Nothing was committed by the failed attempts.
	entries, err := db.FindEntriesAfter(journal.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAppendDuplicateIsAtomic(t *testing.T) {
	db, cleanup := setup(t)
	defer cleanup()
	journal := createJournal(t, db)

	svc := service.NewAppend(db, journal, service.RoleOwner, service.AppendParams{
		Entries: []service.EntryParams{entry(1)},
	})
	require.NoError(t, svc.Execute())

	// A valid entry followed by a duplicate commits nothing.
	svc = service.NewAppend(db, journal, service.RoleOwner, service.AppendParams{
		Last:    huid(1),
		Entries: []service.EntryParams{entry(2), entry(1)},
	})
	err := svc.Execute()
	assert.Equal(t, http.StatusBadRequest, jserror.StatusCode(err))
	assert.Equal(t, jserror.TagDuplicate, jserror.Tag(err))

	entries, err := db.FindEntriesAfter(journal.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAppendReadOnlyRole(t *testing.T) {
	db, cleanup := setup(t)
	defer cleanup()
	journal := createJournal(t, db)

	svc := service.NewAppend(db, journal, service.RoleReadOnly, service.AppendParams{
		Entries: []service.EntryParams{entry(1)},
	})
	assert.Equal(t, http.StatusForbidden, jserror.StatusCode(svc.Execute()))

	tip, err := db.LastEntry(journal.ID)
	require.NoError(t, err)
	assert.Nil(t, tip)
}
