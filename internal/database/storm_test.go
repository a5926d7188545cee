package database_test

import (
	"os"
	"testing"

	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/model"
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

func TestStormUniqueEmail(t *testing.T) {
	db, cleanup := setup(t)
	defer cleanup()

	require.NoError(t, db.Save(&model.User{Email: "george.abitbol@nowhere.lan"}))

	err := db.Save(&model.User{Email: "george.abitbol@nowhere.lan"})
	require.Error(t, err)
	assert.True(t, db.IsAlreadyExists(err))
	assert.False(t, db.IsNotFound(err))
}
