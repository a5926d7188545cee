package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/server/service"
)

// entry contains all journal log handlers.
type entry struct {
	db database.Client
}

///// List
////
//

// List returns the journal's entries strictly after the `last` cursor, in log
// order, truncated to `limit` if given.
func (h *entry) List(c echo.Context) error {
	journal, _, err := service.ResolveJournal(h.db, currentUser(c), c.Param("uid"))
	if err != nil {
		return err
	}

	params := service.SyncParams{
		Last: c.QueryParam("last"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		params.Limit, err = strconv.Atoi(raw)
		if err != nil || params.Limit < 0 {
			return jserror.Validation("Invalid limit.")
		}
	}

	sync := service.NewSync(h.db, journal, params)
	if err = sync.Execute(); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sync.Entries)
}

///// Append
////
//

// Append adds one entry or a batch of entries to the journal's log.
// The `last` query parameter is the client's declared last-entry uid, omitted
// only when the client believes the log empty.
func (h *entry) Append(c echo.Context) error {
	journal, role, err := service.ResolveJournal(h.db, currentUser(c), c.Param("uid"))
	if err != nil {
		return err
	}

	entries, err := bindEntries(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, jserror.New("Could not get entries params."))
	}

	svc := service.NewAppend(h.db, journal, role, service.AppendParams{
		Last:    c.QueryParam("last"),
		Entries: entries,
	})
	if err = svc.Execute(); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{})
}

///// Reject
////
//

// Reject refuses any mutation of a committed entry.
func (h *entry) Reject(c echo.Context) error {
	if _, _, err := service.ResolveJournal(h.db, currentUser(c), c.Param("uid")); err != nil {
		return err
	}
	return jserror.Forbidden("Entries are immutable.")
}

// RejectDelete refuses any removal of a committed entry.
func (h *entry) RejectDelete(c echo.Context) error {
	if _, _, err := service.ResolveJournal(h.db, currentUser(c), c.Param("uid")); err != nil {
		return err
	}
	return c.JSON(http.StatusMethodNotAllowed, jserror.New("Entries cannot be deleted."))
}

// bindEntries accepts a single entry object or a batch of them.
func bindEntries(c echo.Context) ([]service.EntryParams, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(bytes.TrimLeft(body, " \t\r\n"), []byte("[")) {
		var entries []service.EntryParams
		err = json.Unmarshal(body, &entries)
		return entries, err
	}

	var params service.EntryParams
	if err = json.Unmarshal(body, &params); err != nil {
		return nil, err
	}
	return []service.EntryParams{params}, nil
}
