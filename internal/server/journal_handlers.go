package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/server/service"
)

// journal contains all journal registry handlers.
type journal struct {
	db database.Client
}

///// List
////
//

// List returns all the journals visible to the current user.
func (h *journal) List(c echo.Context) error {
	renders, err := service.ListJournals(h.db, currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, renders)
}

///// Create
////
//

// Create registers a new journal pushed by its owner.
func (h *journal) Create(c echo.Context) error {
	var params service.CreateJournalParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, jserror.New("Could not get journal params."))
	}

	if err := service.CreateJournal(h.db, currentUser(c), params); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{})
}

///// Get
////
//

// Get returns one journal with the current user's key material and log tip.
func (h *journal) Get(c echo.Context) error {
	user := currentUser(c)
	journal, role, err := service.ResolveJournal(h.db, user, c.Param("uid"))
	if err != nil {
		return err
	}

	render, err := service.RenderJournal(h.db, user, journal, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, render)
}

///// Update
////
//

// Update replaces the journal's content. Owner only, uid/owner/version fields
// of the payload are disregarded.
func (h *journal) Update(c echo.Context) error {
	user := currentUser(c)
	journal, role, err := service.ResolveJournal(h.db, user, c.Param("uid"))
	if err != nil {
		return err
	}

	var params service.UpdateJournalParams
	if err = c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, jserror.New("Could not get journal params."))
	}

	if err = service.UpdateJournal(h.db, journal, role, params); err != nil {
		return err
	}

	render, err := service.RenderJournal(h.db, user, journal, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, render)
}

///// Delete
////
//

// Delete soft-deletes the journal. Owner only.
func (h *journal) Delete(c echo.Context) error {
	journal, role, err := service.ResolveJournal(h.db, currentUser(c), c.Param("uid"))
	if err != nil {
		return err
	}

	if err = service.DeleteJournal(h.db, journal, role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
