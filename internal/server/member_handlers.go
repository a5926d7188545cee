package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/server/service"
)

// member contains all membership handlers.
type member struct {
	db database.Client
}

///// List
////
//

// List returns the journal's memberships. Owner only.
func (h *member) List(c echo.Context) error {
	journal, role, err := service.ResolveJournal(h.db, currentUser(c), c.Param("uid"))
	if err != nil {
		return err
	}

	renders, err := service.ListMembers(h.db, journal, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, renders)
}

///// Grant
////
//

// Grant shares the journal with another account. Owner only.
func (h *member) Grant(c echo.Context) error {
	journal, role, err := service.ResolveJournal(h.db, currentUser(c), c.Param("uid"))
	if err != nil {
		return err
	}

	var params service.GrantParams
	if err = c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, jserror.New("Could not get member params."))
	}

	if err = service.GrantMember(h.db, journal, role, params); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{})
}

///// Revoke
////
//

// Revoke removes an account's membership. Owner only.
func (h *member) Revoke(c echo.Context) error {
	journal, role, err := service.ResolveJournal(h.db, currentUser(c), c.Param("uid"))
	if err != nil {
		return err
	}

	if err = service.RevokeMember(h.db, journal, role, c.Param("email")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
