package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/journalsync/internal/database"
)

// debug contains handlers only routed under debug configuration.
type debug struct {
	db database.Client
}

///// Reset
////
//

// Reset wipes the current user's journals with their logs and members.
// Used by client test suites to start from a clean slate.
func (h *debug) Reset(c echo.Context) error {
	if err := h.db.PurgeJournals(currentUser(c).ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}
