package server

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/model"
	"github.com/mdouchement/journalsync/internal/server/middlewares"
)

// A Controller is an Inversion Of Control pattern used to init the server package.
type Controller struct {
	Version        string
	Database       database.Client
	NoRegistration bool
	// Debug enables the account reset endpoint. Never enable in production.
	Debug bool
	// JWT params
	SigningKey []byte
}

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl Controller) *echo.Echo {
	engine := echo.New()
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	engine.Use(middleware.Gzip())

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
	}))
	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler

	engine.Pre(middleware.Rewrite(map[string]string{
		"/": "/version",
	}))

	////////////
	// Router //
	////////////

	router := engine.Group("")
	restricted := router.Group("")
	restricted.Use(middlewares.Authentication(ctrl.Database, ctrl.SigningKey))

	// generic handlers
	//
	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})

	//
	// auth handlers
	//
	auth := &auth{
		db:         ctrl.Database,
		signingKey: ctrl.SigningKey,
	}
	if !ctrl.NoRegistration {
		router.POST("/auth", auth.Register)
	}
	router.POST("/auth/sign_in", auth.Login)

	//
	// journal handlers
	//
	journal := &journal{
		db: ctrl.Database,
	}
	restricted.GET("/journals", journal.List)
	restricted.POST("/journals", journal.Create)
	restricted.GET("/journals/:uid", journal.Get)
	restricted.PUT("/journals/:uid", journal.Update)
	restricted.DELETE("/journals/:uid", journal.Delete)

	//
	// entry handlers
	//
	entry := &entry{
		db: ctrl.Database,
	}
	restricted.GET("/journals/:uid/entries", entry.List)
	restricted.POST("/journals/:uid/entries", entry.Append)
	// Entries are immutable and undeletable.
	restricted.PUT("/journals/:uid/entries/:euid", entry.Reject)
	restricted.PATCH("/journals/:uid/entries/:euid", entry.Reject)
	restricted.DELETE("/journals/:uid/entries/:euid", entry.RejectDelete)

	//
	// member handlers
	//
	member := &member{
		db: ctrl.Database,
	}
	restricted.GET("/journals/:uid/members", member.List)
	restricted.POST("/journals/:uid/members", member.Grant)
	restricted.DELETE("/journals/:uid/members/:email", member.Revoke)

	//
	// user info handlers
	//
	info := &userinfo{
		db: ctrl.Database,
	}
	restricted.GET("/users/:email/info", info.Get)
	restricted.POST("/users/:email/info", info.Create)
	restricted.DELETE("/users/:email/info", info.Delete)

	//
	// debug handlers
	//
	if ctrl.Debug {
		debug := &debug{
			db: ctrl.Database,
		}
		restricted.POST("/reset", debug.Reset)
	}

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}

func currentUser(c echo.Context) *model.User {
	user, ok := c.Get(middlewares.CurrentUserContextKey).(*model.User)
	if ok {
		return user
	}
	return nil
}
