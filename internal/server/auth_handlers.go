package server

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/model"
	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
)

// auth contains all authentication handlers.
type auth struct {
	db         database.Client
	signingKey []byte
}

type credentialsParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

///// Register
////
//

// Register handler is used to register the user.
func (h *auth) Register(c echo.Context) error {
	// Filter params
	var params credentialsParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusUnauthorized, jserror.New("Could not get user's params."))
	}

	if params.Email == "" {
		return c.JSON(http.StatusUnauthorized, jserror.New("No email provided."))
	}
	if params.Password == "" {
		return c.JSON(http.StatusUnauthorized, jserror.New("No password provided."))
	}

	// Check if the email is free to use.
	_, err := h.db.FindUserByMail(params.Email)
	if err == nil {
		return c.JSON(http.StatusUnauthorized, jserror.New("This email is already registered."))
	}
	if !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get access to database")
	}

	user := &model.User{
		Email:             params.Email,
		PasswordUpdatedAt: time.Now().Unix(),
	}
	user.Password, err = argon2.GenerateFromPasswordString(params.Password, argon2.Default)
	if err != nil {
		return errors.Wrap(err, "could not hash the password")
	}

	if err = h.db.Save(user); err != nil {
		// The email check above races with concurrent registrations, the
		// unique constraint is the authority.
		if h.db.IsAlreadyExists(err) {
			return c.JSON(http.StatusUnauthorized, jserror.New("This email is already registered."))
		}
		return err
	}

	token, err := h.TokenFromUser(user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"email": user.Email,
		},
	})
}

///// Login
////
//

// Login used for authenticates a user and returns a JWT.
func (h *auth) Login(c echo.Context) error {
	// Filter params
	var params credentialsParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, jserror.New("Could not get credentials."))
	}

	user, err := h.db.FindUserByMail(params.Email)
	if err != nil {
		if h.db.IsNotFound(err) {
			return c.JSON(http.StatusUnauthorized, jserror.New("Invalid email or password."))
		}
		return errors.Wrap(err, "could not get access to database")
	}

	if err = argon2.CompareHashAndPasswordString(user.Password, params.Password); err != nil {
		return c.JSON(http.StatusUnauthorized, jserror.New("Invalid email or password."))
	}

	token, err := h.TokenFromUser(user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"email": user.Email,
		},
	})
}

// TokenFromUser returns a JWT token for the given user.
func (h *auth) TokenFromUser(u *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_uuid": u.ID,
		"iat":       time.Now().Unix(),
	})

	t, err := token.SignedString(h.signingKey)
	return t, errors.Wrap(err, "could not sign the token")
}
