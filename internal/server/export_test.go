package server

import "github.com/mdouchement/journalsync/internal/model"

// This file is only for test purpose and is only loaded by test framework.

// TokenFromUser returns a JWT token for the given user.
func TokenFromUser(ctrl Controller, u *model.User) string {
	a := &auth{signingKey: ctrl.SigningKey}
	token, err := a.TokenFromUser(u)
	if err != nil {
		panic(err)
	}
	return token
}
