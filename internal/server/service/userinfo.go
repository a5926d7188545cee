package service

import (
	"github.com/mdouchement/journalsync/internal/database"
	"github.com/mdouchement/journalsync/internal/jserror"
	"github.com/mdouchement/journalsync/internal/model"
	"github.com/pkg/errors"
)

type (
	// An UserInfoParams is used when an account publishes its key material.
	UserInfoParams struct {
		Version int    `json:"version"`
		Pubkey  []byte `json:"pubkey"`
		Content []byte `json:"content"`
	}

	// An UserInfoRender is the viewer-appropriate projection of an account's
	// key material. Content is only present for the owning account.
	UserInfoRender struct {
		Version int    `json:"version"`
		Pubkey  []byte `json:"pubkey"`
		Content []byte `json:"content,omitempty"`
	}
)

// GetUserInfo returns the key material of the account behind email,
// projected for the viewer. The private content is stripped unless the
// viewer is the owning account.
func GetUserInfo(db database.Client, viewer *model.User, email string) (*UserInfoRender, error) {
	owner, err := db.FindUserByMail(email)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, jserror.NotFound("User not found.")
		}
		return nil, errors.Wrap(err, "could not load user")
	}

	info, err := db.FindUserInfo(owner.ID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, jserror.NotFound("User info not found.")
		}
		return nil, errors.Wrap(err, "could not load user info")
	}

	render := &UserInfoRender{
		Version: info.Version,
		Pubkey:  info.Pubkey,
	}
	if viewer.ID == owner.ID {
		render.Content = info.Content
	}
	return render, nil
}

// CreateUserInfo publishes the owner's key material. One record per account.
func CreateUserInfo(db database.Client, owner *model.User, params UserInfoParams) error {
	if len(params.Pubkey) == 0 {
		return jserror.Validation("Pubkey can't be empty.")
	}

	_, err := db.FindUserInfo(owner.ID)
	if err == nil {
		return jserror.Duplicate("User info already exists.")
	}
	if !db.IsNotFound(err) {
		return errors.Wrap(err, "could not check user info uniqueness")
	}

	version := params.Version
	if version <= 0 {
		version = 1
	}

	info := &model.UserInfo{
		OwnerID: owner.ID,
		Version: version,
		Pubkey:  params.Pubkey,
		Content: params.Content,
	}
	return errors.Wrap(db.Save(info), "could not save user info")
}

// DeleteUserInfo removes the owner's key material.
func DeleteUserInfo(db database.Client, owner *model.User) error {
	info, err := db.FindUserInfo(owner.ID)
	if err != nil {
		if db.IsNotFound(err) {
			return jserror.NotFound("User info not found.")
		}
		return errors.Wrap(err, "could not load user info")
	}
	return errors.Wrap(db.Delete(info), "could not delete user info")
}
