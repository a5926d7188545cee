package server_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/appleboy/gofight/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userInfoRender struct {
	Version int    `json:"version"`
	Pubkey  []byte `json:"pubkey"`
	Content []byte `json:"content"`
}

func TestRequestUserInfo(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	owner := createUser(ctrl, "george.abitbol@nowhere.lan")
	other := createUser(ctrl, "peter.steven@nowhere.lan")
	header := authHeader(ctrl, owner)

	r.GET("/users/"+owner.Email+"/info").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})

	params := gofight.D{"version": 1, "pubkey": b64("public-key"), "content": b64("private-blob")}
	r.POST("/users/"+owner.Email+"/info").SetHeader(header).SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusCreated, r.Code)
	})

	// One record per account.
	r.POST("/users/"+owner.Email+"/info").SetHeader(header).SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"duplicate", "message":"User info already exists."}}`, r.Body.String())
	})

	// Nobody can publish or delete on someone else's behalf.
	r.POST("/users/"+owner.Email+"/info").SetHeader(authHeader(ctrl, other)).SetJSON(params).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})
	r.DELETE("/users/"+owner.Email+"/info").SetHeader(authHeader(ctrl, other)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusForbidden, r.Code)
	})

	// The owner sees the private content.
	r.GET("/users/"+owner.Email+"/info").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var v userInfoRender
		assert.NoError(t, json.Unmarshal(r.Body.Bytes(), &v))
		assert.Equal(t, []byte("public-key"), v.Pubkey)
		assert.Equal(t, []byte("private-blob"), v.Content)
	})

	// Other viewers only see the public projection.
	r.GET("/users/"+owner.Email+"/info").SetHeader(authHeader(ctrl, other)).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		var v userInfoRender
		require.NoError(t, json.Unmarshal(r.Body.Bytes(), &v))
		assert.Equal(t, []byte("public-key"), v.Pubkey)
		assert.Empty(t, v.Content)
	})

	r.GET("/users/nobody@nowhere.lan/info").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})

	r.DELETE("/users/"+owner.Email+"/info").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})
	r.GET("/users/"+owner.Email+"/info").SetHeader(header).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})
}
