package model

import "regexp"

// UIDPattern matches a content-addressed identifier (sha256 hex digest).
var UIDPattern = regexp.MustCompile(`\A[a-fA-F0-9]{64}\z`)

// ValidUID returns true if uid is a well-formed content-addressed id.
func ValidUID(uid string) bool {
	return UIDPattern.MatchString(uid)
}

// A Journal represents an encrypted container owned by one account.
// Its UID is the integrity fingerprint of the journal's initial state,
// unique per owner. The journal owns an ordered log of entries.
type Journal struct {
	Base `msgpack:",inline" storm:"inline"`

	UID     string `msgpack:"uid"      storm:"index"`
	OwnerID string `msgpack:"owner_id" storm:"index"`
	Version int    `msgpack:"version"`
	Content []byte `msgpack:"content"`
	Deleted bool   `msgpack:"deleted"  storm:"index"`
}

// An Entry is one immutable encrypted change record of a journal's log.
// Seq is the server-assigned insertion order, never exposed to clients.
type Entry struct {
	Base `msgpack:",inline" storm:"inline"`

	JournalID string `msgpack:"journal_id" storm:"index"`
	UID       string `msgpack:"uid"        storm:"index"`
	Seq       uint64 `msgpack:"seq"        storm:"index"`
	Content   []byte `msgpack:"content"`
}

// A Member grants a non-owner account access to a journal.
// Key holds the journal's symmetric key re-encrypted for that member.
// The owner never has a member record, ownership is implicit.
type Member struct {
	Base `msgpack:",inline" storm:"inline"`

	JournalID string `msgpack:"journal_id" storm:"index"`
	UserID    string `msgpack:"user_id"    storm:"index"`
	Key       []byte `msgpack:"key"`
	ReadOnly  bool   `msgpack:"read_only"`
}

// A UserInfo holds an account's public key material.
// Content is private to the owning account.
type UserInfo struct {
	Base `msgpack:",inline" storm:"inline"`

	OwnerID string `msgpack:"owner_id" storm:"unique"`
	Version int    `msgpack:"version"`
	Pubkey  []byte `msgpack:"pubkey"`
	Content []byte `msgpack:"content"`
}
