// Package auth defines the AuthBlob contract: the credential and key
// material a SocketDriver needs to resume a session without re-pairing.
package auth

import (
	"encoding/json"
	"errors"
)

// KeyKind identifies a category of opaque key record within an AuthBlob.
type KeyKind string

const (
	KindPreKey         KeyKind = "pre-key"
	KindSignedPreKey   KeyKind = "signed-pre-key"
	KindSession        KeyKind = "session"
	KindAppStateSync   KeyKind = "app-state-sync-key"
	KindSenderKey      KeyKind = "sender-key"
	KindAppStateVer    KeyKind = "app-state-version"
	KindLIDMap         KeyKind = "lid-mapping"
)

// Record is one opaque key record, keyed by kind+id within an AuthHandle.
// Value is whatever the SocketDriver serializes — the core never interprets
// it beyond validation at the Creds boundary.
type Record struct {
	Kind  KeyKind
	ID    string
	Value json.RawMessage
}

// FileName derives the on-disk/secondary-tier record name for this record,
// matching the persisted-state layout contract: "<kind>-<id>.json".
func (r Record) FileName() string {
	if r.Kind == KindSession && r.ID == "" {
		return "creds.json"
	}
	return string(r.Kind) + "-" + r.ID + ".json"
}

// Creds is the device-identifying subset of an AuthBlob. It is validated
// structurally on every write: a creds write is only accepted when every
// required field is present, unless pairing is in progress.
type Creds struct {
	NoiseKey          json.RawMessage `json:"noiseKey,omitempty"`
	SignedIdentityKey json.RawMessage `json:"signedIdentityKey,omitempty"`
	Me                json.RawMessage `json:"me,omitempty"`
	Account           json.RawMessage `json:"account,omitempty"`
	Registered        bool            `json:"registered"`
	Raw               json.RawMessage `json:"-"`
}

// ErrInvalidCreds is returned when a creds write fails structural
// validation and pairing is not in progress.
var ErrInvalidCreds = errors.New("auth: invalid creds")

// Validate checks the creds write invariant from the data model: all of
// noiseKey, signedIdentityKey, me, account must be present and
// registered must be true, unless pairingInProgress exempts the session.
func (c Creds) Validate(pairingInProgress bool) error {
	if pairingInProgress {
		return nil
	}
	if len(c.NoiseKey) == 0 || len(c.SignedIdentityKey) == 0 ||
		len(c.Me) == 0 || len(c.Account) == 0 || !c.Registered {
		return ErrInvalidCreds
	}
	return nil
}

// ParseCreds decodes a creds JSON document, keeping the raw bytes around
// for round-trip persistence (buffers encoded as {"type":"Buffer",...} must
// survive untouched).
func ParseCreds(raw json.RawMessage) (Creds, error) {
	var c Creds
	if err := json.Unmarshal(raw, &c); err != nil {
		return Creds{}, err
	}
	c.Raw = raw
	return c, nil
}
