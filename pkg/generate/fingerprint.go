package generate

import (
	"encoding/json"

	"github.com/google/uuid"
)

// namespace scopes fingerprints to this module.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chazu/roadweave"))

// Fingerprint returns a name-based UUID of the canonical JSON encoding of
// in and p. Equal inputs give equal fingerprints, so it serves as a cache
// key for generated results.
func Fingerprint(in Input, p Params) uuid.UUID {
	data, err := json.Marshal(struct {
		Input  Input  `json:"input"`
		Params Params `json:"params"`
	}{in, p})
	if err != nil {
		// only non-finite numbers fail to encode
		return uuid.Nil
	}
	return uuid.NewSHA1(namespace, data)
}
