// Package secureid converts internal numeric identifiers to the opaque
// strings exposed in URLs and API payloads. The mapping is a salt-keyed
// bijection with no stored state, so the same codec works for query
// parameters and for ids embedded in entity fields.
package secureid

import (
	"errors"
	"fmt"

	hashids "github.com/speps/go-hashids/v2"
)

var ErrInvalidIdentifier = errors.New("secureid: invalid identifier")

const minLength = 10

type Codec struct {
	h *hashids.HashID
}

func New(salt string) (*Codec, error) {
	if salt == "" {
		return nil, errors.New("secureid: salt is required")
	}

	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = minLength

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("secureid: init codec: %w", err)
	}

	return &Codec{h: h}, nil
}

// Encode maps an internal id to its opaque external form.
func (c *Codec) Encode(id int64) (string, error) {
	if id < 0 {
		return "", ErrInvalidIdentifier
	}

	s, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	return s, nil
}

// Decode maps an opaque external string back to the internal id.
func (c *Codec) Decode(opaque string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(opaque)
	if err != nil || len(ids) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, opaque)
	}
	return ids[0], nil
}

// EncodeOptional passes nil through unchanged. Absent ids are common in
// partially populated entities and are not an error.
func (c *Codec) EncodeOptional(id *int64) (*string, error) {
	if id == nil {
		return nil, nil
	}
	s, err := c.Encode(*id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeOptional passes nil through unchanged.
func (c *Codec) DecodeOptional(opaque *string) (*int64, error) {
	if opaque == nil {
		return nil, nil
	}
	id, err := c.Decode(*opaque)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
