// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

import (
	"github.com/pkg/errors"
	"github.com/stellar/go/keypair"
)

// Identity is the account simulated transactions originate from. Only the
// public address is retained; simulation needs no signature.
type Identity struct {
	address string
}

// LoadIdentity parses a secret seed. An empty secret yields a nil identity,
// which Simulate reports as ErrConfiguration.
func LoadIdentity(secret string) (*Identity, error) {
	if secret == "" {
		return nil, nil
	}
	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, errors.Wrap(err, "parsing service secret key")
	}
	return &Identity{address: kp.Address()}, nil
}

func (i *Identity) Address() string {
	return i.address
}
