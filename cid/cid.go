// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cid derives content ids for task and model payloads.
// An id is the sha2-256 multihash of the payload, the byte layout of a CIDv0.
package cid

import (
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

// Sum returns the content id of data.
func Sum(data []byte) []byte {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// sha2-256 is always registered
		panic(err)
	}
	return mh
}

// String renders id in base58, the textual form of a CIDv0.
func String(id []byte) (string, error) {
	mh, err := multihash.Cast(id)
	if err != nil {
		return "", errors.Wrap(err, "invalid content id")
	}
	return mh.B58String(), nil
}

// Parse decodes a base58 content id.
func Parse(s string) ([]byte, error) {
	mh, err := multihash.FromB58String(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid content id")
	}
	return mh, nil
}
