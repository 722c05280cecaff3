// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package commitments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/builtin/engine/reverts"
	"github.com/vechain/compute/builtin/solidity"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/lvldb"
	"github.com/vechain/compute/state"
	"github.com/vechain/compute/test/datagen"
)

func TestGenerate(t *testing.T) {
	validator := datagen.RandAddress()
	task := datagen.RandomHash()
	cid := datagen.RandBytes(34)

	c := Generate(validator, task, cid)
	assert.Equal(t, c, Generate(validator, task, append([]byte(nil), cid...)))

	seen := map[compute.Bytes32]bool{c: true}
	for range 50 {
		for _, other := range []compute.Bytes32{
			Generate(datagen.RandAddress(), task, cid),
			Generate(validator, datagen.RandomHash(), cid),
			Generate(validator, task, datagen.RandBytes(34)),
		} {
			assert.False(t, seen[other], "collision")
			seen[other] = true
		}
	}
}

func TestSignalAndVerify(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	s := New(solidity.NewContext(compute.EngineAddress, state.New(db)))

	c := datagen.RandomHash()
	assert.ErrorIs(t, s.Verify(c, 10), reverts.ErrCommitmentNotFound)

	require.NoError(t, s.Signal(c, 5))
	assert.ErrorIs(t, s.Signal(c, 6), reverts.ErrCommitmentExists)

	h, err := s.Height(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), h)

	assert.ErrorIs(t, s.Verify(c, 5), reverts.ErrCommitmentTooRecent)
	assert.NoError(t, s.Verify(c, 6))
}
