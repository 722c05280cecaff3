// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the storage slots of the builtin ledger accounts.
// It follows the flow as below:
//
//	         o
//	         |
//	[ revertable state ]
//	         |
//	  [ stacked map ] -> [ journal ] -> [ playback(staging) ] -> [ kv bulk ]
//	         |
//	  [ slot cache ]
//	         |
//	    [ kv store ]
//
// Every engine operation runs on top of a checkpoint; a failed operation is
// reverted to it, a successful one is staged and committed as a single bulk write.
package state
