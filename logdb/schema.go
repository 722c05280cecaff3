// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// seq packs height and event index, see sequence.
const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	time INTEGER NOT NULL,
	name TEXT NOT NULL,
	ref BLOB(32) NOT NULL,
	actor BLOB(20) NOT NULL,
	amount BLOB,
	attrs BLOB
);

CREATE INDEX IF NOT EXISTS event_i_name ON event(name, seq);
CREATE INDEX IF NOT EXISTS event_i_ref ON event(ref, seq);
CREATE INDEX IF NOT EXISTS event_i_actor ON event(actor, seq);
CREATE INDEX IF NOT EXISTS event_i_time ON event(time);
`
