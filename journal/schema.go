// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package journal

// amounts are 8 byte big-endian blobs: sqlite integers are signed.
const entryTableSchema = `CREATE TABLE IF NOT EXISTS entry (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	record BLOB(20) NOT NULL,
	owner BLOB(20) NOT NULL,
	op TEXT NOT NULL,
	amount BLOB(8) NOT NULL,
	staked BLOB(8) NOT NULL,
	points BLOB(8) NOT NULL,
	ts INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS entry_i0 ON entry(record, seq);
CREATE INDEX IF NOT EXISTS entry_i1 ON entry(ts);
`
