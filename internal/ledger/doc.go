// Package ledger records every transfer attempt in a local SQLite database
// so past runs can be inspected after the fact.
package ledger
