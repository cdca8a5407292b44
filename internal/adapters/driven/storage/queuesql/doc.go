// Package queuesql holds the row mapping shared by the SQL queue stores.
//
// The Postgres and SQLite stores run the same tables. Each keeps its own
// queries because placeholders and time types differ; the column lists and
// scanning live here.
package queuesql
