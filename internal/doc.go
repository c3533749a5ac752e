// Package internal runs the shortening pipeline.
//
// Engine validates its input, runs every phase in order over the program
// text and checks that the result parses. Each phase derives rewrite rules
// from the current tree, applies them during a fresh parse of the same text
// and prints the tree back with the fewest characters. The engine never
// returns code longer than its input.
//
// Key components:
//
// Engine: the orchestrator behind Shorten and ShortenFile. It is safe for
// concurrent use; every call owns its rewrite sessions.
//
// Cache: results on disk keyed by a hash of the source and the engine
// configuration.
//
// Watch mode: StartWatching shortens .py files as they are written.
package internal
