// Package insight resolves travel advice for a stop through a cache-first
// chain.
//
// Resolution order:
//
//	1. Local cache: a previously stored answer is returned verbatim.
//	   Entries never expire; staleness is accepted in exchange for
//	   offline availability and zero repeat cost.
//	2. Offline heuristic: when the network is down or no generator is
//	   configured, a canned answer is picked by keyword category
//	   (beach, heritage, food). Heuristic answers are never cached, so
//	   the next online resolution still produces a real one.
//	3. Online generation: the configured generator produces a fresh
//	   answer, which is cached before being returned. A generation
//	   failure falls back to the heuristic, again without caching.
//
// The resolver never returns an error from this chain: the caller always
// gets an answer, and the Source field says which rung produced it.
package insight
