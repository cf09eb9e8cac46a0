// Package fusion merges partial records of the same entity into one.
//
// A Context maps identity keys to fused records. Candidates arrive from
// recognition and from harvesting passes in any order, possibly
// concurrently. For each field the fused record keeps the most informative
// value seen so far: the longer serialized value wins, then the higher trial
// score, then a fixed lexical order. Because this is a total order, replaying
// the same candidates in any permutation gives the same record, and a value
// once accepted is never removed by a later empty one.
//
// Entities move from absent to partial on their first merge and to
// complete-enough once completeness over the entity checklist reaches the
// threshold. There is no terminal state; merging is always re-enterable.
//
// Two distinct entities that derive the same key (same name, no number)
// are merged. This is a known limitation of name-based identity.
package fusion
