// Package record defines the typed data model shared by extraction and
// fusion: tagged field values, per-field provenance, candidate records from
// a single harvesting pass, and fused per-entity records.
//
// # Identity
//
// Entities are recognized by an identity key derived from the folded name
// plus the numeric identifier when one is known ("kevin-tillie_12"). Records
// with no recoverable name fall back to a hash of their whole field set and
// are flagged low-confidence by the fusion engine.
//
// Two different entities whose names fold to the same slug and that both
// lack a number share a key. This is not corrected automatically.
package record
