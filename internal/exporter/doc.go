// Package exporter writes cleaned pipeline output to CSV and JSON files:
// the combined long-format table, one CSV per entity, and the entity
// summary report. Output formatting is deterministic, so identical pipeline
// results export to identical bytes.
package exporter
