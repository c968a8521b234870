// Package codec converts edit commands to and from their wire envelopes.
//
// An envelope is {"type": "<command kind>", "payload": {...}}; payload keys use
// the camelCase names of the original action payloads (pageId, elementId,
// repositionedElements, elementIds, ...). Scripts are lists of envelopes in
// JSON or YAML, optionally wrapped as {"commands": [...]}.
package codec
