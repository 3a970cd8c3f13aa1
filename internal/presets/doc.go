// Package presets provides named pixel settings: a constant catalog of
// built-in presets and a Repository for user presets, with a JSON file
// store and an in-memory store.
//
// User preset names are unique case-insensitively and may not reuse a
// built-in name. Saving an existing name replaces the stored settings and
// keeps its id.
package presets
