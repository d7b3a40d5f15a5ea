// Package codec reads and writes module metadata YAML.
//
// A YAML stream may hold any number of documents separated by "---" or
// terminated by "..." lines. Split cuts the stream into Subdocuments and
// classifies each one by its top-level "document" and "version" keys. A
// Parser then turns each Subdocument into a *modulemd.ModuleStream,
// *modulemd.Defaults or *modulemd.Translation, and Emit writes them back.
//
// Parsing walks the yaml.Node tree of each document. The emitter builds a
// yaml.Node tree with a fixed key order, so output is stable regardless of
// how the objects were built.
package codec
