// Package properties holds the flat key/value store that every other part of
// the engine reads from. Keys are case-sensitive dot-segmented paths and values
// are always trimmed strings; typed access happens at read time.
//
// A Store is populated once from an ordered list of sources (later sources win),
// after which every value goes through a single pass of ${key} interpolation.
package properties
