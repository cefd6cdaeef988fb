// Package store loads raw template and map definitions from persistence and
// feeds them to a resolver.
//
// A Store only moves definitions around: every value it returns is a raw
// tree, markers included. Resolution stays in the fixtures package.
//
// Data flow:
//
//	Store.Load(templates|maps) -> Populate -> Resolver.AddTemplates/AddMaps
//
// DirStore layout:
//
//	<root>/templates/*.json|*.jsonc|*.yaml|*.yml
//	<root>/maps/*.json|*.jsonc|*.yaml|*.yml
//
// Each file holds one object whose top-level keys are definition names. Files
// are read in lexical order and a later file replaces earlier definitions of
// the same name.
package store
