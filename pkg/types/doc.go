// Package types defines the entities, table interfaces, tenant context and
// standard errors shared by every Vellum component.
//
// Collections own Schemas, Schemas own an ordered list of field
// definitions, and Objects are documents shaped by one Schema. Every entity
// is addressed by a handle that is unique within a tenant.
package types
