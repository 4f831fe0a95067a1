// Package schema loads class declarations and aggregates from schema files.
//
// A YAML schema lists classes with their kind, supertypes and, for
// aggregates, ordered fields written as type expressions:
//
//	package: github.com/acme/model
//	classes:
//	  - name: User
//	    kind: aggregate
//	    fields:
//	      - {name: id, type: int64}
//	      - {name: tags, type: list<string>}
//	      - {name: parent, type: User, nullable: true}
//	      - {name: balance, type: Money, adapter: MoneyAdapter}
//	  - name: Color
//	    kind: enum
//	    constants: [RED, GREEN]
//	  - name: MoneyAdapter
//	    kind: adapter
//	    shared: true
//	  - name: Note
//	    kind: serializable
//
// Serializable classes are written as opaque CBOR blobs. Lazy serves
// callers whose class universe is only discovered on demand.
//
// Unqualified names declared in the file are qualified with package;
// "parcel.X" names the container types. FromWIT builds the same model from
// a resolved WIT package: records become aggregates and enums become enums.
package schema
