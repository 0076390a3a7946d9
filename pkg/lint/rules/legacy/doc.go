// Package legacy provides lint rules for SQLAlchemy 1.x constructs that have
// an explicit 2.0 replacement.
//
// Rules in this package:
//   - SA202: DynamicMapped collection annotation (use WriteOnlyMapped)
//   - SA203: backref keyword on relationship() (use back_populates)
package legacy
