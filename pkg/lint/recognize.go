package lint

import "github.com/leapstack-labs/sqla2lint/pkg/core"

// TrailingName returns the name an expression refers to when it has one of
// the two recognized shapes: a bare name (relationship) or a single-level
// qualified access (orm.relationship). Anything deeper or computed is not
// recognized.
func TrailingName(e core.Expr) (string, bool) {
	switch n := e.(type) {
	case *core.Name:
		if n != nil {
			return n.ID, true
		}
	case *core.Attribute:
		if n == nil {
			return "", false
		}
		if base, ok := n.Value.(*core.Name); ok && base != nil {
			return n.Attr, true
		}
	}
	return "", false
}

// IsMappingConstruct reports whether callee names a mapping construct.
// Only the trailing name is compared: the module prefix is not resolved.
func IsMappingConstruct(v *Vocabulary, callee core.Expr) bool {
	name, ok := TrailingName(callee)
	return ok && v.IsMappingName(name)
}

// IsRelationshipConstruct reports whether callee names a relationship-style
// mapping construct.
func IsRelationshipConstruct(v *Vocabulary, callee core.Expr) bool {
	name, ok := TrailingName(callee)
	return ok && v.IsRelationshipName(name)
}

// AnnotationHead strips subscript layers: Mapped[List["A"]] -> Mapped.
func AnnotationHead(e core.Expr) core.Expr {
	for {
		sub, ok := e.(*core.Subscript)
		if !ok || sub == nil {
			return e
		}
		e = sub.Value
	}
}
