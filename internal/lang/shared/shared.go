// Package shared holds the call-resolution and literal-typing logic common
// to every general-purpose tree-sitter extractor (internal/lang/*), so the
// receiver-classification table in spec.md §4.4 is implemented once instead
// of once per grammar.
package shared

import "strings"

// ReceiverKind classifies the syntactic shape of a call's receiver/object
// expression, independent of which grammar produced it.
type ReceiverKind int

const (
	// ReceiverNone is a bare call with no explicit receiver.
	ReceiverNone ReceiverKind = iota
	// ReceiverSelf is an explicit self/this receiver.
	ReceiverSelf
	// ReceiverIdentifier is a plain local-variable-shaped identifier.
	ReceiverIdentifier
	// ReceiverConstant is a simple (unqualified) constant/type name.
	ReceiverConstant
	// ReceiverNamespacedConstant is a qualified constant path (A::B::C,
	// A.B.C, A\B\C, depending on grammar).
	ReceiverNamespacedConstant
	// ReceiverVariable is an instance/class/global-style variable
	// ($x, @x, @@x, ::x).
	ReceiverVariable
	// ReceiverChained is any other, more complex receiver expression (a
	// nested call, an index expression, etc).
	ReceiverChained
)

// ClassifyReceiver implements the (objectType, objectName) table from
// spec.md §4.4. enclosingType is the name of the TypeInfo the call appears
// inside, or "" at file scope. localVarTypes maps a local variable name to
// the canonical type name inferred when it was assigned a literal.
func ClassifyReceiver(kind ReceiverKind, text, enclosingType string, localVarTypes map[string]string) (objectType, objectName string) {
	switch kind {
	case ReceiverNone:
		return "", ""
	case ReceiverSelf:
		return enclosingType, "self"
	case ReceiverIdentifier:
		if t, ok := localVarTypes[text]; ok {
			return t, text
		}
		return "", text
	case ReceiverConstant:
		return text, ""
	case ReceiverNamespacedConstant:
		return "", text
	case ReceiverVariable:
		return "", text
	case ReceiverChained:
		return "", ""
	default:
		return "", ""
	}
}

// IsSelfText reports whether a receiver's raw source text is a self/this
// keyword, across the grammars this package serves.
func IsSelfText(text string) bool {
	switch text {
	case "self", "this":
		return true
	default:
		return false
	}
}

// LooksLikeConstant reports whether name would be classified as a type/
// constant name rather than a variable: it starts with an uppercase ASCII
// letter, the convention every general-purpose language in scope uses for
// class/constant identifiers.
func LooksLikeConstant(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}

// IsNamespacedConstant reports whether text chains two or more constant
// segments with the given separator (e.g. "::" in Rust, "." in Java/C#,
// `\` in PHP).
func IsNamespacedConstant(text, sep string) bool {
	return strings.Contains(text, sep) && LooksLikeConstant(strings.Split(text, sep)[0])
}

// TrimImport removes surrounding quotes/backticks/whitespace from a raw
// import/require source-literal token.
func TrimImport(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`+"`")
	return strings.TrimSpace(s)
}
