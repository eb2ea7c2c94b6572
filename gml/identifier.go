package gml

// CodeWithAuthority is a gml:identifier value: a code qualified by the
// authority (code space) that assigned it.
type CodeWithAuthority struct {
	Value     string
	CodeSpace string
}

// NewCodeWithAuthority creates an identifier with the given code space.
func NewCodeWithAuthority(codeSpace, value string) CodeWithAuthority {
	return CodeWithAuthority{Value: value, CodeSpace: codeSpace}
}

// IsSet reports whether the identifier carries a value.
func (c CodeWithAuthority) IsSet() bool {
	return c.Value != ""
}
