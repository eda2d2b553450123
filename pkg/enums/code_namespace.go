package enums

import "fmt"

// CodeNamespace selects which payment code table a code string belongs to.
// The namespace is decided by code length alone: 5 digits are short-lived
// in-store codes, 6 digits are long-lived remote codes.
type CodeNamespace string

const (
	CodeNamespaceBasic  CodeNamespace = "basic"
	CodeNamespaceRemote CodeNamespace = "remote"
)

const (
	basicCodeLength  = 5
	remoteCodeLength = 6
)

var validCodeNamespaces = []CodeNamespace{
	CodeNamespaceBasic,
	CodeNamespaceRemote,
}

// IsValid reports whether the value matches a known namespace.
func (n CodeNamespace) IsValid() bool {
	for _, candidate := range validCodeNamespaces {
		if candidate == n {
			return true
		}
	}
	return false
}

// Table returns the payment code table backing the namespace.
func (n CodeNamespace) Table() string {
	switch n {
	case CodeNamespaceRemote:
		return "payment_codes_remote"
	default:
		return "payment_codes_basic"
	}
}

// NamespaceForLength routes a code length to its namespace. Routing is strict:
// a 5-digit code is never looked up in the remote table and vice versa.
func NamespaceForLength(length int) (CodeNamespace, error) {
	switch length {
	case basicCodeLength:
		return CodeNamespaceBasic, nil
	case remoteCodeLength:
		return CodeNamespaceRemote, nil
	default:
		return "", fmt.Errorf("no code namespace for length %d", length)
	}
}
