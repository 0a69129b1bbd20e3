package oauth2

import (
	"regexp"
	"strings"
)

// Scope strings tokenize on whitespace or commas.
var scopeSplitter = regexp.MustCompile(`[^\s,]+`)

// SplitScope tokenizes a scope string into individual scope names.
func SplitScope(scope string) []string {
	return scopeSplitter.FindAllString(scope, -1)
}

// JoinScope renders a scope set back into its wire form.
func JoinScope(scopes []string) string {
	return strings.Join(scopes, " ")
}

// ScopeAllowed reports whether every requested scope is a member of allowed.
func ScopeAllowed(requested, allowed []string) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	for _, s := range requested {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

// ResolveScope resolves a requested scope string against a client's allowed
// set. An empty request grants the full allowed set; a request containing a
// scope outside the allowed set fails with ErrScopeNotAllowed.
func ResolveScope(requested string, allowed []string) ([]string, error) {
	scopes := SplitScope(requested)
	if len(scopes) == 0 {
		return append([]string(nil), allowed...), nil
	}
	if !ScopeAllowed(scopes, allowed) {
		return nil, ErrScopeNotAllowed
	}
	return scopes, nil
}
