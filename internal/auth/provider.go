// Package auth defines the identity contract sessions depend on.
//
// The core only needs an opaque, stable user identifier and a signed-in /
// signed-out event stream; how identities are actually issued is an external
// collaborator's problem.
package auth

// Provider yields the authenticated identity for this process.
type Provider interface {
	// Current returns the signed-in user's identifier, or ok=false when no
	// user is signed in.
	Current() (userID string, ok bool)

	// OnChange registers fn to be called on every sign-in and sign-out.
	// The returned function unsubscribes.
	OnChange(fn func(userID string, signedIn bool)) (unsubscribe func())
}
