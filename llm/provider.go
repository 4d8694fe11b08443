// Package llm provides chat-completion clients for the supported providers.
package llm

import "context"

// Provider is the minimal contract the conversation pipeline needs: send a
// system prompt plus one user message, get the raw reply text back.
//
// Implementations do not retry. A duplicate mutation from replaying a
// non-idempotent generative call is worse than a single failed turn, so
// transport errors surface immediately and the caller converts them into a
// user-facing apology.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// ApologyText is the canned user-facing reply when the completion provider
// fails. It is paired with an explicit no-op action so a failed turn can
// never mutate the list.
const ApologyText = "I'm sorry, I encountered an error while processing your request. Please try again."
