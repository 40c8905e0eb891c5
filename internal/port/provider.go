package port

// Provider is a language model backend for text generation.
//
// Generate is synchronous and blocking: one prompt in, the full response
// text out. Implementations own their transport details and any timeout;
// callers impose none.
type Provider interface {
	// Generate produces the model's response for the prompt.
	Generate(prompt string) (string, error)
}
