package provider

import "fmt"

// Mock is a deterministic in-memory provider for tests and offline demos.
// ResponseFactory wins over FixedResponse when both are set.
type Mock struct {
	FixedResponse   string
	ResponseFactory func(prompt string) string
}

func (m *Mock) Generate(prompt string) (string, error) {
	if m.ResponseFactory != nil {
		return m.ResponseFactory(prompt), nil
	}
	if m.FixedResponse != "" {
		return m.FixedResponse, nil
	}
	return "", fmt.Errorf("mock provider requires FixedResponse or ResponseFactory")
}
