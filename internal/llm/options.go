package llm

// DefaultTemperature keeps extraction output stable across calls.
const DefaultTemperature float32 = 0.1

// Option adjusts a single generation call.
type Option func(*callOptions)

type callOptions struct {
	systemPrompt string
	maxTokens    int32
	temperature  float32
}

// WithSystemPrompt sets the system instruction for the call.
func WithSystemPrompt(prompt string) Option {
	return func(o *callOptions) { o.systemPrompt = prompt }
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int32) Option {
	return func(o *callOptions) { o.maxTokens = n }
}

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float32) Option {
	return func(o *callOptions) { o.temperature = t }
}

func resolveOptions(opts []Option) callOptions {
	o := callOptions{temperature: DefaultTemperature}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// SystemPrompt reports the system prompt carried by opts. Test doubles use it to
// assert on call configuration.
func SystemPrompt(opts ...Option) string {
	return resolveOptions(opts).systemPrompt
}

// MaxTokens reports the token cap carried by opts, zero when unset.
func MaxTokens(opts ...Option) int32 {
	return resolveOptions(opts).maxTokens
}
