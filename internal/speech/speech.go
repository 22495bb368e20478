// Package speech provides speech-recognition engines for the recognition
// controller.
//
//   - ScriptedEngine: deterministic in-process engine for tests and scenarios
//   - LineEngine: one transcript per line of an io.Reader
//   - RelayEngine: a websocket peer (typically a browser page running the
//     Web Speech API) that relays recognition events
package speech

// Settings configures the host recognizer.
type Settings struct {
	// Lang is the BCP 47 recognition language.
	Lang string `json:"lang" yaml:"lang"`

	// Continuous keeps capturing after the first final result.
	Continuous bool `json:"continuous" yaml:"continuous"`

	// InterimResults asks for non-final results.
	InterimResults bool `json:"interimResults" yaml:"interim_results"`

	// MaxAlternatives is the number of alternatives per result.
	MaxAlternatives int `json:"maxAlternatives" yaml:"max_alternatives"`
}

// DefaultSettings returns single-utterance, final-results-only recognition
// in US English.
func DefaultSettings() Settings {
	return Settings{
		Lang:            "en-US",
		Continuous:      false,
		InterimResults:  false,
		MaxAlternatives: 1,
	}
}
