package core

import "strings"

// IntentKind identifies which reply path a message takes.
type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentCurrentWeather
	IntentForecast
	IntentGreeting
)

func (k IntentKind) String() string {
	switch k {
	case IntentCurrentWeather:
		return "current_weather"
	case IntentForecast:
		return "forecast"
	case IntentGreeting:
		return "greeting"
	default:
		return "unknown"
	}
}

// Intent is the parsed meaning of a message. City is only set for the
// weather intents and may be empty when the user omitted it.
type Intent struct {
	Kind IntentKind
	City string
}

const (
	currentKeyword       = "clima"
	forecastKeyword      = "previsão"
	forecastKeywordASCII = "previsao"
)

var greetings = map[string]bool{
	"oi":  true,
	"olá": true,
	"ola": true,
}

// Route maps raw message text to an Intent. Matching is by literal prefix
// on the trimmed, lower-cased text, so "climate" counts as "clima".
// The keyword is removed wherever it occurs before the city is trimmed.
func Route(text string) Intent {
	text = strings.ToLower(strings.TrimSpace(text))

	switch {
	case strings.HasPrefix(text, currentKeyword):
		city := strings.ReplaceAll(text, currentKeyword, "")
		return Intent{Kind: IntentCurrentWeather, City: strings.TrimSpace(city)}

	case strings.HasPrefix(text, forecastKeyword), strings.HasPrefix(text, forecastKeywordASCII):
		city := strings.ReplaceAll(text, forecastKeyword, "")
		city = strings.ReplaceAll(city, forecastKeywordASCII, "")
		return Intent{Kind: IntentForecast, City: strings.TrimSpace(city)}

	case greetings[text]:
		return Intent{Kind: IntentGreeting}
	}

	return Intent{Kind: IntentUnknown}
}
