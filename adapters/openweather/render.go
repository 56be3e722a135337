package openweather

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrCityNotFound is returned when the provider's cod field reports anything
// other than success.
var ErrCityNotFound = errors.New("city not found")

const (
	forecastDays = 3
	forecastHour = "12:00"
	ruleLine     = "---------------------------------\n"
)

type condition struct {
	Description *string `json:"description"`
}

type readings struct {
	Temp      *float64 `json:"temp"`
	FeelsLike *float64 `json:"feels_like"`
	Humidity  *float64 `json:"humidity"`
}

// currentPayload is the subset of /weather used for rendering. cod is a
// JSON number on this endpoint.
type currentPayload struct {
	Cod     json.RawMessage `json:"cod"`
	Name    *string         `json:"name"`
	Main    *readings       `json:"main"`
	Weather []condition     `json:"weather"`
}

// forecastPayload is the subset of /forecast used for rendering. cod is a
// JSON string on this endpoint.
type forecastPayload struct {
	Cod  json.RawMessage `json:"cod"`
	City *struct {
		Name *string `json:"name"`
	} `json:"city"`
	List *[]forecastSample `json:"list"`
}

type forecastSample struct {
	DtTxt   *string     `json:"dt_txt"`
	Main    *readings   `json:"main"`
	Weather []condition `json:"weather"`
}

func renderCurrent(body []byte) (string, error) {
	var p currentPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("decode weather response: %w", err)
	}

	if !codEquals(p.Cod, float64(200)) {
		return "", ErrCityNotFound
	}

	if p.Name == nil {
		return "", errors.New("missing field name")
	}
	if p.Main == nil || p.Main.Temp == nil || p.Main.FeelsLike == nil || p.Main.Humidity == nil {
		return "", errors.New("missing field main")
	}
	if len(p.Weather) == 0 || p.Weather[0].Description == nil {
		return "", errors.New("missing field weather")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🌤️ Clima em %s:\n", *p.Name)
	fmt.Fprintf(&b, "%s\n", capitalize(*p.Weather[0].Description))
	fmt.Fprintf(&b, "🌡️ Temperatura: %.1f°C\n", *p.Main.Temp)
	fmt.Fprintf(&b, "🤔 Sensação térmica: %.1f°C\n", *p.Main.FeelsLike)
	fmt.Fprintf(&b, "💧 Umidade: %s%%", strconv.FormatFloat(*p.Main.Humidity, 'f', -1, 64))
	return b.String(), nil
}

// renderForecast emits one section per calendar day, using only the sample
// stamped exactly 12:00. Days lacking that sample are skipped rather than
// filled from another hour. Scanning stops once forecastDays are collected.
func renderForecast(body []byte) (string, error) {
	var p forecastPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("decode forecast response: %w", err)
	}

	if !codEquals(p.Cod, "200") {
		return "", ErrCityNotFound
	}

	if p.City == nil || p.City.Name == nil {
		return "", errors.New("missing field city")
	}
	if p.List == nil {
		return "", errors.New("missing field list")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Previsão para %s (próximos %d dias):\n", *p.City.Name, forecastDays)
	b.WriteString(ruleLine)

	shown := make(map[string]bool, forecastDays)
	for i, s := range *p.List {
		if s.DtTxt == nil {
			return "", fmt.Errorf("missing field dt_txt in list[%d]", i)
		}
		day, clock, ok := strings.Cut(*s.DtTxt, " ")
		if !ok {
			return "", fmt.Errorf("malformed dt_txt %q", *s.DtTxt)
		}
		if len(clock) > len(forecastHour) {
			clock = clock[:len(forecastHour)]
		}

		if clock == forecastHour && !shown[day] {
			if s.Main == nil || s.Main.Temp == nil || s.Main.FeelsLike == nil {
				return "", fmt.Errorf("missing field main for %s", *s.DtTxt)
			}
			if len(s.Weather) == 0 || s.Weather[0].Description == nil {
				return "", fmt.Errorf("missing field weather for %s", *s.DtTxt)
			}

			fmt.Fprintf(&b, "📆 %s\n", day)
			fmt.Fprintf(&b, "☁️ %s\n", capitalize(*s.Weather[0].Description))
			fmt.Fprintf(&b, "🌡️ %.1f°C (Sensação %.1f°C)\n", *s.Main.Temp, *s.Main.FeelsLike)
			b.WriteString(ruleLine)
			shown[day] = true
		}

		if len(shown) >= forecastDays {
			break
		}
	}

	return strings.TrimSpace(b.String()), nil
}

// codEquals compares the provider's cod field by JSON type and value, so
// the number 200 and the string "200" are different.
func codEquals(raw json.RawMessage, want any) bool {
	if len(raw) == 0 {
		return false
	}
	var got any
	if err := json.Unmarshal(raw, &got); err != nil {
		return false
	}
	return got == want
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
