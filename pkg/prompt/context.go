package prompt

import "fmt"

// Context carries optional per-request hints that condition the narration.
// Empty fields add nothing; values outside the fixed enums add nothing.
type Context struct {
	TimeOfDay          string `json:"time_of_day,omitempty"`
	Weather            string `json:"weather,omitempty"`
	VisitorType        string `json:"visitor_type,omitempty"`
	Language           string `json:"language,omitempty"`
	DurationPreference string `json:"duration_preference,omitempty"`
}

var timeOfDayClauses = map[string]string{
	"morning":   "It is a fresh early morning; let the narration carry that quiet morning mood.",
	"afternoon": "It is a warm afternoon; let the narration carry that unhurried afternoon mood.",
	"evening":   "It is a beautiful dusk; let the narration carry the mood of fading light.",
	"night":     "It is a still night; let the narration carry that calm nocturnal mood.",
}

var weatherClauses = map[string]string{
	"sunny":  "The weather is bright and sunny; weave that into the scene.",
	"cloudy": "Clouds and mist hang over the scene; weave that into the narration.",
	"rainy":  "A fine rain is falling; weave that into the narration.",
	"snowy":  "Snow is drifting down; weave that into the narration.",
}

var visitorClauses = map[string]string{
	"family":  "The audience is a family group: keep the tone warm and welcoming for all ages.",
	"student": "The audience is students: emphasize knowledge and what can be learned here.",
	"elderly": "The audience is older visitors: keep a measured pace and rich substance.",
	"young":   "The audience is young visitors: keep the language lively and fun.",
}

var durationClauses = map[string]string{
	"short":  "Keep the narration brief and to the point.",
	"medium": "Use a moderate narration length.",
	"long":   "The visitor has time: the narration may be fuller and more detailed.",
}

// Empty reports whether the context carries no usable hints.
func (c Context) Empty() bool {
	return c == Context{}
}

// Enhance appends context-conditioned clauses to a user prompt. Only fields
// that are present and mapped in the fixed enums contribute; anything else
// is ignored.
func Enhance(userPrompt string, ctx Context) string {
	if ctx.Empty() {
		return userPrompt
	}
	out := userPrompt

	if clause, ok := timeOfDayClauses[ctx.TimeOfDay]; ok {
		out += "\n\nTime setting: " + clause
	}
	if clause, ok := weatherClauses[ctx.Weather]; ok {
		out += "\n\nWeather setting: " + clause
	}
	if clause, ok := visitorClauses[ctx.VisitorType]; ok {
		out += "\n\nAudience: " + clause
	}
	if ctx.Language != "" {
		out += "\n\n" + fmt.Sprintf("Write the narration in %s.", ctx.Language)
	}
	if clause, ok := durationClauses[ctx.DurationPreference]; ok {
		out += "\n\nLength: " + clause
	}

	return out
}
