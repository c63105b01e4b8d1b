package prompt

import (
	"fmt"
	"strings"
)

// DefaultStyle is used whenever a requested style key is unknown.
const DefaultStyle = "historical-cultural"

// Style describes one narration tone: the prompts it builds and the
// deterministic fallback used when no provider is reachable.
type Style struct {
	Key            string
	Name           string
	Description    string
	SystemPrompt   string
	UserTemplate   string // interpolates %[1]s = spot name, %[2]s = description
	Keywords       []string
	FallbackPrefix string // interpolates %s = spot name
	FallbackSuffix string
}

// StyleInfo is the public listing shape for GET /guide/styles.
type StyleInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Prompt is a fully assembled generation request.
type Prompt struct {
	System   string
	User     string
	Style    string
	Keywords []string
}

const systemExpert = `You are a seasoned cultural-heritage expert and tour narrator with a deep
academic background. You turn specialist knowledge into accessible narration.
Your narration is rigorous but engaging, rich in historical context, and
written to be spoken aloud. Keep it between 180 and 220 characters, with a
clear opening, body, and closing.`

const systemStoryteller = `You are a folk storyteller who knows the legends and anecdotes of every
place. You weave history into vivid, down-to-earth stories that spark
curiosity. Your narration is conversational, imaginative, and written to be
spoken aloud. Keep it between 180 and 220 characters.`

// styleOrder fixes the listing order for GET /guide/styles.
var styleOrder = []string{
	"historical-cultural",
	"anecdotal",
	"poetic-literary",
	"biographical",
	"science",
	"folk-custom",
}

var styles = map[string]Style{
	"historical-cultural": {
		Key:          "historical-cultural",
		Name:         "Historical & Cultural",
		Description:  "Narration highlighting historical value and cultural meaning",
		SystemPrompt: systemExpert,
		UserTemplate: `Write a historical and cultural narration for the sight "%[1]s".

Background: %[2]s

Requirements:
1. Highlight its historical value and cultural meaning
2. Cover the relevant historical background
3. Dignified but lively language, suitable for audio playback
4. 180-220 characters
5. Close with a guiding question for the visitor

Output only the narration itself, with no framing text.`,
		Keywords:       []string{"history", "culture", "heritage", "value", "meaning"},
		FallbackPrefix: "Welcome to %s, a place steeped in history and culture. ",
		FallbackSuffix: " Let us take in the weight of its history and the charm of its culture together.",
	},
	"anecdotal": {
		Key:          "anecdotal",
		Name:         "Anecdotes & Legends",
		Description:  "Narration built around curious stories and legends",
		SystemPrompt: systemStoryteller,
		UserTemplate: `Write an anecdotal narration for the sight "%[1]s".

Background: %[2]s

Requirements:
1. Include a curious story, legend, or anecdote tied to the place
2. Light, humorous, strongly narrative language
3. Spark the visitor's curiosity and urge to explore
4. 180-220 characters
5. End on a note of suspense or reflection

Output only the narration itself, with no framing text.`,
		Keywords:       []string{"story", "legend", "anecdote", "mystery", "curious"},
		FallbackPrefix: "Around %s there are plenty of curious stories waiting to be discovered. ",
		FallbackSuffix: " These stories make the place all the more alive.",
	},
	"poetic-literary": {
		Key:          "poetic-literary",
		Name:         "Poetry & Literature",
		Description:  "Narration with literary color and poetic flavor",
		SystemPrompt: systemExpert,
		UserTemplate: `Write a poetic, literary narration for the sight "%[1]s".

Background: %[2]s

Requirements:
1. Quote related poetry or literature where it fits
2. Graceful language with literary color
3. Convey the mood and beauty of the verse
4. 180-220 characters
5. Close with a line of verse or a lyrical flourish

Output only the narration itself, with no framing text.`,
		Keywords:       []string{"poetry", "verse", "literature", "mood", "beauty"},
		FallbackPrefix: "%s has long been beloved by poets and writers. ",
		FallbackSuffix: " Here one can still feel the cadence of verse and the pull of literature.",
	},
	"biographical": {
		Key:          "biographical",
		Name:         "People & Their Stories",
		Description:  "Narration centered on historical figures",
		SystemPrompt: systemStoryteller,
		UserTemplate: `Write a narration about the people connected with the sight "%[1]s".

Background: %[2]s

Requirements:
1. Tell the story of a historical figure tied to this place
2. Bring out their character and contribution
3. Vivid, affecting storytelling
4. 180-220 characters
5. Show what their story still means today

Output only the narration itself, with no framing text.`,
		Keywords:       []string{"figure", "story", "spirit", "character", "legacy"},
		FallbackPrefix: "Across the long history of %s, remarkable people have left their mark. ",
		FallbackSuffix: " Their stories continue to inspire generation after generation.",
	},
	"science": {
		Key:          "science",
		Name:         "Science & Nature",
		Description:  "Narration focused on scientific knowledge and natural phenomena",
		SystemPrompt: systemExpert,
		UserTemplate: `Write a popular-science narration for the sight "%[1]s".

Background: %[2]s

Requirements:
1. Explain the science or natural phenomena behind the place
2. Plain, approachable language that goes from simple to deep
3. Kindle the visitor's scientific curiosity
4. 180-220 characters
5. Close with a scientific question to ponder

Output only the narration itself, with no framing text.`,
		Keywords:       []string{"science", "nature", "phenomenon", "principle", "discovery"},
		FallbackPrefix: "%s holds a wealth of scientific knowledge and natural wonder. ",
		FallbackSuffix: " Let us look at its mysteries through the eyes of science.",
	},
	"folk-custom": {
		Key:          "folk-custom",
		Name:         "Folk Customs",
		Description:  "Narration showing local folk culture and everyday life",
		SystemPrompt: systemStoryteller,
		UserTemplate: `Write a folk-customs narration for the sight "%[1]s".

Background: %[2]s

Requirements:
1. Introduce the local customs and ways of life
2. Bring out the regional character and cultural texture
3. Warm, natural language close to daily life
4. 180-220 characters
5. Leave the visitor immersed in the local atmosphere

Output only the narration itself, with no framing text.`,
		Keywords:       []string{"custom", "tradition", "local", "life", "character"},
		FallbackPrefix: "%s shows a distinctive folk culture and local flavor. ",
		FallbackSuffix: " Its customs linger with every visitor who passes through.",
	},
}

// Lookup returns the style for key, falling back to DefaultStyle when the
// key is unknown or empty.
func Lookup(key string) Style {
	if s, ok := styles[key]; ok {
		return s
	}
	return styles[DefaultStyle]
}

// Known reports whether key names a registered style.
func Known(key string) bool {
	_, ok := styles[key]
	return ok
}

// Build assembles the provider prompt for a spot in the given style.
func Build(spotName, description, styleKey string) Prompt {
	s := Lookup(styleKey)
	return Prompt{
		System:   s.SystemPrompt,
		User:     fmt.Sprintf(s.UserTemplate, spotName, description),
		Style:    s.Key,
		Keywords: s.Keywords,
	}
}

// Fallback produces the deterministic templated narration used when every
// provider failed or none are configured.
func Fallback(spotName, description, styleKey string) string {
	s := Lookup(styleKey)
	var b strings.Builder
	b.WriteString(fmt.Sprintf(s.FallbackPrefix, spotName))
	b.WriteString(description)
	b.WriteString(s.FallbackSuffix)
	return b.String()
}

// Styles returns the available narration styles in a fixed order.
func Styles() []StyleInfo {
	out := make([]StyleInfo, 0, len(styleOrder))
	for _, key := range styleOrder {
		s := styles[key]
		out = append(out, StyleInfo{Key: s.Key, Name: s.Name, Description: s.Description})
	}
	return out
}
