package content

// Key identifies which generation template and output schema applies
type Key string

const (
	KeyNewsReaction          Key = "news_reaction"
	KeyTimelessReflection    Key = "timeless_reflection"
	KeyCrossPhilosopherReply Key = "cross_philosopher_reply"
	KeyDebateOpening         Key = "debate_opening"
	KeyDebateRebuttal        Key = "debate_rebuttal"
	KeyAgoraResponse         Key = "agora_response"

	// Synthesis keys are not persona-bound; see the synthesis orchestrator
	KeyDebateSynthesis Key = "debate_synthesis"
	KeyAgoraSynthesis  Key = "agora_synthesis"
)

// Stances a persona may take toward source material. Conformance is
// instructed in the prompt and checked advisorily, never enforced: an
// out-of-enum stance is surfaced for operator review, not rejected.
var Stances = []string{"challenges", "defends", "reframes", "questions", "warns", "observes"}

// IsValidStance reports whether s is one of the known stances
func IsValidStance(s string) bool {
	for _, v := range Stances {
		if v == s {
			return true
		}
	}
	return false
}

// FieldKind is the expected JSON type of an output field
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldStringList
)

// Field is one required output field of a content type
type Field struct {
	Name string
	Kind FieldKind
}

// Template holds the generation instructions and output contract for one
// content type. Word bounds are instructed in the prompt; the registry does
// not enforce them - word-count enforcement is a caller-side retry policy
// because model compliance is probabilistic.
type Template struct {
	Key          Key
	Instructions string
	Fields       []Field
	MinWords     int
	MaxWords     int
	TokenBudget  int // default max output tokens, sized to MaxWords with headroom
}

var postFields = []Field{
	{Name: "content", Kind: FieldString},
	{Name: "thesis", Kind: FieldString},
	{Name: "stance", Kind: FieldString},
	{Name: "tag", Kind: FieldString},
}

var registry = map[Key]Template{
	KeyNewsReaction: {
		Key: KeyNewsReaction,
		Instructions: `Write a reaction to the news article below, in your own philosophical voice.
Requirements:
- 80-150 words
- Take a clear position; do not summarize the article
- stance must be one of: challenges, defends, reframes, questions, warns, observes
- tag is a one-word topic label

Respond in JSON format:
{"content": "<the reaction>", "thesis": "<one-sentence core claim>", "stance": "<stance>", "tag": "<tag>"}`,
		Fields:      postFields,
		MinWords:    80,
		MaxWords:    150,
		TokenBudget: 600,
	},
	KeyTimelessReflection: {
		Key: KeyTimelessReflection,
		Instructions: `Write a timeless reflection on the theme below - no news hook, no current events.
Requirements:
- 60-120 words
- stance must be one of: challenges, defends, reframes, questions, warns, observes
- tag is a one-word topic label

Respond in JSON format:
{"content": "<the reflection>", "thesis": "<one-sentence core claim>", "stance": "<stance>", "tag": "<tag>"}`,
		Fields:      postFields,
		MinWords:    60,
		MaxWords:    120,
		TokenBudget: 500,
	},
	KeyCrossPhilosopherReply: {
		Key: KeyCrossPhilosopherReply,
		Instructions: `Write a reply to another philosopher's post, included below.
Requirements:
- 80-150 words
- content MUST begin with an @-mention of the philosopher you are replying to (e.g. "@Simone ...")
- Engage their actual argument; do not restate your own views in isolation
- stance must be one of: challenges, defends, reframes, questions, warns, observes
- tag is a one-word topic label

Respond in JSON format:
{"content": "<the reply>", "thesis": "<one-sentence core claim>", "stance": "<stance>", "tag": "<tag>"}`,
		Fields:      postFields,
		MinWords:    80,
		MaxWords:    150,
		TokenBudget: 600,
	},
	KeyDebateOpening: {
		Key: KeyDebateOpening,
		Instructions: `Write your opening statement for a debate on the topic below.
Requirements:
- 150-250 words
- State your position and your strongest argument for it

Respond in JSON format:
{"content": "<the opening statement>"}`,
		Fields:      []Field{{Name: "content", Kind: FieldString}},
		MinWords:    150,
		MaxWords:    250,
		TokenBudget: 900,
	},
	KeyDebateRebuttal: {
		Key: KeyDebateRebuttal,
		Instructions: `Write a rebuttal to the opposing statement below.
Requirements:
- 100-200 words
- content MUST begin with an @-mention of the philosopher you are rebutting
- Address their strongest point directly

Respond in JSON format:
{"content": "<the rebuttal>"}`,
		Fields:      []Field{{Name: "content", Kind: FieldString}},
		MinWords:    100,
		MaxWords:    200,
		TokenBudget: 750,
	},
	KeyAgoraResponse: {
		Key: KeyAgoraResponse,
		Instructions: `Answer the reader's question below in your own philosophical voice.
Requirements:
- 1 or 2 posts; use a second post only if the answer genuinely needs it
- Each post 100-200 words
- Speak to the reader directly

Respond in JSON format:
{"posts": ["<first post>", "<optional second post>"]}`,
		Fields:      []Field{{Name: "posts", Kind: FieldStringList}},
		MinWords:    100,
		MaxWords:    200,
		TokenBudget: 1200,
	},
	KeyDebateSynthesis: {
		Key: KeyDebateSynthesis,
		Instructions: `Synthesize the debate transcript below. Attribute claims to the philosophers named in the section headers.

Respond in JSON format:
{"tensions": ["<unresolved disagreement>"], "agreements": ["<shared ground>"], "questions_for_reflection": ["<open question for the reader>"]}`,
		Fields: []Field{
			{Name: "tensions", Kind: FieldStringList},
			{Name: "agreements", Kind: FieldStringList},
			{Name: "questions_for_reflection", Kind: FieldStringList},
		},
		TokenBudget: 1200,
	},
	KeyAgoraSynthesis: {
		Key: KeyAgoraSynthesis,
		Instructions: `Synthesize the per-philosopher answers below. Attribute claims to the philosophers named in the section headers.

Respond in JSON format:
{"tensions": ["<unresolved disagreement>"], "agreements": ["<shared ground>"], "practical_takeaways": ["<actionable takeaway for the reader>"]}`,
		Fields: []Field{
			{Name: "tensions", Kind: FieldStringList},
			{Name: "agreements", Kind: FieldStringList},
			{Name: "practical_takeaways", Kind: FieldStringList},
		},
		TokenBudget: 1200,
	},
}

// Resolve returns the template for a content-type key
func Resolve(key Key) (Template, bool) {
	t, ok := registry[key]
	return t, ok
}

// Keys returns all registered content-type keys
func Keys() []Key {
	keys := make([]Key, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	return keys
}

// IsSynthesis reports whether the key is a synthesis type
func IsSynthesis(key Key) bool {
	return key == KeyDebateSynthesis || key == KeyAgoraSynthesis
}

// ResolveKey disambiguates a UI-supplied content-type label into a registry
// key. The mapping is total: every input combination maps to exactly one key,
// with news_reaction as the fallback. A generic "post" label is disambiguated
// by the auxiliary label (e.g. the admin UI's post-kind dropdown).
func ResolveKey(rawType, uiLabel string) Key {
	if _, ok := registry[Key(rawType)]; ok {
		return Key(rawType)
	}

	switch rawType {
	case "post", "":
		switch normalizeLabel(uiLabel) {
		case "cross_philosopher_reply", "reply":
			return KeyCrossPhilosopherReply
		case "timeless_reflection", "reflection":
			return KeyTimelessReflection
		default:
			return KeyNewsReaction
		}
	case "reply":
		return KeyCrossPhilosopherReply
	case "reflection":
		return KeyTimelessReflection
	case "opening":
		return KeyDebateOpening
	case "rebuttal":
		return KeyDebateRebuttal
	}

	return KeyNewsReaction
}

func normalizeLabel(label string) string {
	out := make([]rune, 0, len(label))
	for _, r := range label {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '-':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
