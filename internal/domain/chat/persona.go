package chat

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/innercalm/backend/internal/domain/emotion"
)

// Persona is a named system-prompt template shaping the assistant's voice.
type Persona struct {
	Name         string `yaml:"name" json:"name"`
	DisplayName  string `yaml:"displayName" json:"displayName"`
	Tone         string `yaml:"tone" json:"tone"`
	SystemPrompt string `yaml:"systemPrompt" json:"systemPrompt"`
}

// PersonaCatalog holds the loaded personas, with a guaranteed default.
type PersonaCatalog struct {
	personas    map[string]Persona
	defaultName string
}

type personaFile struct {
	Default  string    `yaml:"default"`
	Personas []Persona `yaml:"personas"`
}

// LoadPersonas reads the persona catalog from a YAML file. A missing file
// yields the built-in catalog so development works out of the box.
func LoadPersonas(path string) (*PersonaCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return builtinCatalog(), nil
		}
		return nil, fmt.Errorf("read personas file: %w", err)
	}
	var file personaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse personas file: %w", err)
	}
	if len(file.Personas) == 0 {
		return builtinCatalog(), nil
	}

	catalog := &PersonaCatalog{personas: make(map[string]Persona, len(file.Personas))}
	for _, persona := range file.Personas {
		if persona.Name == "" || persona.SystemPrompt == "" {
			return nil, fmt.Errorf("persona entries need name and systemPrompt")
		}
		catalog.personas[persona.Name] = persona
	}
	catalog.defaultName = file.Default
	if _, ok := catalog.personas[catalog.defaultName]; !ok {
		catalog.defaultName = file.Personas[0].Name
	}
	return catalog, nil
}

// Default returns the catalog's default persona.
func (c *PersonaCatalog) Default() Persona {
	return c.personas[c.defaultName]
}

// Get looks up a persona by name, falling back to the default.
func (c *PersonaCatalog) Get(name string) Persona {
	if persona, ok := c.personas[name]; ok {
		return persona
	}
	return c.Default()
}

// Names lists the available persona names.
func (c *PersonaCatalog) Names() []string {
	names := make([]string, 0, len(c.personas))
	for name := range c.personas {
		names = append(names, name)
	}
	return names
}

func builtinCatalog() *PersonaCatalog {
	inner := Persona{
		Name:        "inner_ally",
		DisplayName: "Inner Ally",
		Tone:        "empathetic",
		SystemPrompt: "You are Inner Ally, a warm and empathetic emotional support companion. " +
			"Listen actively, validate feelings without judgment, and respond with genuine care. " +
			"Keep responses concise and conversational. You are not a licensed therapist and " +
			"must encourage professional help for serious concerns.",
	}
	return &PersonaCatalog{
		personas:    map[string]Persona{inner.Name: inner},
		defaultName: inner.Name,
	}
}

// Therapeutic approaches mirror how the companion adapts its guidance to the
// user's dominant emotion.
var approachTones = map[string]string{
	"cognitive_behavioral": "collaborative_questioning",
	"mindfulness_based":    "calm_guiding",
	"emotion_regulation":   "validating_supportive",
	"trauma_informed":      "gentle_stabilizing",
	"person_centered":      "empathetic_accepting",
}

var approachGuidance = map[string]string{
	"cognitive_behavioral": "Gently help the user examine their thought patterns and consider balanced alternatives.",
	"mindfulness_based":    "Guide the user toward present-moment awareness, offering grounding or breathing suggestions.",
	"emotion_regulation":   "Validate the user's feelings first, then support them in tolerating and naming the emotion.",
	"trauma_informed":      "Prioritize safety and stabilization. Avoid probing for details; offer grounding and resources.",
	"person_centered":      "Follow the user's lead with reflective listening and unconditional positive regard.",
}

func selectApproach(analysis *emotion.Analysis) string {
	if analysis == nil {
		return "person_centered"
	}
	for _, theme := range analysis.Themes {
		if theme == "trauma_related" {
			return "trauma_informed"
		}
	}
	dominant, _ := analysis.Scores().Dominant()
	switch dominant {
	case "sadness":
		return "emotion_regulation"
	case "anger":
		return "cognitive_behavioral"
	case "fear":
		return "mindfulness_based"
	default:
		return "person_centered"
	}
}

func buildSystemPrompt(persona Persona, approach string, analysis *emotion.Analysis) string {
	var b strings.Builder
	b.WriteString(persona.SystemPrompt)
	if guidance, ok := approachGuidance[approach]; ok {
		b.WriteString("\n\nApproach: ")
		b.WriteString(guidance)
	}
	if analysis != nil {
		dominant, score := analysis.Scores().Dominant()
		fmt.Fprintf(&b, "\n\nThe user's latest message reads as %s (sentiment %s, confidence %.2f).",
			dominant, analysis.SentimentLabel, score)
	}
	return b.String()
}

// crisisKeywords trigger the safety response instead of a model call.
var crisisKeywords = []string{
	"suicide", "kill myself", "end it all", "want to die",
	"hurt myself", "self-harm", "cutting", "overdose",
	"end my life", "better off dead", "no point in living",
}

func detectCrisis(message string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range crisisKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
