package ai

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/smarthealth/internal/domain"
)

// DefaultPromptBuilder implements PromptBuilder with templated prompts.
type DefaultPromptBuilder struct {
	symptomTemplate *template.Template
	quickTemplate   *template.Template
	imageTemplate   *template.Template
}

// symptomPromptTemplate asks for the fixed JSON shape.
const symptomPromptTemplate = `Analyze these symptoms: {{.Symptoms}}

Provide a simple medical analysis in this exact JSON format:
{
  "condition": "most likely condition",
  "probability": 75,
  "severity": "moderate",
  "description": "brief description",
  "symptoms": ["symptom1", "symptom2"],
  "recommendations": ["rec1", "rec2", "rec3"],
  "whenToSeekCare": "when to seek care"
}`

// quickPromptTemplate asks for free text; the reply is classified.
const quickPromptTemplate = `Analyze these symptoms: {{.Symptoms}}.

Provide a medical analysis including:
1. What condition this could be
2. Specific recommendations for treatment
3. When to seek medical care
4. Severity level (mild/moderate/severe)

Give practical, actionable advice.`

const imagePromptTemplate = `{{.Focus}}
Provide your analysis in the following JSON format:
{
  "condition": "identified condition or symptom",
  "confidence": percentage (0-100),
  "description": "detailed description of what you observe",
  "recommendations": ["recommendation 1", "recommendation 2", "recommendation 3"],
  "severity": "mild|moderate|severe",
  "whenToSeekCare": "guidance on when to seek medical attention"
}`

// reportPrompt asks for plain text; the reply is returned as-is.
const reportPrompt = `Analyze this medical test report image and provide a simple text summary of the key findings. Just describe what you see in plain text.`

var imageFocus = map[domain.ImageAnalysisType]string{
	domain.ImageXRay: "Analyze this X-ray image for bone structure, alignment, and any abnormalities.\n" +
		"Look for fractures, dislocations, bone density issues, or other skeletal problems.",
	domain.ImageBoneFracture: "Analyze this X-ray image specifically for bone fractures.\n" +
		"Look for fracture lines, bone displacement, healing fractures, or stress fractures.",
	domain.ImageBrainTumor: "Analyze this brain scan image for any masses, tumors, or abnormalities.\n" +
		"Look for brain tissue changes, mass effects, or structural abnormalities.",
}

// NewDefaultPromptBuilder creates a new prompt builder with default templates.
func NewDefaultPromptBuilder() (*DefaultPromptBuilder, error) {
	symptom, err := template.New("symptom_prompt").Parse(symptomPromptTemplate)
	if err != nil {
		return nil, err
	}
	quick, err := template.New("quick_prompt").Parse(quickPromptTemplate)
	if err != nil {
		return nil, err
	}
	image, err := template.New("image_prompt").Parse(imagePromptTemplate)
	if err != nil {
		return nil, err
	}

	return &DefaultPromptBuilder{
		symptomTemplate: symptom,
		quickTemplate:   quick,
		imageTemplate:   image,
	}, nil
}

// SymptomPrompt constructs the JSON-schema symptom prompt.
func (p *DefaultPromptBuilder) SymptomPrompt(symptoms []string) string {
	list := strings.Join(symptoms, ", ")
	return execute(p.symptomTemplate, struct{ Symptoms string }{list},
		"Analyze these symptoms and return JSON: "+list)
}

// QuickSymptomPrompt constructs the free-text symptom prompt.
func (p *DefaultPromptBuilder) QuickSymptomPrompt(symptoms []string) string {
	list := strings.Join(symptoms, ", ")
	return execute(p.quickTemplate, struct{ Symptoms string }{list},
		"Analyze these symptoms: "+list)
}

// ImagePrompt constructs the image prompt; unknown kinds use the X-ray focus.
func (p *DefaultPromptBuilder) ImagePrompt(kind domain.ImageAnalysisType) string {
	focus, ok := imageFocus[kind]
	if !ok {
		focus = imageFocus[domain.ImageXRay]
	}
	return execute(p.imageTemplate, struct{ Focus string }{focus}, focus)
}

// ReportPrompt returns the test report prompt.
func (p *DefaultPromptBuilder) ReportPrompt() string {
	return reportPrompt
}

func execute(tmpl *template.Template, data any, fallback string) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fallback
	}
	return buf.String()
}
