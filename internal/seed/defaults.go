// Package seed holds the built-in interview templates, personas and rubric
// fallbacks. It is the single source of default content: the startup seeder
// inserts it when the store is empty and the orchestrators fall back to it
// when a session references nothing.
package seed

import (
	"gorm.io/datatypes"

	"github.com/prepwise/prepwise-api/internal/models"
)

// FallbackRubricItems is used to score sessions whose template carries no
// rubric of its own.
var FallbackRubricItems = []string{"Communication clarity", "Structure", "Relevance"}

// DefaultTemplates are inserted once when the template table is empty.
var DefaultTemplates = []models.Template{
	{
		Name:        "Behavioral Interview",
		Category:    "behavioral",
		Description: "Practice answering questions about past experiences using the STAR method.",
		RubricItems: datatypes.NewJSONSlice([]string{
			"Clear situation context", "Specific actions taken", "Measurable results", "Active listening",
		}),
		DefaultQuestions: datatypes.NewJSONSlice([]string{
			"Tell me about yourself.",
			"Describe a challenging situation at work and how you handled it.",
			"Give an example of a time you showed leadership.",
			"Tell me about a time you failed and what you learned.",
		}),
		Difficulty: models.DifficultyMedium,
	},
	{
		Name:        "Technical Interview",
		Category:    "technical",
		Description: "Explain your technical skills, projects, and problem-solving approach.",
		RubricItems: datatypes.NewJSONSlice([]string{
			"Technical accuracy", "Clear explanations", "Structured thinking", "Problem-solving approach",
		}),
		DefaultQuestions: datatypes.NewJSONSlice([]string{
			"Walk me through a technical project you're proud of.",
			"How do you approach debugging a complex issue?",
			"Explain a technical concept to me as if I'm non-technical.",
			"What technologies are you most excited about learning?",
		}),
		Difficulty: models.DifficultyHard,
	},
	{
		Name:        "General Interview",
		Category:    "behavioral",
		Description: "A mix of common interview questions to help you prepare broadly.",
		RubricItems: datatypes.NewJSONSlice([]string{
			"Communication clarity", "Confidence", "Relevance of answers", "Enthusiasm",
		}),
		DefaultQuestions: datatypes.NewJSONSlice([]string{
			"Why are you interested in this role?",
			"What are your greatest strengths?",
			"Where do you see yourself in 5 years?",
			"Do you have any questions for me?",
		}),
		Difficulty: models.DifficultyEasy,
	},
}

// DefaultPersonas are inserted once when the persona table is empty. The
// first entry doubles as the fallback interviewer for sessions without a
// persona.
var DefaultPersonas = []models.Persona{
	{
		Name:        "Alex",
		Style:       "friendly",
		Description: "A supportive interviewer who helps you feel comfortable and provides encouragement.",
		SystemPrompt: "You are Alex, a friendly and supportive interviewer. Your goal is to help the candidate " +
			"feel comfortable while still conducting a professional interview. Be encouraging, ask follow-up " +
			"questions when appropriate, and provide a positive interview experience. Keep responses " +
			"conversational and under 150 words.",
	},
	{
		Name:        "Jordan",
		Style:       "professional",
		Description: "A balanced, straightforward interviewer focused on evaluating qualifications.",
		SystemPrompt: "You are Jordan, a professional and balanced interviewer. Your goal is to fairly evaluate " +
			"the candidate's qualifications through thoughtful questions. Be direct but respectful, ask " +
			"clarifying questions, and maintain a neutral tone. Keep responses concise and under 150 words.",
	},
	{
		Name:        "Morgan",
		Style:       "challenging",
		Description: "A rigorous interviewer who asks follow-up questions and pushes you to be specific.",
		SystemPrompt: "You are Morgan, a challenging interviewer who pushes candidates to give their best. Ask " +
			"probing follow-up questions, request specific examples, and challenge vague answers. Be " +
			"professional but demanding. Keep responses focused and under 150 words.",
	},
}

// FallbackPersona returns the interviewer used when a session has no
// persona or references one that no longer exists.
func FallbackPersona() models.Persona {
	return DefaultPersonas[0]
}

// FallbackTemplate returns the scenario used when a session has no template
// or references one that no longer exists.
func FallbackTemplate() models.Template {
	return DefaultTemplates[0]
}
