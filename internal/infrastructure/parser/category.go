package parser

import (
	"strings"

	"BrainGuard/internal/domain"
)

// CategoryGeneral is used when no category keyword is present.
const CategoryGeneral = "general"

// CategoryEducation is the category of tutorials, courses and study material.
const CategoryEducation = "education"

type categoryRule struct {
	name     string
	keywords []string
}

// Order matters: the first category with a keyword hit wins.
var categoryRules = []categoryRule{
	{CategoryEducation, []string{"education", "tutorial", "learn", "course", "study"}},
	{"entertainment", []string{"entertainment", "funny", "meme", "comedy", "viral"}},
	{"news", []string{"news", "breaking", "report", "journalism", "current"}},
	{"social", []string{"social", "twitter", "facebook", "instagram", "tiktok"}},
	{"productivity", []string{"productivity", "work", "business", "career", "professional"}},
	{"wellness", []string{"health", "wellness", "mental", "fitness", "mindfulness"}},
}

// Categorize assigns a coarse topic using substring hits in the content
// and the description/keywords metadata.
func Categorize(content string, meta domain.Metadata) string {
	text := strings.ToLower(content + " " + meta.Description + " " + meta.Keywords)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.name
			}
		}
	}
	return CategoryGeneral
}
