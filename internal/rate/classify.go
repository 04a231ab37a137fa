package rate

import "strings"

// Classifier derives the surcharge material category from an item description.
type Classifier interface {
	Classify(description string) MaterialCategory
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(description string) MaterialCategory

func (f ClassifierFunc) Classify(description string) MaterialCategory { return f(description) }

// KeywordRule maps any of its keywords to a material category.
type KeywordRule struct {
	Category MaterialCategory
	Keywords []string
}

// KeywordClassifier matches lower-cased substrings; the first matching rule wins.
// Unmatched descriptions fall into DefaultMaterial, which carries no surcharge.
type KeywordClassifier struct {
	Rules []KeywordRule
}

// DefaultKeywordRules are the stone-before-earth rules used for schedule-of-rates text.
var DefaultKeywordRules = []KeywordRule{
	{Category: RubbleStoneAggregate, Keywords: []string{"stone", "aggregate", "rubble", "rock", "boulder", "gravel"}},
	{Category: EarthSandMurrum, Keywords: []string{"sand", "earth", "murrum", "moorum"}},
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{Rules: DefaultKeywordRules}
}

func (k *KeywordClassifier) Classify(description string) MaterialCategory {
	desc := strings.ToLower(description)
	for _, rule := range k.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, kw) {
				return rule.Category
			}
		}
	}
	return DefaultMaterial
}

// ClassifierNames lists the names NewClassifierByName accepts.
var ClassifierNames = []string{"keyword", "none"}

// KnownClassifier reports whether name selects a classifier.
func KnownClassifier(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range ClassifierNames {
		if name == n {
			return true
		}
	}
	return false
}

// NewClassifierByName returns a Classifier by name.
// Unknown names fall back to the keyword classifier; validate with KnownClassifier.
func NewClassifierByName(name string) Classifier {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return ClassifierFunc(func(string) MaterialCategory { return DefaultMaterial })
	default:
		return NewKeywordClassifier()
	}
}
