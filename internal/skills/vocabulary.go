package skills

// defaultTerms is the built-in technology vocabulary.
var defaultTerms = []string{
	"python", "java", "javascript", "react", "angular", "vue", "node.js", "nodejs",
	"sql", "mysql", "postgresql", "mongodb", "git", "docker", "kubernetes",
	"aws", "azure", "gcp", "machine learning", "ml", "data analysis", "data science",
	"html", "css", "typescript", "c++", "c#", "php", "ruby", "swift",
	"kotlin", "scala", "go", "rust", "tensorflow", "pytorch", "numpy", "pandas",
}

var demoCandidateSkills = []string{
	"python", "javascript", "react", "node.js", "sql",
	"git", "docker", "aws", "machine learning", "data analysis",
}

// Vocabulary is an ordered list of canonical skill terms.
// The order defines extraction order. A Vocabulary is never modified after construction.
type Vocabulary struct {
	terms []string
}

// NewVocabulary copies the provided terms into a new vocabulary.
// Terms are expected to be lower-case already; duplicates are kept.
func NewVocabulary(terms ...string) *Vocabulary {
	copied := make([]string, len(terms))
	copy(copied, terms)
	return &Vocabulary{terms: copied}
}

// DefaultVocabulary returns the built-in technology vocabulary.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultTerms...)
}

// DemoCandidateSkills returns the candidate skills used when nothing else is configured.
func DemoCandidateSkills() SkillSet {
	return append(SkillSet(nil), demoCandidateSkills...)
}

// Terms returns a copy of the vocabulary entries in order.
func (v *Vocabulary) Terms() []string {
	if v == nil {
		return []string{}
	}
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Contains reports whether term is an exact vocabulary entry.
func (v *Vocabulary) Contains(term string) bool {
	if v == nil {
		return false
	}
	for _, t := range v.terms {
		if t == term {
			return true
		}
	}
	return false
}
