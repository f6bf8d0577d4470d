// Package skills matches a candidate skill set against the skills found in a job description.
package skills

import (
	"fmt"
	"strings"
)

const (
	excellentThreshold = 70
	goodThreshold      = 40
)

// SkillSet is an ordered list of skill names. It is never deduplicated implicitly.
type SkillSet []string

// MatchResult is the outcome of a single analysis.
type MatchResult struct {
	Score         int      `json:"score"`
	MatchedSkills SkillSet `json:"matchedSkills"`
	MissingSkills SkillSet `json:"missingSkills"`
	Message       string   `json:"message"`
}

// ExtractSkills returns every vocabulary entry that occurs in text.
// Matching is a plain substring search on the lower-cased text, so "java"
// is found inside "javascript". The result follows vocabulary order.
func ExtractSkills(text string, vocabulary *Vocabulary) SkillSet {
	found := SkillSet{}
	if vocabulary == nil {
		return found
	}

	lowered := strings.ToLower(text)
	for _, term := range vocabulary.terms {
		if strings.Contains(lowered, term) {
			found = append(found, term)
		}
	}
	return found
}

// Match partitions skills into matched candidate skills and missing job skills.
//
// matched is taken from candidate, missing is taken from job. A job skill is not
// missing when any matched candidate skill is related to it, even if a different
// job skill caused that candidate skill to match.
func Match(candidate, job SkillSet) (matched, missing SkillSet) {
	matched = SkillSet{}
	missing = SkillSet{}

	for _, skill := range candidate {
		for _, jobSkill := range job {
			if related(skill, jobSkill) {
				matched = append(matched, skill)
				break
			}
		}
	}

	for _, jobSkill := range job {
		covered := false
		for _, skill := range matched {
			if related(skill, jobSkill) {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, jobSkill)
		}
	}

	return matched, missing
}

// related is the bidirectional case-insensitive substring relation.
func related(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Score returns the percentage of job skills covered by matched, rounded half up.
// The divisor is at least one, and the result is not clamped: more matched skills
// than job skills yields a score above 100.
func Score(matched, job SkillSet) int {
	divisor := len(job)
	if divisor < 1 {
		divisor = 1
	}
	// floor(100*m/d + 1/2) without floating point.
	return (200*len(matched) + divisor) / (2 * divisor)
}

// GenerateMessage returns the advice shown next to a score.
func GenerateMessage(score, missingCount int) string {
	switch {
	case score >= excellentThreshold:
		return "Excellent match! Your resume aligns well with this job."
	case score >= goodThreshold:
		if missingCount <= 0 {
			return "Good match! Consider highlighting more relevant experience."
		}
		return fmt.Sprintf("Good match! Add %d missing skills to improve your chances.", missingCount)
	default:
		if missingCount <= 0 {
			return "Low match. Consider reformatting your resume to highlight relevant skills."
		}
		return fmt.Sprintf("Low match. Add %d key skills to significantly improve your chances.", missingCount)
	}
}

// Normalize trims user supplied skills and drops empty entries. Case is kept,
// Match compares case-insensitively. Duplicates are kept. The result is never nil.
func Normalize(in []string) SkillSet {
	out := make(SkillSet, 0, len(in))
	for _, skill := range in {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	return out
}

// Analyze runs extraction, matching, scoring and message generation for one job description.
func Analyze(jobDescription string, candidate SkillSet, vocabulary *Vocabulary) MatchResult {
	jobSkills := ExtractSkills(jobDescription, vocabulary)
	matched, missing := Match(candidate, jobSkills)
	score := Score(matched, jobSkills)

	return MatchResult{
		Score:         score,
		MatchedSkills: matched,
		MissingSkills: missing,
		Message:       GenerateMessage(score, len(missing)),
	}
}
