// Package postings holds job postings ranked against a candidate skill set.
package postings

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/skill-matcher/internal/skills"
)

const (
	PostingIDField      = "ID"
	PostingCompanyField = "Company"
)

type Postings struct {
	Items []*Posting `json:"items"`
}

type Posting struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title,omitempty" yaml:"title"`
	Company     string `json:"company,omitempty" yaml:"company"`
	URL         string `json:"url,omitempty" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description"`

	// Match is filled by the scoring step.
	Match *skills.MatchResult `json:"match,omitempty" yaml:"-"`
}

type postingsFile struct {
	Postings []*Posting `yaml:"postings"`
}

// Load reads postings from a YAML or JSON file holding either a list or a
// mapping with a "postings" key. Postings without an id get their position as id.
func Load(path string) (*Postings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading postings file %q: %w", path, err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing postings file %q: %w", path, err)
	}

	var items []*Posting
	if len(node.Content) > 0 {
		if node.Content[0].Kind == yaml.SequenceNode {
			err = node.Content[0].Decode(&items)
		} else {
			var file postingsFile
			err = node.Decode(&file)
			items = file.Postings
		}
		if err != nil {
			return nil, fmt.Errorf("decoding postings file %q: %w", path, err)
		}
	}

	kept := make([]*Posting, 0, len(items))
	for _, p := range items {
		if p == nil {
			continue
		}
		if strings.TrimSpace(p.ID) == "" {
			p.ID = strconv.Itoa(len(kept) + 1)
		}
		kept = append(kept, p)
	}

	return &Postings{Items: kept}, nil
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for _, posting := range p.Items {
		if posting.ID == id {
			return posting
		}
	}
	return nil
}

func (po *Posting) GetStringField(name string) string {
	switch name {
	case PostingIDField:
		return po.ID
	case PostingCompanyField:
		return po.Company
	default:
		return ""
	}
}

// Score returns the attached match score or -1 when the posting is not scored yet.
func (po *Posting) Score() int {
	if po.Match == nil {
		return -1
	}
	return po.Match.Score
}

// Exclude removes postings whose field equals one of targets (case-insensitive)
// and returns the ids of removed postings. Order of the remaining postings is kept.
func (p *Postings) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[strings.ToLower(strings.TrimSpace(target))] = struct{}{}
	}

	var excluded []string
	kept := p.Items[:0]
	for _, posting := range p.Items {
		if _, ok := set[strings.ToLower(posting.GetStringField(name))]; ok {
			excluded = append(excluded, posting.ID)
			continue
		}
		kept = append(kept, posting)
	}
	p.Items = kept

	return excluded
}

// ExcludeBelow removes scored postings below minScore and returns their ids.
func (p *Postings) ExcludeBelow(minScore int) []string {
	var excluded []string
	kept := p.Items[:0]
	for _, posting := range p.Items {
		if posting.Score() < minScore {
			excluded = append(excluded, posting.ID)
			continue
		}
		kept = append(kept, posting)
	}
	p.Items = kept

	return excluded
}

// SortByScore orders postings by score, highest first. Ties keep file order.
func (p *Postings) SortByScore() {
	sort.SliceStable(p.Items, func(i, j int) bool {
		return p.Items[i].Score() > p.Items[j].Score()
	})
}

// ReportByCompany groups postings by company for a quick overview.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		key := posting.Company
		if key == "" {
			key = "(unknown company)"
		}

		entry := map[string]string{
			"id":    posting.ID,
			"title": posting.Title,
			"url":   posting.URL,
		}
		if posting.Match != nil {
			entry["score"] = strconv.Itoa(posting.Match.Score)
			entry["matched"] = strings.Join(posting.Match.MatchedSkills, ", ")
			entry["missing"] = strings.Join(posting.Match.MissingSkills, ", ")
			entry["message"] = posting.Match.Message
		}

		report[key] = append(report[key], entry)
	}
	return report
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
