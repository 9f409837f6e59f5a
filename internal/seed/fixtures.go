package seed

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/talentflow/internal/types"
)

//go:embed fixtures/*.yaml
var fixturesFS embed.FS

type assessmentFixture struct {
	Job      int              `yaml:"job"`
	Title    string           `yaml:"title"`
	Sections []sectionFixture `yaml:"sections"`
}

type sectionFixture struct {
	ID        string            `yaml:"id"`
	Title     string            `yaml:"title"`
	Questions []questionFixture `yaml:"questions"`
}

type questionFixture struct {
	ID         string   `yaml:"id"`
	Type       string   `yaml:"type"`
	Label      string   `yaml:"label"`
	Required   bool     `yaml:"required"`
	Options    []string `yaml:"options"`
	Validation *struct {
		Min       *float64 `yaml:"min"`
		Max       *float64 `yaml:"max"`
		MaxLength *int     `yaml:"max_length"`
	} `yaml:"validation"`
	ConditionalOn *struct {
		QuestionID string    `yaml:"question_id"`
		Value      yaml.Node `yaml:"value"`
	} `yaml:"conditional_on"`
}

// loadAssessmentFixtures parses the embedded assessment definitions.
func loadAssessmentFixtures() ([]assessmentFixture, error) {
	data, err := fixturesFS.ReadFile("fixtures/assessments.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read assessment fixtures: %w", err)
	}
	var out []assessmentFixture
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse assessment fixtures: %w", err)
	}
	return out, nil
}

func (f assessmentFixture) sections() ([]types.Section, error) {
	out := make([]types.Section, 0, len(f.Sections))
	for _, s := range f.Sections {
		section := types.Section{ID: s.ID, Title: s.Title, Questions: make([]types.Question, 0, len(s.Questions))}
		for _, q := range s.Questions {
			question := types.Question{
				ID:       q.ID,
				Type:     types.QuestionType(q.Type),
				Label:    q.Label,
				Required: q.Required,
				Options:  q.Options,
			}
			if v := q.Validation; v != nil {
				question.Validation = &types.Validation{Min: v.Min, Max: v.Max, MaxLength: v.MaxLength}
			}
			if c := q.ConditionalOn; c != nil {
				value, err := conditionValue(&c.Value)
				if err != nil {
					return nil, fmt.Errorf("%s/%s: %w", f.Title, q.ID, err)
				}
				question.ConditionalOn = &types.Condition{QuestionID: c.QuestionID, Value: value}
			}
			section.Questions = append(section.Questions, question)
		}
		out = append(out, section)
	}
	return out, nil
}

// conditionValue accepts either a scalar or a sequence of scalars.
func conditionValue(n *yaml.Node) (types.ConditionValue, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return types.Single(n.Value), nil
	case yaml.SequenceNode:
		var vs []string
		if err := n.Decode(&vs); err != nil {
			return types.ConditionValue{}, err
		}
		return types.AnyOf(vs...), nil
	default:
		return types.ConditionValue{}, fmt.Errorf("condition value must be a string or a list")
	}
}
