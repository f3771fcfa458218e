package interview

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var rolesYAML []byte

// Role is one of the job categories a user can practice for.
type Role string

const (
	RoleSales           Role = "sales"
	RoleEngineer        Role = "engineer"
	RoleRetailAssociate Role = "retail_associate"
	RoleMarketing       Role = "marketing"
	RoleCustomerService Role = "customer_service"
)

// Roles lists every supported role in display order.
var Roles = []Role{RoleSales, RoleEngineer, RoleRetailAssociate, RoleMarketing, RoleCustomerService}

var (
	ErrUnknownRole  = errors.New("unknown role")
	ErrInvalidIndex = errors.New("question index must not be negative")
	ErrNoExchanges  = errors.New("no exchanges to score")
)

// Trigger maps a keyword found in an answer to candidate follow-up questions.
type Trigger struct {
	Keyword   string   `yaml:"keyword"`
	Questions []string `yaml:"questions"`
}

// RoleConfig is the interview script for a role.
type RoleConfig struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Questions   []string  `yaml:"questions"`
	FollowUps   []Trigger `yaml:"follow_ups"`
}

type roleEntry struct {
	Key        Role `yaml:"key"`
	RoleConfig `yaml:",inline"`
}

type roleFile struct {
	Roles []roleEntry `yaml:"roles"`
}

// table is parsed once from the embedded script and never written afterwards.
var table = mustLoadTable(rolesYAML)

func mustLoadTable(data []byte) map[Role]RoleConfig {
	t, err := loadTable(data)
	if err != nil {
		panic(fmt.Sprintf("interview: embedded role table: %v", err))
	}
	return t
}

func loadTable(data []byte) (map[Role]RoleConfig, error) {
	var f roleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roles: %w", err)
	}

	t := make(map[Role]RoleConfig, len(f.Roles))
	for _, e := range f.Roles {
		if !e.Key.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, e.Key)
		}
		if _, dup := t[e.Key]; dup {
			return nil, fmt.Errorf("role %s defined twice", e.Key)
		}
		if err := validateRole(e.RoleConfig); err != nil {
			return nil, fmt.Errorf("role %s: %w", e.Key, err)
		}
		t[e.Key] = e.RoleConfig
	}

	for _, r := range Roles {
		if _, ok := t[r]; !ok {
			return nil, fmt.Errorf("role %s missing", r)
		}
	}
	return t, nil
}

func validateRole(cfg RoleConfig) error {
	if cfg.Title == "" {
		return errors.New("title is required")
	}
	if len(cfg.Questions) == 0 {
		return errors.New("at least one question is required")
	}
	for i, tr := range cfg.FollowUps {
		if tr.Keyword == "" || tr.Keyword != strings.ToLower(tr.Keyword) {
			return fmt.Errorf("follow-up %d: keyword must be non-empty lower case", i)
		}
		if len(tr.Questions) == 0 {
			return fmt.Errorf("follow-up %q has no questions", tr.Keyword)
		}
	}
	return nil
}

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSales, RoleEngineer, RoleRetailAssociate, RoleMarketing, RoleCustomerService:
		return true
	default:
		return false
	}
}

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Config returns a copy of the script for role.
func Config(role Role) (RoleConfig, error) {
	cfg, ok := table[role]
	if !ok {
		return RoleConfig{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	out := RoleConfig{
		Title:       cfg.Title,
		Description: cfg.Description,
		Questions:   append([]string(nil), cfg.Questions...),
		FollowUps:   make([]Trigger, len(cfg.FollowUps)),
	}
	for i, tr := range cfg.FollowUps {
		out.FollowUps[i] = Trigger{Keyword: tr.Keyword, Questions: append([]string(nil), tr.Questions...)}
	}
	return out, nil
}
