package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/latticehq/lattice/pkg/auth"
)

// Seed describes fixture data loaded from YAML. Cross references use emails
// and slugs so fixtures stay readable; identities are assigned on apply.
type Seed struct {
	Users         []SeedUser         `yaml:"users"`
	Organizations []SeedOrganization `yaml:"organizations"`
	Projects      []SeedProject      `yaml:"projects"`
	Teams         []SeedTeam         `yaml:"teams"`
}

// SeedUser is a user fixture
type SeedUser struct {
	Email       string          `yaml:"email"`
	Name        string          `yaml:"name"`
	Preferences UserPreferences `yaml:"preferences"`
}

// SeedMember is a membership fixture referencing a user by email
type SeedMember struct {
	Email             string            `yaml:"email"`
	Role              auth.Role         `yaml:"role"`
	CustomPermissions []auth.Permission `yaml:"custom_permissions"`
}

// SeedOrganization is an organization fixture
type SeedOrganization struct {
	Name     string       `yaml:"name"`
	Slug     string       `yaml:"slug"`
	PlanTier PlanTier     `yaml:"plan_tier"`
	Settings OrgSettings  `yaml:"settings"`
	Members  []SeedMember `yaml:"members"`
}

// SeedConnector is a connector fixture
type SeedConnector struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// SeedProject is a project fixture referencing its organization by slug
type SeedProject struct {
	Organization string          `yaml:"organization"`
	Name         string          `yaml:"name"`
	Status       ProjectStatus   `yaml:"status"`
	Stats        ProjectStats    `yaml:"stats"`
	Members      []SeedMember    `yaml:"members"`
	Connectors   []SeedConnector `yaml:"connectors"`
}

// SeedTeam is a team fixture referencing its organization by slug and its
// lead and members by email
type SeedTeam struct {
	Organization string   `yaml:"organization"`
	Name         string   `yaml:"name"`
	Lead         string   `yaml:"lead"`
	Members      []string `yaml:"members"`
}

// LoadSeed parses a YAML seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed parses YAML seed data
func ParseSeed(data []byte) (*Seed, error) {
	seed := &Seed{}
	if err := yaml.Unmarshal(data, seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return seed, nil
}

// Apply inserts the seed fixtures into the store in dependency order:
// users, organizations and memberships, projects, teams
func (seed *Seed) Apply(s *Store) error {
	for _, su := range seed.Users {
		u := &User{Email: su.Email, Name: su.Name, Preferences: su.Preferences}
		if err := s.CreateUser(u); err != nil {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}
	}

	for _, so := range seed.Organizations {
		org := &Organization{Name: so.Name, Slug: so.Slug, PlanTier: so.PlanTier, Settings: so.Settings}
		if err := s.CreateOrganization(org); err != nil {
			return fmt.Errorf("seed organization %s: %w", so.Name, err)
		}
		for _, sm := range so.Members {
			u, err := s.GetUserByEmail(sm.Email)
			if err != nil {
				return fmt.Errorf("seed organization %s member: %w", so.Name, err)
			}
			m := &OrgMember{OrganizationID: org.ID, UserID: u.ID, Role: sm.Role}
			if err := s.AddOrgMember(m); err != nil {
				return fmt.Errorf("seed organization %s member %s: %w", so.Name, sm.Email, err)
			}
		}
	}

	for _, sp := range seed.Projects {
		org, err := s.GetOrganizationBySlug(sp.Organization)
		if err != nil {
			return fmt.Errorf("seed project %s: %w", sp.Name, err)
		}
		p := &Project{OrganizationID: org.ID, Name: sp.Name, Status: sp.Status, Stats: sp.Stats}
		if err := s.CreateProject(p); err != nil {
			return fmt.Errorf("seed project %s: %w", sp.Name, err)
		}
		for _, sm := range sp.Members {
			u, err := s.GetUserByEmail(sm.Email)
			if err != nil {
				return fmt.Errorf("seed project %s member: %w", sp.Name, err)
			}
			m := &ProjectMember{ProjectID: p.ID, UserID: u.ID, Role: sm.Role, CustomPermissions: sm.CustomPermissions}
			if err := s.AddProjectMember(m); err != nil {
				return fmt.Errorf("seed project %s member %s: %w", sp.Name, sm.Email, err)
			}
		}
		for _, sc := range sp.Connectors {
			c := &Connector{ProjectID: p.ID, Name: sc.Name, Kind: sc.Kind}
			if err := s.CreateConnector(c); err != nil {
				return fmt.Errorf("seed project %s connector %s: %w", sp.Name, sc.Name, err)
			}
		}
	}

	for _, st := range seed.Teams {
		org, err := s.GetOrganizationBySlug(st.Organization)
		if err != nil {
			return fmt.Errorf("seed team %s: %w", st.Name, err)
		}
		t := &Team{OrganizationID: org.ID, Name: st.Name}
		if st.Lead != "" {
			lead, err := s.GetUserByEmail(st.Lead)
			if err != nil {
				return fmt.Errorf("seed team %s lead: %w", st.Name, err)
			}
			t.LeadID = lead.ID
		}
		if err := s.CreateTeam(t); err != nil {
			return fmt.Errorf("seed team %s: %w", st.Name, err)
		}
		for _, email := range st.Members {
			u, err := s.GetUserByEmail(email)
			if err != nil {
				return fmt.Errorf("seed team %s member: %w", st.Name, err)
			}
			if err := s.AddTeamMember(&TeamMember{TeamID: t.ID, UserID: u.ID}); err != nil {
				return fmt.Errorf("seed team %s member %s: %w", st.Name, email, err)
			}
		}
	}

	return nil
}
