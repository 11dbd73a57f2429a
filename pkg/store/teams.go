package store

// CreateTeam inserts a new team under an existing organization. Team names
// are unique within their organization.
func (s *Store) CreateTeam(t *Team) error {
	if _, ok := s.orgs[t.OrganizationID]; !ok {
		return &NotFoundError{Resource: "organization", ID: t.OrganizationID}
	}
	for _, existing := range s.teams {
		if existing.OrganizationID == t.OrganizationID && existing.Name == t.Name {
			return &ConflictError{Resource: "team", Field: "name", Value: t.Name}
		}
	}
	t.ID = NewID()
	t.Revision = 1
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	s.teams[t.ID] = t.clone()
	return nil
}

// GetTeam retrieves a team by ID with its derived member count
func (s *Store) GetTeam(id string) (*Team, error) {
	t, ok := s.teams[id]
	if !ok {
		return nil, &NotFoundError{Resource: "team", ID: id}
	}
	out := t.clone()
	out.MemberCount = s.countTeamMembers(id)
	return out, nil
}

// ListTeams lists an organization's teams ordered by creation, with derived
// member counts
func (s *Store) ListTeams(orgID string) []*Team {
	var out []*Team
	for _, t := range s.teams {
		if t.OrganizationID == orgID {
			c := t.clone()
			c.MemberCount = s.countTeamMembers(t.ID)
			out = append(out, c)
		}
	}
	sortByID(out, func(t *Team) string { return t.ID })
	return out
}

// UpdateTeam replaces a team's mutable fields. The owning organization is
// immutable through update.
func (s *Store) UpdateTeam(t *Team, expectedRevision int64) (*Team, error) {
	current, ok := s.teams[t.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "team", ID: t.ID}
	}
	if t.OrganizationID != current.OrganizationID {
		return nil, &ImmutableFieldError{Resource: "team", Field: "organization_id"}
	}
	if err := checkRevision("team", t.ID, expectedRevision, current.Revision); err != nil {
		return nil, err
	}
	if t.Name != current.Name {
		for _, other := range s.teams {
			if other.ID != t.ID && other.OrganizationID == t.OrganizationID && other.Name == t.Name {
				return nil, &ConflictError{Resource: "team", Field: "name", Value: t.Name}
			}
		}
	}
	t.CreatedAt = current.CreatedAt
	t.Revision = current.Revision + 1
	t.UpdatedAt = s.now()
	s.teams[t.ID] = t.clone()
	out := t.clone()
	out.MemberCount = s.countTeamMembers(t.ID)
	return out, nil
}

// DeleteTeam removes a team and its memberships
func (s *Store) DeleteTeam(id string) error {
	if _, ok := s.teams[id]; !ok {
		return &NotFoundError{Resource: "team", ID: id}
	}
	s.removeTeamMembers(id)
	delete(s.teams, id)
	return nil
}

// AddTeamMember adds a user to a team. Unique per (user, team).
func (s *Store) AddTeamMember(m *TeamMember) error {
	if _, ok := s.teams[m.TeamID]; !ok {
		return &NotFoundError{Resource: "team", ID: m.TeamID}
	}
	if _, ok := s.users[m.UserID]; !ok {
		return &NotFoundError{Resource: "user", ID: m.UserID}
	}
	for _, existing := range s.teamMembers {
		if existing.TeamID == m.TeamID && existing.UserID == m.UserID {
			return &ConflictError{Resource: "team member", Field: "user_id", Value: m.UserID}
		}
	}
	m.ID = NewID()
	m.CreatedAt = s.now()
	s.teamMembers[m.ID] = m.clone()
	return nil
}

// ListTeamMembers lists a team's members ordered by join time
func (s *Store) ListTeamMembers(teamID string) []*TeamMember {
	var out []*TeamMember
	for _, m := range s.teamMembers {
		if m.TeamID == teamID {
			out = append(out, m.clone())
		}
	}
	sortByID(out, func(m *TeamMember) string { return m.ID })
	return out
}

// RemoveTeamMember removes a user from a team
func (s *Store) RemoveTeamMember(teamID, userID string) error {
	for id, m := range s.teamMembers {
		if m.TeamID == teamID && m.UserID == userID {
			delete(s.teamMembers, id)
			return nil
		}
	}
	return &NotFoundError{Resource: "team member", ID: userID}
}

func (s *Store) countTeamMembers(teamID string) int {
	n := 0
	for _, m := range s.teamMembers {
		if m.TeamID == teamID {
			n++
		}
	}
	return n
}

func (s *Store) removeTeamMembers(teamID string) {
	for id, m := range s.teamMembers {
		if m.TeamID == teamID {
			delete(s.teamMembers, id)
		}
	}
}
