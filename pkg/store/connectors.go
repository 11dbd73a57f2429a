package store

// ConnectorFilter narrows ListConnectors. Zero values match everything.
type ConnectorFilter struct {
	ProjectID string
	Status    ConnectorStatus
}

// CreateConnector inserts a new connector under an existing project, bounded
// by the owning organization's connector limit
func (s *Store) CreateConnector(c *Connector) error {
	p, ok := s.projects[c.ProjectID]
	if !ok {
		return &NotFoundError{Resource: "project", ID: c.ProjectID}
	}
	org := s.orgs[p.OrganizationID]
	n := 0
	for _, existing := range s.connectors {
		if other, ok := s.projects[existing.ProjectID]; ok && other.OrganizationID == p.OrganizationID {
			n++
		}
	}
	if org != nil && n >= org.Limits.MaxConnectors {
		return &LimitExceededError{Resource: "connectors", Current: n, Limit: org.Limits.MaxConnectors}
	}
	if c.Status == "" {
		c.Status = ConnectorStatusConnected
	}
	c.ID = NewID()
	c.Revision = 1
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.connectors[c.ID] = c.clone()
	return nil
}

// GetConnector retrieves a connector by ID
func (s *Store) GetConnector(id string) (*Connector, error) {
	c, ok := s.connectors[id]
	if !ok {
		return nil, &NotFoundError{Resource: "connector", ID: id}
	}
	return c.clone(), nil
}

// ListConnectors lists connectors matching the filter, ordered by creation
func (s *Store) ListConnectors(filter ConnectorFilter) []*Connector {
	var out []*Connector
	for _, c := range s.connectors {
		if filter.ProjectID != "" && c.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, c.clone())
	}
	sortByID(out, func(c *Connector) string { return c.ID })
	return out
}

// UpdateConnector replaces a connector's mutable fields. The owning project
// is immutable through update.
func (s *Store) UpdateConnector(c *Connector, expectedRevision int64) (*Connector, error) {
	current, ok := s.connectors[c.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "connector", ID: c.ID}
	}
	if c.ProjectID != current.ProjectID {
		return nil, &ImmutableFieldError{Resource: "connector", Field: "project_id"}
	}
	if err := checkRevision("connector", c.ID, expectedRevision, current.Revision); err != nil {
		return nil, err
	}
	c.CreatedAt = current.CreatedAt
	c.Revision = current.Revision + 1
	c.UpdatedAt = s.now()
	s.connectors[c.ID] = c.clone()
	return c.clone(), nil
}

// DeleteConnector removes a connector and its sync jobs
func (s *Store) DeleteConnector(id string) error {
	if _, ok := s.connectors[id]; !ok {
		return &NotFoundError{Resource: "connector", ID: id}
	}
	for jid, j := range s.syncJobs {
		if j.ConnectorID == id {
			delete(s.syncJobs, jid)
		}
	}
	delete(s.connectors, id)
	return nil
}

// StartSyncJob enqueues a sync job for a connector and returns it
// immediately; callers poll for completion
func (s *Store) StartSyncJob(connectorID string) (*SyncJob, error) {
	c, ok := s.connectors[connectorID]
	if !ok {
		return nil, &NotFoundError{Resource: "connector", ID: connectorID}
	}
	job := &SyncJob{
		ID:          NewID(),
		ConnectorID: connectorID,
		ProjectID:   c.ProjectID,
		Status:      SyncJobQueued,
		StartedAt:   s.now(),
	}
	s.syncJobs[job.ID] = job.clone()
	return job.clone(), nil
}

// GetSyncJob retrieves a sync job by ID
func (s *Store) GetSyncJob(id string) (*SyncJob, error) {
	j, ok := s.syncJobs[id]
	if !ok {
		return nil, &NotFoundError{Resource: "sync job", ID: id}
	}
	return j.clone(), nil
}

// AdvanceSyncJobs moves queued jobs to running and running jobs to completed,
// stamping the connector's last sync time on completion. Returns how many
// jobs changed state.
func (s *Store) AdvanceSyncJobs() int {
	now := s.now()
	n := 0
	for _, j := range s.syncJobs {
		switch j.Status {
		case SyncJobQueued:
			j.Status = SyncJobRunning
			j.Progress = 50
			n++
		case SyncJobRunning:
			j.Status = SyncJobCompleted
			j.Progress = 100
			t := now
			j.CompletedAt = &t
			if c, ok := s.connectors[j.ConnectorID]; ok {
				last := now
				c.LastSyncAt = &last
				c.Status = ConnectorStatusConnected
				c.Revision++
				c.UpdatedAt = now
			}
			n++
		}
	}
	return n
}
