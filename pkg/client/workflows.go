package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/inspecta/inspecta/pkg/models"
)

// Workflows lists all workflow definitions.
func (c *Client) Workflows(ctx context.Context) ([]*models.Workflow, error) {
	return list[*models.Workflow](ctx, c, "/workflows/workflows/", nil)
}

// WorkflowsByInspectionType lists the workflow definitions configured
// for one inspection type. An empty result is a valid state: the
// inspection simply runs without guided steps.
func (c *Client) WorkflowsByInspectionType(ctx context.Context, typeID int) ([]*models.Workflow, error) {
	query := url.Values{"inspection_type": []string{strconv.Itoa(typeID)}}

	return list[*models.Workflow](ctx, c, "/workflows/workflows/", query)
}

// WorkflowByID fetches a full definition including its steps.
func (c *Client) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	var wf models.Workflow

	if err := c.do(ctx, http.MethodGet, "/workflows/workflows/"+id+"/", nil, nil, &wf); err != nil {
		return nil, err
	}

	return &wf, nil
}
