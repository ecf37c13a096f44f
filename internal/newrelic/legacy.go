package newrelic

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-json-experiment/json"

	"relicnotify/internal/credentials"
	"relicnotify/internal/target"
)

type legacyDeployment struct {
	Revision    string `json:"revision,omitempty"`
	Changelog   string `json:"changelog,omitempty"`
	Description string `json:"description,omitempty"`
	User        string `json:"user,omitempty"`
}

type legacyRequest struct {
	Deployment legacyDeployment `json:"deployment"`
}

// SendLegacy records a deployment for applicationID through the REST API.
func (c *Client) SendLegacy(ctx context.Context, secret credentials.Secret, applicationID, description, revision, changelog, user string, european bool) error {
	applicationID = strings.TrimSpace(applicationID)
	fail := func(status int, detail string, err error) error {
		return &NotificationError{
			Protocol:   target.ProtocolLegacy,
			Identifier: applicationID,
			StatusCode: status,
			Detail:     detail,
			Err:        err,
		}
	}
	if applicationID == "" {
		return fail(0, "application id is empty", nil)
	}

	payload, err := json.Marshal(legacyRequest{Deployment: legacyDeployment{
		Revision:    revision,
		Changelog:   changelog,
		Description: description,
		User:        user,
	}})
	if err != nil {
		return fail(0, "", fmt.Errorf("encode deployment: %w", err))
	}

	endpoint := fmt.Sprintf("%s/v2/applications/%s/deployments.json", c.EndpointFor(european), url.PathEscape(applicationID))
	resp, err := c.post(ctx, endpoint, "X-Api-Key", secret, payload)
	if err != nil {
		return fail(resp.status, "", err)
	}
	if !successful(resp.status) {
		return fail(resp.status, "", nil)
	}
	return nil
}
