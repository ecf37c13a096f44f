package newrelic

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"

	"relicnotify/internal/credentials"
	"relicnotify/internal/services"
	"relicnotify/internal/target"
)

const createDeploymentMutation = `mutation CreateDeployment($deployment: ChangeTrackingDeploymentInput!) {
  changeTrackingCreateDeployment(deployment: $deployment) {
    deploymentId
    entityGuid
  }
}`

// EntityDeployment carries the fields of a NerdGraph change tracking
// deployment. Timestamp accepts epoch milliseconds or RFC 3339 text; empty
// means the time New Relic receives the request.
type EntityDeployment struct {
	EntityGUID     string
	Version        string
	Changelog      string
	Commit         string
	DeepLink       string
	DeploymentType string
	Description    string
	GroupID        string
	Timestamp      string
	User           string
}

type deploymentInput struct {
	EntityGUID     string `json:"entityGuid"`
	Version        string `json:"version"`
	Changelog      string `json:"changelog,omitempty"`
	Commit         string `json:"commit,omitempty"`
	DeepLink       string `json:"deepLink,omitempty"`
	DeploymentType string `json:"deploymentType,omitempty"`
	Description    string `json:"description,omitempty"`
	GroupID        string `json:"groupId,omitempty"`
	Timestamp      int64  `json:"timestamp,omitzero"`
	User           string `json:"user,omitempty"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Errors []graphQLError `json:"errors"`
}

// SendEntity creates a change tracking deployment for d.EntityGUID through
// NerdGraph. Error messages returned by NerdGraph are written to detail
// before the error is returned.
func (c *Client) SendEntity(ctx context.Context, secret credentials.Secret, d EntityDeployment, european bool, detail DetailWriter) error {
	guid := strings.TrimSpace(d.EntityGUID)
	fail := func(status int, msg string, err error) error {
		if msg != "" && detail != nil {
			detail.Detail(msg)
		}
		return &NotificationError{
			Protocol:   target.ProtocolEntity,
			Identifier: guid,
			StatusCode: status,
			Detail:     msg,
			Err:        err,
		}
	}
	if guid == "" {
		return fail(0, "", services.Wrap(services.ErrValidation, "newrelic", "send entity", "entity guid is empty", nil))
	}

	input, err := buildDeploymentInput(d)
	if err != nil {
		return fail(0, "", err)
	}
	payload, err := json.Marshal(graphQLRequest{
		Query:     createDeploymentMutation,
		Variables: map[string]any{"deployment": input},
	})
	if err != nil {
		return fail(0, "", fmt.Errorf("encode mutation: %w", err))
	}

	resp, err := c.post(ctx, c.EndpointFor(european)+"/graphql", "API-Key", secret, payload)
	if err != nil {
		return fail(resp.status, "", err)
	}
	messages := graphQLMessages(resp.body)
	if !successful(resp.status) {
		if messages == "" {
			messages = snippet(resp.body)
		}
		return fail(resp.status, messages, nil)
	}
	if messages != "" {
		return fail(resp.status, messages, nil)
	}
	return nil
}

func buildDeploymentInput(d EntityDeployment) (deploymentInput, error) {
	timestamp, err := ParseTimestamp(d.Timestamp)
	if err != nil {
		return deploymentInput{}, err
	}
	return deploymentInput{
		EntityGUID:     strings.TrimSpace(d.EntityGUID),
		Version:        d.Version,
		Changelog:      d.Changelog,
		Commit:         d.Commit,
		DeepLink:       d.DeepLink,
		DeploymentType: NormalizeDeploymentType(d.DeploymentType),
		Description:    d.Description,
		GroupID:        d.GroupID,
		Timestamp:      timestamp,
		User:           d.User,
	}, nil
}

func graphQLMessages(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var parsed graphQLResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	messages := make([]string, 0, len(parsed.Errors))
	for _, e := range parsed.Errors {
		if msg := strings.TrimSpace(e.Message); msg != "" {
			messages = append(messages, msg)
		}
	}
	return strings.Join(messages, "; ")
}
