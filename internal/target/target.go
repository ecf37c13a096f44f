package target

import "strings"

// Protocol identifies which New Relic API version a target is sent through.
type Protocol string

const (
	// ProtocolLegacy is the REST v2 "application deployments" endpoint keyed by application ID.
	ProtocolLegacy Protocol = "application"
	// ProtocolEntity is the NerdGraph change tracking mutation keyed by entity GUID.
	ProtocolEntity Protocol = "entity"
)

// NotificationTarget is one configured deployment notification. String fields
// other than APIKeyID and ApplicationID may carry $VAR references that are
// resolved against the build environment on every dispatch.
type NotificationTarget struct {
	APIKeyID       string `toml:"api_key_id" json:"api_key_id"`
	ApplicationID  string `toml:"application_id" json:"application_id,omitempty"`
	EntityGUID     string `toml:"entity_guid" json:"entity_guid,omitempty"`
	Description    string `toml:"description" json:"description,omitempty"`
	Revision       string `toml:"revision" json:"revision,omitempty"`
	Changelog      string `toml:"changelog" json:"changelog,omitempty"`
	User           string `toml:"user" json:"user,omitempty"`
	Commit         string `toml:"commit" json:"commit,omitempty"`
	DeepLink       string `toml:"deeplink" json:"deeplink,omitempty"`
	DeploymentType string `toml:"deployment_type" json:"deployment_type,omitempty"`
	GroupID        string `toml:"group_id" json:"group_id,omitempty"`
	Timestamp      string `toml:"timestamp" json:"timestamp,omitempty"`
	Version        string `toml:"version" json:"version,omitempty"`
	European       bool   `toml:"european" json:"european,omitempty"`
}

// Resolved holds the template-expanded field values of a target for a single
// dispatch. It is computed fresh per run and never shared between targets.
type Resolved struct {
	APIKeyID       string
	ApplicationID  string
	EntityGUID     string
	Description    string
	Revision       string
	Changelog      string
	User           string
	Commit         string
	DeepLink       string
	DeploymentType string
	GroupID        string
	Timestamp      string
	Version        string
	European       bool
}

// Resolve expands every templated field of t against env. The receiver is
// not modified.
func (t NotificationTarget) Resolve(env map[string]string) Resolved {
	return Resolved{
		APIKeyID:       strings.TrimSpace(t.APIKeyID),
		ApplicationID:  strings.TrimSpace(t.ApplicationID),
		EntityGUID:     strings.TrimSpace(Expand(t.EntityGUID, env)),
		Description:    Expand(t.Description, env),
		Revision:       Expand(t.Revision, env),
		Changelog:      Expand(t.Changelog, env),
		User:           Expand(t.User, env),
		Commit:         Expand(t.Commit, env),
		DeepLink:       Expand(t.DeepLink, env),
		DeploymentType: Expand(t.DeploymentType, env),
		GroupID:        Expand(t.GroupID, env),
		Timestamp:      strings.TrimSpace(Expand(t.Timestamp, env)),
		Version:        Expand(t.Version, env),
		European:       t.European,
	}
}

// Protocol reports which API version the resolved target selects. A non-empty
// entity GUID always wins.
func (r Resolved) Protocol() Protocol {
	if r.EntityGUID != "" {
		return ProtocolEntity
	}
	return ProtocolLegacy
}

// Identifier returns the value that names this target in diagnostics: the
// entity GUID for entity targets, the application ID otherwise.
func (r Resolved) Identifier() string {
	if r.Protocol() == ProtocolEntity {
		return r.EntityGUID
	}
	return r.ApplicationID
}

// Label renders the identifier with its kind, e.g. "Application ID: 42".
func (r Resolved) Label() string {
	if r.Protocol() == ProtocolEntity {
		return "Entity GUID: " + r.EntityGUID
	}
	return "Application ID: " + r.ApplicationID
}
