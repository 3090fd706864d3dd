// Package config loads the role endpoint table and the timing constants
// that parameterize every resource actor. The endpoint table is shipped as
// embedded YAML validated against an embedded JSON Schema at startup (§6's
// "design constants; must be configurable in the implementation"); the
// timing constants follow the teacher's envOr/envIntOr/envDurationOr
// pattern from registry/cmd/registry/main.go so operators can override
// them without a rebuild.
package config

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/maccradar/picknpack/internal/wire"
)

//go:embed roles.yaml roles.schema.json
var embedded embed.FS

// RoleConfig is the endpoint and required-peer binding for one node role.
type RoleConfig struct {
	SymbolicID         wire.SymbolicID
	UpstreamEndpoint   string
	DownstreamEndpoint string
	ExternalEndpoint   string
	RequiredPeers      []wire.SymbolicID
}

// RoleTable maps role name ("plant", "line", "module", "device") to its
// binding.
type RoleTable map[string]RoleConfig

// rawDoc mirrors roles.yaml's shape for unmarshalling; validation happens
// against the JSON Schema on the JSON-reencoded form, then this struct is
// populated for convenient typed access.
type rawDoc struct {
	Roles map[string]rawRole `yaml:"roles"`
}

type rawRole struct {
	SymbolicID         int    `yaml:"symbolic_id"`
	UpstreamEndpoint   string `yaml:"upstream_endpoint"`
	DownstreamEndpoint string `yaml:"downstream_endpoint"`
	ExternalEndpoint   string `yaml:"external_endpoint"`
	RequiredPeers      []int  `yaml:"required_peers"`
}

// LoadRoleTable reads, schema-validates, and parses the embedded role
// endpoint table.
func LoadRoleTable() (RoleTable, error) {
	yamlBytes, err := embedded.ReadFile("roles.yaml")
	if err != nil {
		return nil, fmt.Errorf("config: read roles.yaml: %w", err)
	}
	schemaBytes, err := embedded.ReadFile("roles.schema.json")
	if err != nil {
		return nil, fmt.Errorf("config: read roles.schema.json: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(yamlBytes, &doc); err != nil {
		return nil, fmt.Errorf("config: unmarshal roles.yaml: %w", err)
	}
	// yaml.v3 decodes maps as map[string]interface{}; jsonschema needs the
	// JSON-canonical form, so round-trip through encoding/json.
	normalized, err := jsonRoundTrip(doc)
	if err != nil {
		return nil, fmt.Errorf("config: normalize roles.yaml: %w", err)
	}

	var schemaDoc any
	if err := json.Unmarshal(schemaBytes, &schemaDoc); err != nil {
		return nil, fmt.Errorf("config: unmarshal roles.schema.json: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("roles.schema.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("config: add schema resource: %w", err)
	}
	schema, err := c.Compile("roles.schema.json")
	if err != nil {
		return nil, fmt.Errorf("config: compile schema: %w", err)
	}
	if err := schema.Validate(normalized); err != nil {
		return nil, fmt.Errorf("config: roles.yaml failed schema validation: %w", err)
	}

	var parsed rawDoc
	if err := yaml.Unmarshal(yamlBytes, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse roles.yaml: %w", err)
	}

	table := make(RoleTable, len(parsed.Roles))
	for name, r := range parsed.Roles {
		peers := make([]wire.SymbolicID, len(r.RequiredPeers))
		for i, p := range r.RequiredPeers {
			peers[i] = wire.SymbolicID(p)
		}
		table[name] = RoleConfig{
			SymbolicID:         wire.SymbolicID(r.SymbolicID),
			UpstreamEndpoint:   r.UpstreamEndpoint,
			DownstreamEndpoint: r.DownstreamEndpoint,
			ExternalEndpoint:   r.ExternalEndpoint,
			RequiredPeers:      peers,
		}
	}
	return table, nil
}

func jsonRoundTrip(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Timing holds the design-fixed timing constants from §6, each
// overridable via environment variable. RunListDepth and PayloadCap are
// carried for reference only: the lifecycle package enforces its own
// MaxRunListDepth and MaxPayloadItems constants, so overriding these two
// does not change those bounds.
type Timing struct {
	Liveness          int
	HeartbeatInterval time.Duration
	ReconnectInitial  time.Duration
	ReconnectMax      time.Duration
	RunListDepth      int
	PayloadCap        int
	ClientRetryBudget int
	RequestTimeout    time.Duration
}

// LoadTiming builds Timing from environment overrides layered on the §6
// defaults (L=3, heartbeat_interval=1000ms, I0=1000ms, Imax=32000ms, S=5,
// P=10, client retry budget=3, request timeout=2500ms).
func LoadTiming() Timing {
	return Timing{
		Liveness:          envIntOr("PICKNPACK_LIVENESS", 3),
		HeartbeatInterval: envDurationOr("PICKNPACK_HEARTBEAT_INTERVAL", time.Second),
		ReconnectInitial:  envDurationOr("PICKNPACK_RECONNECT_INITIAL", time.Second),
		ReconnectMax:      envDurationOr("PICKNPACK_RECONNECT_MAX", 32*time.Second),
		RunListDepth:      envIntOr("PICKNPACK_RUNLIST_DEPTH", 5),
		PayloadCap:        envIntOr("PICKNPACK_PAYLOAD_CAP", 10),
		ClientRetryBudget: envIntOr("PICKNPACK_CLIENT_RETRY_BUDGET", 3),
		RequestTimeout:    envDurationOr("PICKNPACK_REQUEST_TIMEOUT", 2500*time.Millisecond),
	}
}

// NodeName resolves the node's symbolic name from argv per §6's CLI
// surface: argv[1] if present, otherwise defaultName.
func NodeName(args []string, defaultName string) string {
	if len(args) > 1 && args[1] != "" {
		return args[1]
	}
	return defaultName
}

// Federation holds the connection settings for the cross-plant federation
// replicated map (internal/federation), following the teacher's
// REDIS_URL/REDIS_PASSWORD convention from registry/cmd/registry/main.go.
type Federation struct {
	RedisURL      string
	RedisPassword string
	ClusterName   string
}

// LoadFederation reads the federation connection settings from the
// environment.
func LoadFederation() Federation {
	return Federation{
		RedisURL:      envOr("PICKNPACK_REDIS_URL", "localhost:6379"),
		RedisPassword: os.Getenv("PICKNPACK_REDIS_PASSWORD"),
		ClusterName:   envOr("PICKNPACK_CLUSTER_NAME", "picknpack"),
	}
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOr(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envDurationOr(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
