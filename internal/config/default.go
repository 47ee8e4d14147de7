package config

// DefaultConfigYAML is the default configuration template
const DefaultConfigYAML = `api:
  port: 8080
  cors_origins:
    - "http://localhost:3000"
  # Generate a key with "arqut-registry apikey generate" and put the hash here to
  # require Bearer auth on mutating endpoints. Empty leaves the API open.
  api_key:
    hash: ""

storage:
  path: "./registry.db"

logging:
  level: "info"
  format: "text"
`
