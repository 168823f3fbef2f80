package sender

// Metadata provides context for the delivery operation.
// This information is included in HTTP headers for server-side tracking.
type Metadata struct {
	// Hostname is the agent's hostname
	Hostname string

	// OSArch is the operating system and architecture (e.g., "linux/amd64")
	OSArch string

	// AuthKey is the API authentication key
	AuthKey string

	// ServiceURL is the base URL of the ingestion service
	ServiceURL string
}
