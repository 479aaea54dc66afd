package config

const (
	// DefaultDatabasePath is the default path for the marketplace SQLite database
	DefaultDatabasePath = "./bookswap.db"

	// DefaultAPIURL is where CLI commands reach the API unless -api is given
	DefaultAPIURL = "http://localhost:8188"

	// DefaultSessionFile stores the CLI session between invocations
	DefaultSessionFile = ".bookswap-session.json"
)
