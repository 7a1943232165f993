// Package configs manages the KeyMaker user configuration.
//
// Configuration is stored in TOML format at:
//
//	<UserConfigDir>/keymaker/config.toml
//
// or wherever KEYMAKER_CONFIG points.
//
// # User Configuration
//
//	[owner]
//	name = "Alice"
//	email = "alice@example.com"
//	company = "Example"
//
//	[security]
//	private_key = "~/.ssh/keymaker_rsa"
//
//	[storage]
//	keyrings_path = "~/keyrings"
//
// The private key is only ever referenced by path. Its passphrase is never
// stored; it comes from KEYMAKER_PASSPHRASE or an interactive prompt.
//
// # Settings
//
// DefaultSettings resolves default paths from the environment
// (XDG_DATA_HOME, the user config directory). Callers pass the result
// explicitly instead of reading package state.
package configs
