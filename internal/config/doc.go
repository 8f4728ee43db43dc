// Package config loads and validates the skywatch YAML configuration.
// Secrets (API credentials, webhook URLs, admin key) are never stored in the
// file itself; the config carries environment variable names that are
// resolved at the point of use. Watch provides fsnotify-based hot reload.
package config
