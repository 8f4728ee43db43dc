// Package registry persists the destination registry: which output channel
// each tenant has bound for alert broadcasts. State lives in a small
// indented JSON file that is loaded at startup and rewritten on every change.
package registry
