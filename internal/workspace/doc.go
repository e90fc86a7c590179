// Package workspace manages the directory a remote site source is checked
// out into.
//
// Ephemeral workspaces (sitebuilder-*) are created per build and removed
// afterwards. Persistent workspaces keep a fixed path so the daemon can
// fetch into an existing checkout instead of cloning every time.
package workspace
