// Package build provides the canonical build execution pipeline for sitebuilder.
//
// Every execution path (the build command, watch mode and the daemon's
// scheduled rebuilds) routes through Service.Run, which wraps the site
// pipeline with a build ID, an optional git checkout, metrics, build
// history, NATS notification and publishing of the generated site.
package build
