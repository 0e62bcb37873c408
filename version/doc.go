// Package version reports the build metadata of the dzip binary.
//
// Release builds stamp Version, Commit and Date at link time:
//
//	go build -ldflags "-X github.com/dendrascience/dendra-zip/version.Version=v1.0.0 \
//	  -X github.com/dendrascience/dendra-zip/version.Commit=$(git rev-parse HEAD) \
//	  -X github.com/dendrascience/dendra-zip/version.Date=$(date -u +%FT%TZ)" ./
//
// Unstamped builds read the module version and VCS settings from
// debug.ReadBuildInfo. The same version string is shown by dzip --version,
// printed by dzip version and recorded in the tool field of slice manifests.
package version
