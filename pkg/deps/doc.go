// Package deps defines the collaborators the diff engine depends on.
//
// # Overview
//
// cratediff never talks to Cargo or a registry directly from the diff
// logic. Instead it consumes two narrow interfaces:
//
//   - [MetadataProvider]: turns a project (workspace root or Cargo.toml)
//     into a [depgraph.Graph]. Implementations live in package cargo
//     (`cargo metadata`) and package lockfile (offline Cargo.lock reader).
//   - [RegistryProvider]: resolves versions, repository URLs, commit hashes
//     and unpacked source directories. Implementations live in package
//     registry.
//
// # Testing
//
// Mocks for both interfaces are generated with go.uber.org/mock:
//
//	ctrl := gomock.NewController(t)
//	reg := deps.NewMockRegistryProvider(ctrl)
//	reg.EXPECT().LatestOrPinned(gomock.Any(), "serde", nil).Return(deps.CrateInfo{...}, nil)
//
// # Manifest Paths
//
// [ManifestFile] normalizes user input so that providers can accept either a
// directory or an explicit Cargo.toml.
//
// [depgraph.Graph]: github.com/matzehuels/cratediff/pkg/depgraph.Graph
package deps
