// Package dupfind finds files with identical content under a directory and lets a
// person decide, group by group, which copies to keep.
//
// # Core API
//
// The main entry point is Finder, which wires traversal, hashing and the
// interactive resolver over an afero filesystem:
//
//	console := dupfind.NewConsole(os.Stdin, os.Stdout, false)
//	finder, err := dupfind.NewFinder(afero.NewOsFs(), console, logger, dupfind.Options{
//		Root:       "/path/to/dir",
//		Recursive:  true,
//		Algorithm:  "sha256",
//		HashBuffer: 64 * 1024,
//	})
//	summary, err := finder.Run(ctx)
//
// # Pipeline
//
// Files are bucketed by exact size first; only buckets with more than one member
// are hashed. Each bucket is then split by digest, and every run of two or more
// identical digests is a candidate group. A candidate whose file names look
// unrelated is skipped (see FileNamesSimilar). Accepted groups are presented on
// the Console in ascending size order, then ascending digest order, members with
// the shortest base names first (see PresentationOrder).
//
// Files that cannot be hashed never match anything. Symbolic links are never
// deleted, and a link is never grouped with its own target.
//
// # Configuration
//
// LoadConfig reads an INI file; ApplyOverrides and LoadEnvOverrides layer
// command line and DUPFIND_* values on top. Enable debug output with:
//
//	dupfind.SetDebugFlags("scan,hash")
package dupfind
