package dupfind

import "strings"

// Context constants for skiplist operations
const (
	ScanContext = "scan"
)

// Hash type constants
const (
	HashTypeSHA256     uint16 = 2 // SHA-256 (32 bytes)
	HashTypeSHA512_256 uint16 = 4 // SHA-512/256 (32 bytes)
	HashTypeBLAKE3     uint16 = 5 // BLAKE3, default output length (32 bytes)
)

// DigestSize is the length in bytes of every supported digest
const DigestSize = 32

// Defaults used when neither the config file, the environment nor the command line
// say otherwise
const (
	DefaultHashAlgorithm = "sha256"
	DefaultHashBuffer    = "64K"
	DefaultColorMode     = "auto"
)

// Environment variable prefix for configuration overrides (DUPFIND_ALGORITHM etc)
const EnvPrefix = "dupfind"

// Debug areas understood by SetDebugFlags
const (
	DebugScan    = "scan"
	DebugHash    = "hash"
	DebugGroup   = "group"
	DebugResolve = "resolve"
)

// Console transcript, printed verbatim
const (
	MsgFoundHeader      = "\nFound %d duplicate files:\n"
	MsgListing          = "%d) %s\n"
	MsgKeepPrompt       = "Enter files to keep (comma-separated), 's' to skip, 'q' to quit: "
	MsgNoneSelected     = "No valid files selected.\n"
	MsgDissimilar       = "Skipping group with dissimilar file names.\n"
	MsgDeleteHeader     = "The following files will be deleted:\n"
	MsgDeleteListing    = "%s\n"
	MsgConfirmPrompt    = "Confirm deletion (y/n)? "
	MsgCancelled        = "Deletion cancelled.\n"
	MsgDeleted          = "Deleted: %s\n"
	MsgWouldDelete      = "Would delete: %s\n"
	MsgSkippedSymlink   = "Skipped symbolic link: %s\n"
	MsgDeleteError      = "Error deleting %s (%s)\n"
	MsgHashError        = "Error computing hash for file: %s\n"
	KeepInputSkip       = "s"
	KeepInputQuit       = "q"
	KeepInputSeparator  = ","
	ConfirmInputConfirm = 'y'
)

// HashTypeName returns the human-readable name for a hash type
func HashTypeName(hashType uint16) string {
	switch hashType {
	case HashTypeSHA256:
		return "sha256"
	case HashTypeSHA512_256:
		return "sha512_256"
	case HashTypeBLAKE3:
		return "blake3"
	default:
		return "unknown"
	}
}

// HashTypeFromName returns the hash type constant from a name (case-insensitive)
func HashTypeFromName(name string) (uint16, bool) {
	switch strings.ToLower(name) {
	case "sha256":
		return HashTypeSHA256, true
	case "sha512_256", "sha512/256":
		return HashTypeSHA512_256, true
	case "blake3":
		return HashTypeBLAKE3, true
	default:
		return 0, false
	}
}
