package dupfind

import "errors"

var ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

var ErrInvalidBufferSize = errors.New("invalid hash buffer size")

var ErrInvalidColorMode = errors.New("invalid color mode")

var ErrInvalidVerboseLevel = errors.New("invalid verbose level")

var ErrShortWrite = errors.New("short write")
