package dupfind

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHumanSize parses human-readable size strings (e.g., "2M", "512k", "1G")
func ParseHumanSize(sizeStr string) (int, error) {
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// Convert to uppercase for consistent parsing
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))

	// Extract numeric part and suffix
	var numPart string
	var suffix string
	for i, char := range sizeStr {
		if char >= '0' && char <= '9' || char == '.' {
			numPart += string(char)
		} else {
			suffix = sizeStr[i:]
			break
		}
	}

	if numPart == "" {
		return 0, fmt.Errorf("no numeric part in size string: %s", sizeStr)
	}

	num, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric part in size string %s: %w", sizeStr, err)
	}

	var multiplier int64 = 1
	switch suffix {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix: %s", suffix)
	}

	result := int64(num * float64(multiplier))
	if result <= 0 {
		return 0, fmt.Errorf("size must be positive: %s", sizeStr)
	}
	if result > int64(^uint(0)>>1) { // Check for int overflow
		return 0, fmt.Errorf("size too large: %s", sizeStr)
	}

	return int(result), nil
}

// HumanSize formats a byte count with the same binary suffixes ParseHumanSize
// accepts
func HumanSize(n uint64) string {
	const (
		K = 1 << 10
		M = 1 << 20
		G = 1 << 30
		T = 1 << 40
	)

	switch {
	case n >= T:
		return fmt.Sprintf("%.1fT", float64(n)/T)
	case n >= G:
		return fmt.Sprintf("%.1fG", float64(n)/G)
	case n >= M:
		return fmt.Sprintf("%.1fM", float64(n)/M)
	case n >= K:
		return fmt.Sprintf("%.1fK", float64(n)/K)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
