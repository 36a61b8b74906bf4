package smcore

import "strings"

// The generic case conversions below are not true inverses for identifiers
// containing acronym runs ("VolumeSizeInGB" would round-trip as
// "VolumeSizeInGB" -> "volume_size_in_g_b" -> "VolumeSizeInGB" only via the
// override tables). Identifiers known to break the generic rule are listed
// explicitly; the tables are consulted before the rule.
var snakeToPascalOverrides = map[string]string{
	"volume_size_in_gb":          "VolumeSizeInGB",
	"volume_size_in_g_b":         "VolumeSizeInGB",
	"volume_size_in_gb_per_node": "VolumeSizeInGBPerNode",
	"total_size_in_gb":           "TotalSizeInGB",
}

var pascalToSnakeOverrides = map[string]string{
	"VolumeSizeInGB":        "volume_size_in_gb",
	"VolumeSizeInGBPerNode": "volume_size_in_gb_per_node",
	"TotalSizeInGB":         "total_size_in_gb",
}

// SnakeToPascal converts an in-memory snake_case identifier to the wire
// naming convention: split on underscores, title-case each segment,
// concatenate.
func SnakeToPascal(s string) string {
	if p, ok := snakeToPascalOverrides[s]; ok {
		return p
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, seg := range strings.Split(s, "_") {
		if seg == "" {
			continue
		}
		b.WriteString(strings.ToUpper(seg[:1]))
		b.WriteString(seg[1:])
	}
	return b.String()
}

// PascalToSnake converts a wire identifier to snake_case: an underscore is
// inserted before every uppercase letter except the first character, then
// everything is lowercased.
func PascalToSnake(s string) string {
	if sn, ok := pascalToSnakeOverrides[s]; ok {
		return sn
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
