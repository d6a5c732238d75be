// Package content embeds the lesson DNA that ships with the binary.
package content

import "embed"

//go:embed dna/*.yaml
var DNA embed.FS

const DNADir = "dna"
