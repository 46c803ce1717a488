package armature

import (
	"strconv"
	"strings"
)

// noTransform is how presentation state reports the absence of a transform.
const noTransform = "none"

// baseTransform normalises a transform read from presentation state.
func baseTransform(s string) string {
	s = strings.TrimSpace(s)
	if s == noTransform {
		return ""
	}
	return s
}

// composeTransform renders the transform of a bone: its base transform followed
// by a single rotate term. It is recomputed from scratch on every call so
// repeated rotations never accumulate terms.
func composeTransform(base string, deg float64) string {
	var b strings.Builder
	if base != "" {
		b.WriteString(base)
		b.WriteByte(' ')
	}
	b.WriteString("rotate(")
	b.WriteString(strconv.FormatFloat(deg, 'f', -1, 64))
	b.WriteString("deg)")
	return b.String()
}
