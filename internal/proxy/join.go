package proxy

// JoinPath concatenates a resolved base address with a forwarded path
// suffix. An empty suffix leaves the base unchanged (no trailing slash
// is forced); otherwise exactly one slash separates base and suffix.
// The rule is deliberately literal: backends may treat a double slash,
// a missing slash and a clean join as distinct paths, so nothing is
// normalized beyond the joining slash itself.
func JoinPath(base, suffix string) string {
	if suffix == "" {
		return base
	}
	if len(base) > 0 && base[len(base)-1] == '/' {
		return base + suffix
	}
	return base + "/" + suffix
}
