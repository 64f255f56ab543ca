package compile

// WarningKind classifies a non-fatal compile observation.
type WarningKind uint8

const (
	// IgnoredTargetContext marks a conversion rule whose target
	// half-rule declared an ante or post context; per spec §9 Open
	// Question decision, the source grammar allows writing one but it
	// has no effect on matching or replacement, so it is dropped with
	// a warning rather than rejected.
	IgnoredTargetContext WarningKind = iota
)

// Warning is a recoverable compile-time observation attached to the
// compiled result rather than returned as an error.
type Warning struct {
	Kind    WarningKind
	Message string
}
