package entry

// Limits for pagination.
const (
	DefaultLimit uint32 = 10
	MaxLimit     uint32 = 30
)

// EffectiveLimit clamps a requested page size: unset means DefaultLimit,
// anything above MaxLimit is MaxLimit.
func EffectiveLimit(limit *uint32) int {
	l := DefaultLimit
	if limit != nil {
		l = *limit
	}
	if l > MaxLimit {
		l = MaxLimit
	}
	return int(l)
}
