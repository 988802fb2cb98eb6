package entry

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
// The error wraps ErrUnauthorized.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnauthorized, r.Reason)
}

// OwnershipContext provides context for update and delete guards.
type OwnershipContext struct {
	EntryID       uint64
	StoredOwner   string
	DeclaredOwner string
}

// CanUpdateEntry evaluates whether the declared owner may update an entry.
// Rules:
// - Declared owner must equal the stored owner exactly (case-sensitive)
func CanUpdateEntry(ctx OwnershipContext) GuardResult {
	return checkOwner(ctx, "update")
}

// CanDeleteEntry evaluates whether the declared owner may delete an entry.
// Rules:
// - Declared owner must equal the stored owner exactly (case-sensitive)
func CanDeleteEntry(ctx OwnershipContext) GuardResult {
	return checkOwner(ctx, "delete")
}

func checkOwner(ctx OwnershipContext, action string) GuardResult {
	if ctx.DeclaredOwner != ctx.StoredOwner {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%q cannot %s entry %d", ctx.DeclaredOwner, action, ctx.EntryID),
		}
	}
	return GuardResult{Allowed: true}
}
