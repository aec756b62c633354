package entities

// ClaimResult is the outcome of a claim attempt
type ClaimResult struct {
	Rewarded   bool
	Reward     int64
	NewBalance int64
	Remaining  int64 // seconds until the next claim, only set when not rewarded
}

// TransferResult carries both balances after a transfer
type TransferResult struct {
	Amount      int64
	FromBalance int64
	ToBalance   int64
}

// PrivilegeResult reports a role reconciliation. Message is user-facing and
// is set whether or not anything changed.
type PrivilegeResult struct {
	Changed bool
	// Granted is set when the target tier role was newly added, as opposed to
	// only stale tier roles being removed.
	Granted bool
	Message string
}

// LevelStatus is a member's activity, tier and role reconciliation at one point in time
type LevelStatus struct {
	Activity  MemberActivity
	Tier      LevelTier
	Next      *LevelTier // nil at the top tier
	Privilege PrivilegeResult
}
