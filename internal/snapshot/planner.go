package snapshot

// Strategy names how the destination database is cleared before reinsertion.
type Strategy string

const (
	// StrategyBulkCascade clears each table with a cascading truncate,
	// letting the engine resolve dependents. Step order is irrelevant.
	StrategyBulkCascade Strategy = "bulk_cascade"
	// StrategyOrdered issues plain deletes in leaf-to-root order for engines
	// without cascading truncation.
	StrategyOrdered Strategy = "ordered"
)

// Capabilities describes what the destination engine supports. Resolved once
// per engine at configuration time instead of being rediscovered by catching
// failures on every restore.
type Capabilities struct {
	BulkCascadeDelete bool
}

// CapabilitiesFor maps a GORM dialect name to engine capabilities.
func CapabilitiesFor(dialect string) Capabilities {
	switch dialect {
	case "postgres":
		return Capabilities{BulkCascadeDelete: true}
	default:
		return Capabilities{}
	}
}

// DeleteStep clears one table.
type DeleteStep struct {
	Table string
}

// DeletePlan is an ordered list of delete steps plus the strategy they
// implement. Executing a bulk-cascade plan that the engine rejects must roll
// back and fall through to Fallback().
type DeletePlan struct {
	Strategy Strategy
	Steps    []DeleteStep
}

// PlanDeletion builds the delete plan for the given engine capabilities.
// Both strategies walk the schema in leaf-to-root order; for bulk cascade the
// order is irrelevant but keeping it deterministic makes failures
// reproducible.
func PlanDeletion(caps Capabilities) DeletePlan {
	strategy := StrategyOrdered
	if caps.BulkCascadeDelete {
		strategy = StrategyBulkCascade
	}

	steps := make([]DeleteStep, 0, len(Entities))
	for _, table := range DeletionOrder() {
		steps = append(steps, DeleteStep{Table: table})
	}
	return DeletePlan{Strategy: strategy, Steps: steps}
}

// Fallback returns the ordered plan used after a failed bulk-cascade attempt.
func (p DeletePlan) Fallback() DeletePlan {
	return PlanDeletion(Capabilities{})
}
