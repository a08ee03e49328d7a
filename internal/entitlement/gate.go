package entitlement

import (
	"strings"
	"sync"
)

// baselineFeatures stay reachable for tenants without an active plan, so a
// lapsed workshop can still see its clients and quotes.
var baselineFeatures = map[string]bool{
	FeatureClientes:   true,
	FeatureOrcamentos: true,
}

// gateKey captures every input a permission decision depends on. Decisions
// are memoized per key; any change in the resolved state produces a new key
// and drops the cached decisions.
type gateKey struct {
	admin    bool
	planName string
	active   bool
	inTrial  bool
	source   Source
	features string
}

// Gate answers feature-access questions for a resolved plan status. It never
// errors: unknown features resolve to denied.
type Gate struct {
	mu        sync.Mutex
	key       gateKey
	decisions map[string]bool
}

func NewGate() *Gate {
	return &Gate{decisions: make(map[string]bool)}
}

// HasPermission reports whether the feature is accessible given the resolved
// plan status. Admins bypass all plan checks.
func (g *Gate) HasPermission(status *ResolvedPlanStatus, isAdmin bool, feature string) bool {
	key := makeGateKey(status, isAdmin)

	g.mu.Lock()
	defer g.mu.Unlock()
	if key != g.key {
		g.key = key
		g.decisions = make(map[string]bool)
	}
	if allowed, ok := g.decisions[feature]; ok {
		return allowed
	}
	allowed := evaluate(status, isAdmin, feature)
	g.decisions[feature] = allowed
	return allowed
}

// IsPremiumAccessible reports whether premium-gated functionality is
// reachable: an active Premium plan, a live premium trial, or admin override.
func (g *Gate) IsPremiumAccessible(status *ResolvedPlanStatus, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	if status == nil {
		return false
	}
	if status.PlanName == "Premium" && status.IsActive {
		return true
	}
	return status.Source == SourceSubscription && status.InTrial &&
		strings.Contains(string(status.PlanType), "premium")
}

func evaluate(status *ResolvedPlanStatus, isAdmin bool, feature string) bool {
	if isAdmin {
		return true
	}
	if status == nil || !status.IsActive {
		return baselineFeatures[feature]
	}

	allowed := false
	for _, f := range featuresForPlanName(status.PlanName) {
		if f == FeatureWildcard || f == feature {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	if premiumOnlyFeatures[feature] {
		return (status.PlanName == "Premium" && status.IsActive) ||
			(status.Source == SourceSubscription && status.InTrial &&
				strings.Contains(string(status.PlanType), "premium"))
	}
	return true
}

func makeGateKey(status *ResolvedPlanStatus, isAdmin bool) gateKey {
	key := gateKey{admin: isAdmin}
	if status == nil {
		return key
	}
	key.planName = status.PlanName
	key.active = status.IsActive
	key.inTrial = status.InTrial
	key.source = status.Source
	key.features = strings.Join(featuresForPlanName(status.PlanName), ",")
	return key
}
