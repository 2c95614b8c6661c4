package search

import "github.com/poiesic/adoptmatch/core"

// Monitor provides hooks to observe the ranking process.
// Implement this interface to track intermediate steps and results during a query.
type Monitor interface {
	Start(profile *core.Profile)
	AfterPreferenceResolution(source string, colors, breeds []string)
	AfterSemanticSearch(pool []*core.ScoredListing)
	AfterHardConstraintFilter(remaining []*core.ScoredListing)
	Finish(matches []*core.Match)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.Profile)                             {}
func (n *noopMonitor) AfterPreferenceResolution(_ string, _, _ []string) {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.ScoredListing)       {}
func (n *noopMonitor) AfterHardConstraintFilter(_ []*core.ScoredListing) {}
func (n *noopMonitor) Finish(_ []*core.Match)                            {}
