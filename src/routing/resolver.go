package routing

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/members"
	"github.com/xornet-io/xornet/src/section"
)

// DefaultFanout is how many next-hop members a resolution returns. Forwarding
// to a few of the best candidates tolerates individual elder churn without
// flooding.
const DefaultFanout = 3

// Route is the outcome of resolving a destination.
type Route struct {
	// Local reports that the destination falls under the local prefix; the
	// message is delivered here rather than forwarded.
	Local bool

	// Hops are the next-hop members, best first. Empty when Local.
	Hops []*members.Member
}

// Resolver computes next hops from a node's section knowledge. It is safe for
// concurrent use; the underlying Map does its own locking.
type Resolver struct {
	sections *section.Map
	fanout   int

	logger *logrus.Entry
}

// NewResolver creates a Resolver over the node's section knowledge. A fanout
// of zero selects DefaultFanout.
func NewResolver(sections *section.Map, fanout int, logger *logrus.Entry) *Resolver {
	if fanout <= 0 {
		fanout = DefaultFanout
	}
	return &Resolver{
		sections: sections,
		fanout:   fanout,
		logger:   logger.WithField("component", "resolver"),
	}
}

// NextHops resolves a destination to a Route. If the destination falls within
// the local prefix the route is local. Otherwise the candidates are the
// members of every known section whose prefix shares strictly more leading
// bits with the target than the local prefix does; the closest by XOR
// distance win, smaller Name breaking ties. The strict-progress requirement
// bounds any route by the name's bit length. NextHops fails with a NoRoute
// error when no known section improves on the local prefix; the caller
// retries once section knowledge updates.
func (r *Resolver) NextHops(dst DstLocation) (*Route, error) {
	local := r.sections.Local()
	target := dst.TargetName(local.Prefix)

	if dst.Kind == OwnSectionLocation || local.Prefix.Matches(target) {
		return &Route{Local: true}, nil
	}

	localCPL := local.Prefix.CommonPrefixLenWith(target)

	candidates := []*members.Member{}
	for _, s := range r.sections.Remotes() {
		if s.Prefix.CommonPrefixLenWith(target) > localCPL {
			candidates = append(candidates, s.Elders.Members...)
		}
	}

	if len(candidates) == 0 {
		return nil, common.NewCoreErr(common.NoRoute,
			fmt.Sprintf("no known section improves on %q for %s", local.Prefix, target))
	}

	hops := members.NewMemberSet(candidates).ClosestTo(target, r.fanout)

	r.logger.WithFields(logrus.Fields{
		"dst":  dst.String(),
		"hops": len(hops),
	}).Debug("Resolved next hops")

	return &Route{Hops: hops}, nil
}
