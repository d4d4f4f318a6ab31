package section

import (
	"fmt"

	"github.com/xornet-io/xornet/src/chain"
	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/members"
	"github.com/xornet-io/xornet/src/threshold"
	"github.com/xornet-io/xornet/src/xorname"
)

// Params are the network-wide membership parameters, fixed at startup.
type Params struct {
	MinElders      int
	MaxElders      int
	SplitThreshold int
}

// Section is the elder set authoritative for one prefix, together with the
// proof chain anchoring its authority. Sections are immutable; transitions
// return new values.
type Section struct {
	Prefix xorname.Prefix
	Elders *members.MemberSet
	Epoch  int
	Chain  *chain.ProofChain
}

// New creates a Section. The epoch starts at the chain's last entry.
func New(prefix xorname.Prefix, elders *members.MemberSet, proofChain *chain.ProofChain) *Section {
	return &Section{
		Prefix: prefix,
		Elders: elders,
		Epoch:  proofChain.Len() - 1,
		Chain:  proofChain,
	}
}

// AuthorityKey returns the public key of the section's current authority.
func (s *Section) AuthorityKey() []byte {
	return s.Chain.LastKey()
}

// WithElderAdded admits an approved candidate. The elder set is recomputed as
// the MaxElders names closest to the prefix's lower bound by XOR distance,
// with the smaller Name winning ties; this is the deterministic total order
// used everywhere a selection has to be reproducible. If the candidate does
// not displace anyone the section is returned unchanged. Otherwise the chain
// is extended to the next authority, signed by the current one.
func (s *Section) WithElderAdded(candidate *members.Member, current, next threshold.Signer, params Params) (*Section, error) {
	if !s.Prefix.Matches(candidate.Name) {
		return nil, common.NewCoreErr(common.WrongSection,
			fmt.Sprintf("name %s outside prefix %q", candidate.Name, s.Prefix))
	}

	pool := s.Elders.WithNewMember(candidate)
	newElders := members.NewMemberSet(pool.ClosestTo(s.Prefix.LowerBound(), params.MaxElders))

	if newElders.Hex() == s.Elders.Hex() {
		return s, nil
	}

	newChain, err := extendChain(s.Chain, current, next)
	if err != nil {
		return nil, err
	}

	return New(s.Prefix, newElders, newChain), nil
}

// WithElderRemoved drops a member on churn (timeout, departure, detected
// fault) and rotates the authority.
func (s *Section) WithElderRemoved(name xorname.Name, current, next threshold.Signer) (*Section, error) {
	member, ok := s.Elders.ByName[name]
	if !ok {
		return nil, common.NewCoreErr(common.KeyNotFound,
			fmt.Sprintf("no elder %s in section %q", name, s.Prefix))
	}

	newElders := s.Elders.WithRemovedMember(member)

	newChain, err := extendChain(s.Chain, current, next)
	if err != nil {
		return nil, err
	}

	return New(s.Prefix, newElders, newChain), nil
}

// Split partitions the section in two by fixing one more prefix bit. Both
// children inherit the pre-split chain, each extended with its own authority
// key signed by the pre-split authority, so both are provably descended from
// the same trusted ancestor. Split fails with a SplitDeferred error when the
// member count has not breached the threshold or when either half would fall
// below MinElders; membership changes then keep accumulating.
func (s *Section) Split(current, nextZero, nextOne threshold.Signer, params Params) (*Section, *Section, error) {
	if s.Elders.Len() <= params.SplitThreshold {
		return nil, nil, common.NewCoreErr(common.SplitDeferred,
			fmt.Sprintf("%d members, threshold is %d", s.Elders.Len(), params.SplitThreshold))
	}

	zeroPrefix, onePrefix := s.Prefix.Split()

	zeroMembers := []*members.Member{}
	oneMembers := []*members.Member{}
	for _, member := range s.Elders.Members {
		if member.Name.Bit(s.Prefix.Len()) == 0 {
			zeroMembers = append(zeroMembers, member)
		} else {
			oneMembers = append(oneMembers, member)
		}
	}

	if len(zeroMembers) < params.MinElders || len(oneMembers) < params.MinElders {
		return nil, nil, common.NewCoreErr(common.SplitDeferred,
			fmt.Sprintf("halves %d/%d, minimum is %d", len(zeroMembers), len(oneMembers), params.MinElders))
	}

	zeroChain, err := extendChain(s.Chain, current, nextZero)
	if err != nil {
		return nil, nil, err
	}
	oneChain, err := extendChain(s.Chain, current, nextOne)
	if err != nil {
		return nil, nil, err
	}

	zero := New(zeroPrefix, members.NewMemberSet(zeroMembers), zeroChain)
	one := New(onePrefix, members.NewMemberSet(oneMembers), oneChain)

	return zero, one, nil
}

// extendChain rotates the authority from current to next. The signature only
// verifies if current really is the chain's tail authority, so a stale signer
// is caught here.
func extendChain(c *chain.ProofChain, current, next threshold.Signer) (*chain.ProofChain, error) {
	newKey := next.PublicKeyBytes()

	signature, err := current.Sign(chain.LinkDigest(newKey))
	if err != nil {
		return nil, err
	}

	return c.Extend(newKey, signature)
}
