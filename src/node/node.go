package node

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xornet-io/xornet/src/chain"
	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/config"
	"github.com/xornet-io/xornet/src/crypto"
	"github.com/xornet-io/xornet/src/members"
	"github.com/xornet-io/xornet/src/net"
	"github.com/xornet-io/xornet/src/routing"
	"github.com/xornet-io/xornet/src/section"
	"github.com/xornet-io/xornet/src/store"
	"github.com/xornet-io/xornet/src/threshold"
	"github.com/xornet-io/xornet/src/xorname"
)

// Node is the long-lived actor tying the core together. All state mutations
// go through the single background loop; Pause, Resume and Send take the core
// lock to coordinate with it.
type Node struct {
	state

	conf   *config.Config
	logger *logrus.Entry

	identity *Identity

	coreLock    sync.Mutex
	sections    *section.Map
	resolver    *routing.Resolver
	authority   threshold.Signer
	accumulator *threshold.SignatureAccumulator
	genesisKey  []byte

	trans net.Transport
	netCh <-chan net.Event

	membershipCh chan MembershipEvent
	pending      []MembershipEvent

	deliveredCh chan *net.Message

	snapshots store.Store

	sigintCh   chan os.Signal
	shutdownCh chan struct{}

	start time.Time
}

// NewNode is a factory method that returns a Node instance. The authority
// signer holds the local section's current epoch key; it may be nil for a
// node that does not participate in authority yet.
func NewNode(conf *config.Config,
	identity *Identity,
	local *section.Section,
	authority threshold.Signer,
	snapshots store.Store,
	trans net.Transport,
) *Node {
	// Prepare sigintCh to relay SIGINT system calls
	sigintCh := make(chan os.Signal, 1)
	signal.Notify(sigintCh, os.Interrupt, syscall.SIGINT)

	sections := section.NewMap(local)
	logger := conf.Logger().WithField("this_id", identity.ID())

	node := Node{
		conf:         conf,
		logger:       logger,
		identity:     identity,
		sections:     sections,
		resolver:     routing.NewResolver(sections, conf.Fanout, logger),
		authority:    authority,
		accumulator:  threshold.NewSignatureAccumulator(0),
		genesisKey:   local.Chain.GenesisKey(),
		trans:        trans,
		netCh:        trans.Consumer(),
		membershipCh: make(chan MembershipEvent, 16),
		deliveredCh:  make(chan *net.Message, 16),
		snapshots:    snapshots,
		sigintCh:     sigintCh,
		shutdownCh:   make(chan struct{}),
	}

	return &node
}

// Init initialises the node's state machine.
func (n *Node) Init() error {
	if n.conf.Bootstrap {
		n.logger.Debug("Bootstrap")
		if err := n.Resume(); err != nil {
			return err
		}
	}

	n.refreshState()

	if n.conf.MaintenanceMode {
		n.logger.Debug("MaintenanceMode => Paused")
		n.setState(Paused)
	}

	return nil
}

// RunAsync calls Run as a separate thread
func (n *Node) RunAsync() {
	n.logger.Debug("runasync")

	go n.Run()
}

// Run invokes the main loop of the node. Every transport event, membership
// event and control signal goes through here, in order; there is no other
// consumer.
func (n *Node) Run() {
	n.start = time.Now()
	n.trans.Listen()

	heartbeat := time.NewTicker(n.conf.HeartbeatTimeout)
	defer heartbeat.Stop()

	for {
		select {
		case ev := <-n.netCh:
			n.processTransportEvent(ev)
		case mev := <-n.membershipCh:
			n.processMembershipEvent(mev)
		case <-heartbeat.C:
			n.logStats()
		case <-n.sigintCh:
			n.logger.Debug("Reacting to SIGINT - Shutdown")
			n.Shutdown()
			return
		case <-n.shutdownCh:
			return
		}
	}
}

// Submit hands an approved membership event to the node. It is the entry
// point for the external consensus collaborator.
func (n *Node) Submit(ev MembershipEvent) {
	n.membershipCh <- ev
}

// Delivered returns the channel of messages addressed to this node.
func (n *Node) Delivered() <-chan *net.Message {
	return n.deliveredCh
}

func (n *Node) processTransportEvent(ev net.Event) {
	switch ev.Type {
	case net.Connected:
		n.logger.WithField("peer", ev.From).Debug("Peer connected")
	case net.Disconnected:
		n.logger.WithField("peer", ev.From).Debug("Peer disconnected")
	case net.Received:
		if n.getState() == Paused {
			n.logger.WithField("peer", ev.From).Debug("Paused; dropping message")
			return
		}
		n.processMessage(ev.Message)
	}
}

// processMessage verifies the sender's authority proof, then dispatches by
// kind. A proof that does not verify invalidates the message, never the node.
func (n *Node) processMessage(msg *net.Message) {
	if len(msg.Proof) > 0 {
		proofChain, err := chain.FromEntries(msg.Proof)
		if err == nil {
			err = proofChain.VerifyAgainst(n.genesisKey)
		}
		if err != nil {
			n.logger.WithError(err).WithField("src", msg.Src.String()).
				Warn("Rejecting message with untrusted proof")
			return
		}
	}

	switch msg.Kind {
	case net.SectionUpdateMessage:
		n.processSectionUpdate(msg)
	case net.ProposalMessage:
		n.processProposal(msg)
	case net.RelocateMessage:
		n.processRelocation(msg)
	case net.PayloadMessage:
		n.routeOrDeliver(msg)
	}
}

// processRelocation applies a membership change vouched for by another
// section. The message must carry a proof chain, already verified against the
// genesis key by processMessage, and the event digest must be signed by that
// chain's tail authority.
func (n *Node) processRelocation(msg *net.Message) {
	if len(msg.Proof) == 0 {
		n.logger.WithField("src", msg.Src.String()).
			Warn("Rejecting relocation without proof")
		return
	}

	rel, err := UnmarshalRelocation(msg.Payload)
	if err != nil {
		n.logger.WithError(err).Warn("Bad relocation payload")
		return
	}

	if err := rel.Event.Valid(); err != nil {
		n.logger.WithError(err).Warn("Invalidating malformed relocation")
		return
	}

	authorityKey := msg.Proof[len(msg.Proof)-1].Key
	if !rel.Verify(authorityKey) {
		n.logger.WithField("src", msg.Src.String()).
			Warn("Rejecting relocation not signed by origin authority")
		return
	}

	n.processMembershipEvent(rel.Event)
}

func (n *Node) processSectionUpdate(msg *net.Message) {
	w, err := section.UnmarshalWire(msg.Payload)
	if err != nil {
		n.logger.WithError(err).Warn("Bad section update payload")
		return
	}

	s, err := section.FromWire(w)
	if err == nil {
		err = s.Chain.VerifyAgainst(n.genesisKey)
	}
	if err != nil {
		n.logger.WithError(err).Warn("Rejecting section update with untrusted chain")
		return
	}

	if err := n.sections.Update(s); err != nil {
		n.logger.WithError(err).Debug("Ignoring section update")
		return
	}

	n.logger.WithFields(logrus.Fields{
		"prefix": s.Prefix.String(),
		"epoch":  s.Epoch,
	}).Debug("Updated section knowledge")
}

// processProposal folds an elder's proposal into the signature accumulator
// and applies the event once a quorum of distinct elder shares vouches for
// it. Shares from non-elders or over the wrong digest are discarded.
func (n *Node) processProposal(msg *net.Message) {
	prop, err := UnmarshalProposal(msg.Payload)
	if err != nil {
		n.logger.WithError(err).Warn("Bad proposal payload")
		return
	}

	raw, err := prop.Event.Marshal()
	if err != nil {
		n.logger.WithError(err).Warn("Unencodable proposal event")
		return
	}
	digest := crypto.SHA256(raw)

	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	elders := n.sections.Local().Elders
	valid := []threshold.Share{}
	for _, share := range prop.Shares {
		if _, ok := elders.ByPubKey[share.PubKeyHex]; !ok {
			continue
		}
		if share.Valid(digest) {
			valid = append(valid, share)
		}
	}

	sp := n.accumulator.AddPayload(elders.Quorum(), digest, raw, valid)
	if sp == nil {
		n.logger.WithField("event", prop.Event.String()).Debug("Proposal pending quorum")
		return
	}

	ev, err := UnmarshalMembershipEvent(sp.Payload)
	if err != nil {
		n.logger.WithError(err).Warn("Bad accumulated payload")
		return
	}

	n.applyMembershipEvent(ev)
}

func (n *Node) processMembershipEvent(ev MembershipEvent) {
	if n.getState() == Paused {
		n.coreLock.Lock()
		n.pending = append(n.pending, ev)
		n.coreLock.Unlock()

		n.logger.WithField("event", ev.String()).Debug("Paused; queueing membership event")
		return
	}

	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	n.applyMembershipEvent(ev)
}

// applyMembershipEvent applies one approved membership change. Failures
// invalidate the event only; the node keeps running on its previous state.
// Callers hold coreLock.
func (n *Node) applyMembershipEvent(ev MembershipEvent) {
	if err := ev.Valid(); err != nil {
		n.logger.WithError(err).Warn("Invalidating malformed membership event")
		return
	}

	n.logger.WithField("event", ev.String()).Debug("Applying membership event")

	switch ev.Type {
	case ElderAdded:
		n.applyElderAdded(ev.Member)
	case ElderRemoved:
		n.applyElderRemoved(ev.Name)
	case MemberRelocated:
		if n.sections.Local().Elders.Contains(ev.Member.Name) {
			n.applyElderRemoved(ev.Member.Name)
		}
		moved := ev.Member.WithName(ev.DstName)
		if n.sections.Local().Prefix.Matches(ev.DstName) {
			n.applyElderAdded(moved)
		} else {
			n.logger.WithFields(logrus.Fields{
				"member": ev.Member.Name.String(),
				"dst":    ev.DstName.String(),
			}).Debug("Relocation destination outside local section")
		}
	}
}

func (n *Node) applyElderAdded(member *members.Member) {
	local := n.sections.Local()

	if n.authority == nil {
		n.logger.Warn("No authority key; cannot extend the chain")
		return
	}

	next, err := threshold.NewQuorumSigner()
	if err != nil {
		n.logger.WithError(err).Error("Generating epoch key")
		return
	}

	newLocal, err := local.WithElderAdded(member, n.authority, next, n.conf.Params())
	if err != nil {
		n.logger.WithError(err).WithField("member", member.Name.String()).
			Warn("Invalidating elder addition")
		return
	}

	if newLocal == local {
		n.logger.WithField("member", member.Name.String()).
			Debug("Candidate does not displace any elder")
		return
	}

	n.authority = next
	n.sections.SetLocal(newLocal)
	n.refreshState()

	n.logger.WithFields(logrus.Fields{
		"member": member.Name.String(),
		"elders": newLocal.Elders.Len(),
		"epoch":  newLocal.Epoch,
	}).Info("Elder added")

	n.maybeSplit()
}

func (n *Node) applyElderRemoved(name xorname.Name) {
	local := n.sections.Local()

	if n.authority == nil {
		n.logger.Warn("No authority key; cannot extend the chain")
		return
	}

	next, err := threshold.NewQuorumSigner()
	if err != nil {
		n.logger.WithError(err).Error("Generating epoch key")
		return
	}

	newLocal, err := local.WithElderRemoved(name, n.authority, next)
	if err != nil {
		n.logger.WithError(err).WithField("member", name.String()).
			Warn("Invalidating elder removal")
		return
	}

	n.authority = next
	n.sections.SetLocal(newLocal)
	n.refreshState()

	n.logger.WithFields(logrus.Fields{
		"member": name.String(),
		"elders": newLocal.Elders.Len(),
		"epoch":  newLocal.Epoch,
	}).Info("Elder removed")
}

// maybeSplit attempts a split after the section grew. A deferred split is the
// normal case below the threshold; membership keeps accumulating.
func (n *Node) maybeSplit() {
	local := n.sections.Local()

	nextZero, err := threshold.NewQuorumSigner()
	if err != nil {
		n.logger.WithError(err).Error("Generating epoch key")
		return
	}
	nextOne, err := threshold.NewQuorumSigner()
	if err != nil {
		n.logger.WithError(err).Error("Generating epoch key")
		return
	}

	zero, one, err := local.Split(n.authority, nextZero, nextOne, n.conf.Params())
	if common.IsCore(err, common.SplitDeferred) {
		n.logger.WithError(err).Debug("Split deferred")
		return
	}
	if err != nil {
		n.logger.WithError(err).Warn("Split failed")
		return
	}

	mine, theirs := zero, one
	authority := threshold.Signer(nextZero)
	if one.Prefix.Matches(n.identity.Name()) {
		mine, theirs = one, zero
		authority = nextOne
	}

	n.authority = authority
	n.sections.SetLocal(mine)
	if err := n.sections.Update(theirs); err != nil {
		n.logger.WithError(err).Warn("Recording sibling section")
	}
	n.refreshState()

	n.logger.WithFields(logrus.Fields{
		"prefix":  mine.Prefix.String(),
		"sibling": theirs.Prefix.String(),
		"elders":  mine.Elders.Len(),
	}).Info("Section split")

	n.broadcastSectionUpdate(mine, theirs)
}

// broadcastSectionUpdate tells the members of known remote sections about the
// local section's new shape. Best effort; peers that miss it catch up from
// later updates.
func (n *Node) broadcastSectionUpdate(local *section.Section, sibling *section.Section) {
	payload, err := local.Wire().Marshal()
	if err != nil {
		n.logger.WithError(err).Error("Encoding section update")
		return
	}

	msg := &net.Message{
		Src:     routing.SectionAt(local.Prefix),
		Dst:     routing.SectionAt(sibling.Prefix),
		Kind:    net.SectionUpdateMessage,
		Payload: payload,
		Proof:   local.Chain.Entries(),
	}

	for _, member := range sibling.Elders.Members {
		target := member.NetAddr
		n.goFunc(func() {
			if err := n.trans.Send(target, msg); err != nil {
				n.logger.WithError(err).WithField("target", target).
					Debug("Section update not delivered")
			}
		})
	}
}

// routeOrDeliver handles a routed payload: deliver it locally, or forward it
// to the next hops. A NoRoute condition is transient; the message is dropped
// here and the origin retries once knowledge updates.
func (n *Node) routeOrDeliver(msg *net.Message) {
	route, err := n.resolver.NextHops(msg.Dst)
	if err != nil {
		n.logger.WithError(err).WithField("dst", msg.Dst.String()).
			Warn("No route for forwarded message")
		return
	}

	if route.Local {
		select {
		case n.deliveredCh <- msg:
		default:
			n.logger.Warn("Delivery channel full; dropping message")
		}
		return
	}

	for _, hop := range route.Hops {
		target := hop.NetAddr
		n.goFunc(func() {
			if err := n.trans.Send(target, msg); err != nil {
				n.logger.WithError(err).WithField("target", target).
					Debug("Forward not delivered")
			}
		})
	}
}

// Send routes application bytes toward a destination. It fails with a
// NoRoute error when no known section makes strict progress; the caller
// retries once section knowledge updates.
func (n *Node) Send(dst routing.DstLocation, payload []byte) error {
	if s := n.getState(); s == Paused || s == Shutdown {
		return fmt.Errorf("node is %s", s)
	}

	msg := &net.Message{
		Src:     routing.NodeAt(n.identity.Name()),
		Dst:     dst,
		Kind:    net.PayloadMessage,
		Payload: payload,
		Proof:   n.sections.Local().Chain.Entries(),
	}

	route, err := n.resolver.NextHops(dst)
	if err != nil {
		return err
	}

	if route.Local {
		select {
		case n.deliveredCh <- msg:
			return nil
		default:
			return fmt.Errorf("delivery channel full")
		}
	}

	for _, hop := range route.Hops {
		if err := n.trans.Send(hop.NetAddr, msg); err != nil {
			return err
		}
	}

	return nil
}

// Route resolves a destination without sending anything.
func (n *Node) Route(dst routing.DstLocation) (*routing.Route, error) {
	return n.resolver.NextHops(dst)
}

// Pause snapshots the node's accumulated state into the store and stops
// processing. Events arriving while paused are queued and included in a later
// snapshot.
func (n *Node) Pause() error {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	local := n.sections.Local()

	remotes := []*section.Wire{}
	for _, s := range n.sections.Remotes() {
		remotes = append(remotes, s.Wire())
	}

	snapshot := &PausedState{
		Version:      PausedStateVersion,
		AuthorityKey: dumpAuthority(n.authority),
		Local:        local.Wire(),
		Remotes:      remotes,
		Pending:      append([]MembershipEvent{}, n.pending...),
	}

	raw, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	if err := n.snapshots.SavePaused(raw); err != nil {
		return err
	}

	n.setState(Paused)

	n.logger.WithFields(logrus.Fields{
		"prefix":  local.Prefix.String(),
		"epoch":   local.Epoch,
		"pending": len(snapshot.Pending),
	}).Info("Paused")

	return nil
}

// Resume reconstructs the node from the stored snapshot and returns it to the
// equivalent running state. An incompatible snapshot fails with an
// IncompatibleState error and is left untouched in the store; a compatible
// one is consumed exactly once.
func (n *Node) Resume() error {
	raw, err := n.snapshots.LoadPaused()
	if err != nil {
		return err
	}

	snapshot, err := UnmarshalPausedState(raw)
	if err != nil {
		return err
	}

	if err := n.resume(snapshot); err != nil {
		return err
	}

	return n.snapshots.ClearPaused()
}

func (n *Node) resume(snapshot *PausedState) error {
	local, err := section.FromWire(snapshot.Local)
	if err != nil {
		return err
	}

	sections := section.NewMap(local)
	for _, w := range snapshot.Remotes {
		s, err := section.FromWire(w)
		if err != nil {
			return err
		}
		if err := sections.Update(s); err != nil {
			return err
		}
	}

	authority, err := snapshot.Authority()
	if err != nil {
		return err
	}

	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	n.sections = sections
	n.resolver = routing.NewResolver(sections, n.conf.Fanout, n.logger)
	n.authority = authority
	n.genesisKey = local.Chain.GenesisKey()
	n.refreshState()

	pending := snapshot.Pending
	n.pending = nil
	for _, ev := range pending {
		n.applyMembershipEvent(ev)
	}

	n.logger.WithFields(logrus.Fields{
		"prefix":  n.sections.Local().Prefix.String(),
		"epoch":   n.sections.Local().Epoch,
		"pending": len(pending),
	}).Info("Resumed")

	return nil
}

// refreshState aligns the state machine with the node's membership.
func (n *Node) refreshState() {
	if n.sections.Local().Elders.Contains(n.identity.Name()) {
		n.setState(Elder)
	} else if n.getState() == Elder {
		n.setState(Approved)
	}
}

// Shutdown stops the node and releases its resources.
func (n *Node) Shutdown() {
	if n.getState() == Shutdown {
		return
	}

	n.logger.Debug("Shutdown")

	n.setState(Shutdown)

	close(n.shutdownCh)

	n.waitRoutines()

	n.trans.Close()
	n.snapshots.Close()
}

// GetStats returns a few running figures.
func (n *Node) GetStats() map[string]string {
	n.coreLock.Lock()
	defer n.coreLock.Unlock()

	local := n.sections.Local()

	return map[string]string{
		"state":          n.getState().String(),
		"prefix":         local.Prefix.String(),
		"num_elders":     strconv.Itoa(local.Elders.Len()),
		"epoch":          strconv.Itoa(local.Epoch),
		"known_sections": strconv.Itoa(len(n.sections.Remotes()) + 1),
		"id":             fmt.Sprint(n.identity.ID()),
		"moniker":        n.identity.Moniker,
	}
}

func (n *Node) logStats() {
	stats := n.GetStats()
	n.logger.WithFields(logrus.Fields{
		"state":          stats["state"],
		"prefix":         stats["prefix"],
		"num_elders":     stats["num_elders"],
		"epoch":          stats["epoch"],
		"known_sections": stats["known_sections"],
	}).Debug("Stats")
}
