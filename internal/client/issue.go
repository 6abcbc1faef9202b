package client

import (
	"broodlink/internal/effects"
	"broodlink/internal/legality"
	"broodlink/internal/protocol"
)

// Command is a unit command as the bot builds it.
type Command = legality.Command

// Check runs the individual legality check without issuing anything.
func (g *Game) Check(cmd Command) legality.Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.legal.Check(cmd, legality.Options{})
}

func (g *Game) CheckGrouped(cmd Command) legality.Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.legal.CheckGrouped(cmd, legality.Options{})
}

// CheckSet reports whether a group order of cmd to ids would move at least
// one unit.
func (g *Game) CheckSet(ids []int, cmd Command) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.legal.CheckSet(ids, cmd)
}

// CanIssue reports whether unit id could issue some command of kind k.
func (g *Game) CanIssue(id int, k legality.Kind) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.legal.CanIssueKind(id, k, legality.Options{}).OK()
}

// Issue checks cmd and, when legal, queues it and installs the predicted
// effect. It returns false for a rejected command; the reason is counted in
// the step's stats.
func (g *Game) Issue(cmd Command) bool {
	return g.IssueVerdict(cmd).OK()
}

// IssueVerdict is Issue returning the structured verdict.
func (g *Game) IssueVerdict(cmd Command) legality.Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()
	resolved, v := g.legal.Resolve(cmd, legality.Options{})
	if v.OK() {
		v = g.send(resolved)
	}
	g.record(resolved, v, false)
	return v
}

// IssueGrouped issues cmd to every unit in ids that accepts it as part of a
// group order, one effect per unit, and returns how many accepted.
func (g *Game) IssueGrouped(ids []int, cmd Command) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, id := range ids {
		c := cmd
		c.Unit = id
		v := g.legal.CheckGrouped(c, legality.Options{})
		if v.OK() {
			v = g.send(c)
		}
		g.record(c, v, true)
		if v.OK() {
			n++
		}
	}
	return n
}

func (g *Game) send(cmd Command) legality.Verdict {
	if err := g.emit(effects.UnitCommand{Cmd: cmd.Record()}); err != nil {
		g.logger.Printf("frame=%d %s unit=%d: %v", g.acc.frame, cmd.Kind, cmd.Unit, err)
		return legality.Verdict{Stage: legality.StageNone, Reason: protocol.ErrUnknown}
	}
	g.predict(cmd)
	return legality.Verdict{}
}

func (g *Game) record(cmd Command, v legality.Verdict, grouped bool) {
	if v.OK() {
		g.acc.issued++
	} else {
		g.acc.rejected[v.Reason]++
	}
	g.acc.commands = append(g.acc.commands, protocol.CommandRecord{
		Kind:    cmd.Kind.String(),
		Unit:    cmd.Unit,
		Target:  cmd.Target,
		X:       cmd.X,
		Y:       cmd.Y,
		Extra:   cmd.Extra,
		Grouped: grouped,
		Verdict: v.String(),
	})
}
