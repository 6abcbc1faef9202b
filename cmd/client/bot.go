package main

import (
	"context"
	"log"

	"broodlink/internal/catalog"
	"broodlink/internal/client"
)

// demoBot keeps workers mining and depots training workers.
type demoBot struct {
	logger *log.Logger
	said   bool
}

func newDemoBot(logger *log.Logger) *demoBot { return &demoBot{logger: logger} }

func (b *demoBot) OnFrame(_ context.Context, g *client.Game) error {
	cat := g.Catalog()
	var fields []client.Unit
	for _, u := range g.Units(-1) {
		if u.Type() == catalog.ResourceMineralField {
			fields = append(fields, u)
		}
	}

	for _, u := range g.MyUnits() {
		d := cat.Unit(u.Type())
		switch {
		case d.IsWorker() && u.IsIdle():
			if m, ok := nearest(u, fields); ok {
				u.Gather(m)
			}
		case d.IsResourceDepot() && len(u.TrainingQueue()) == 0:
			if worker := workerFor(cat, u.Type()); worker != catalog.UnitTypeNone {
				u.Train(worker)
			}
		}
	}

	if !b.said {
		b.said = true
		_ = g.SendText(false, "broodlink demo bot")
	}
	if me, ok := g.Self(); ok {
		_ = g.DrawTextScreen(8, 8, "frame %d  minerals %d  supply %d/%d",
			g.Frame(), me.Minerals(), me.SupplyUsed(), me.SupplyTotal())
	}
	if f := g.Frame(); f > 0 && f%240 == 0 {
		for _, r := range g.Rejections() {
			b.logger.Printf("frame=%d rejected %s x%d", f, r.Reason, r.Count)
		}
	}
	return nil
}

func workerFor(cat *catalog.Catalog, depot catalog.UnitType) catalog.UnitType {
	switch cat.Unit(depot).Race {
	case catalog.RaceTerran:
		return catalog.TerranSCV
	case catalog.RaceProtoss:
		return catalog.ProtossProbe
	case catalog.RaceZerg:
		return catalog.ZergDrone
	}
	return catalog.UnitTypeNone
}

func nearest(u client.Unit, among []client.Unit) (client.Unit, bool) {
	ux, uy := u.Position()
	var (
		best  client.Unit
		bestD = -1
	)
	for _, c := range among {
		x, y := c.Position()
		d := (x-ux)*(x-ux) + (y-uy)*(y-uy)
		if bestD < 0 || d < bestD {
			best, bestD = c, d
		}
	}
	return best, bestD >= 0
}
