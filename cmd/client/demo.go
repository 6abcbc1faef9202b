package main

import (
	"broodlink/internal/catalog"
	"broodlink/internal/persistence/capture"
	"broodlink/internal/shm/shmtest"
)

// writeDemoCapture records a small Terran opening: one command center, four
// workers and a mineral line. Income ticks in every second of game time.
func writeDemoCapture(path string, frames int) error {
	b := shmtest.New().Latency(2)
	b.Region(0, true, 0, 0, 64, 64)

	me := b.Player(0, catalog.RaceTerran, 50, 0)
	me.SetName("demo")
	me.SetSupplyTotal(20)
	me.SetSupplyUsed(8)
	neutral := b.Player(11, catalog.RaceNone, 0, 0)
	neutral.SetNeutral(true)

	b.Unit(0, catalog.TerranCommandCenter, 640, 640)
	for i := 0; i < 4; i++ {
		b.Unit(0, catalog.TerranSCV, 600+16*i, 720)
	}
	for i := 0; i < 6; i++ {
		b.Unit(11, catalog.ResourceMineralField, 480+32*i, 480)
	}

	w, err := capture.Create(path, "demo")
	if err != nil {
		return err
	}
	for f := 0; f < frames; f++ {
		b.Seg.SetFrame(f)
		if f > 0 && f%24 == 0 {
			me.SetMinerals(me.Minerals() + 8)
		}
		if err := w.Add(b.Seg); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}
