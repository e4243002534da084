package main

import (
	"fmt"

	"github.com/phanxgames/mapmorph"
)

// demoGraph is a small in-memory location graph for the viewer. Every
// ring satellite opens onto a cluster, and every cluster group onto a
// hallway of rooms.
type demoGraph struct {
	level  mapmorph.Level
	index  int
	next   int
	counts [mapmorph.LevelCount]int
	locs   [mapmorph.LevelCount][]mapmorph.Location
	trail  [mapmorph.LevelCount]crumb
}

// crumb remembers where a level was left when zooming in.
type crumb struct {
	index, next int
}

var demoNames = [mapmorph.LevelCount][]string{
	{"Hub", "Forge", "Archive", "Garden", "Harbor", "Spire", "Vault"},
	{"Square", "Market", "Guildhall", "Barracks", "Chapel", "Mill", "Well"},
	{"Entrance", "Cellar", "Study", "Armory", "Pantry", "Gallery", "Chamber", "Loft"},
}

func newDemoGraph() *demoGraph {
	g := &demoGraph{next: 1}
	for lv := range g.locs {
		names := demoNames[lv]
		g.counts[lv] = len(names)
		g.locs[lv] = make([]mapmorph.Location, len(names))
		for i, name := range names {
			g.locs[lv][i] = mapmorph.Location{Name: name}
		}
	}
	g.visit(mapmorph.LevelRing, 0)
	return g
}

func (g *demoGraph) CurrentLevel() mapmorph.Level { return g.level }
func (g *demoGraph) CurrentIndex() int            { return g.index }
func (g *demoGraph) NextIndex() int               { return g.next }

func (g *demoGraph) Count(level mapmorph.Level) int {
	if !level.Valid() {
		return 0
	}
	return g.counts[level]
}

func (g *demoGraph) Location(level mapmorph.Level, index int) mapmorph.Location {
	if !level.Valid() || index < 0 || index >= len(g.locs[level]) {
		return mapmorph.Location{}
	}
	return g.locs[level][index]
}

// visit moves to a location and reveals it and its neighbour selection.
func (g *demoGraph) visit(level mapmorph.Level, index int) {
	g.level, g.index = level, index
	loc := &g.locs[level][index]
	loc.Discovered, loc.Visited, loc.NameKnown = true, true, true
	if g.next < 1 || g.next >= g.counts[level] {
		g.next = 1
	}
	g.discover(level, g.next)
}

func (g *demoGraph) discover(level mapmorph.Level, index int) {
	if index >= 0 && index < len(g.locs[level]) {
		g.locs[level][index].Discovered = true
	}
}

// down enters the level below through the current selection.
func (g *demoGraph) down() {
	sel := g.next
	g.trail[g.level] = crumb{index: g.index, next: sel}
	to := g.level + 1
	land := sel
	if to == mapmorph.LevelHallway || land >= g.counts[to] {
		land = 0
	}
	g.next = 1
	g.visit(to, land)
}

// up returns to the level above where it was left.
func (g *demoGraph) up() {
	to := g.level - 1
	c := g.trail[to]
	g.next = c.next
	g.visit(to, c.index)
}

// cycle moves the selection by delta, skipping the leader.
func (g *demoGraph) cycle(delta int) {
	n := g.counts[g.level]
	if n < 2 {
		return
	}
	g.next = (g.next-1+delta+(n-1))%(n-1) + 1
	g.discover(g.level, g.next)
}

func (g *demoGraph) title() string {
	loc := g.locs[g.level][g.index]
	sel := g.locs[g.level][g.next]
	return fmt.Sprintf("%s: %s  >  %s", g.level, loc.Name, sel.Name)
}
