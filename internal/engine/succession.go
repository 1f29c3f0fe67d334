package engine

import (
	"sort"
	"strings"

	"github.com/ferrum-mmo/engine/internal/dynasty"
)

// heirNames feeds successor naming when a lord dies without a chosen heir.
var heirNames = []string{
	"Bolesław", "Kazimierz", "Władysław", "Mieszko", "Leszek", "Siemowit",
	"Przemysł", "Konrad", "Zbigniew", "Bezprym", "Świętopełk", "Henryk",
	"Jadwiga", "Dobrawa", "Rycheza", "Świętosława",
}

// AssignLord installs a ruling lord for a player. A nil rng-generated DNA
// is derived inside the dynasty package.
func (o *Orchestrator) AssignLord(ownerID, name string, now int64) *dynasty.Lord {
	lord := dynasty.NewLord(name, "", now, o.RNG)
	o.mu.Lock()
	o.state.Lords[ownerID] = lord
	o.mu.Unlock()
	o.record(now, "dynasty", "%s obejmuje władzę", lord.Name)
	return lord
}

// TickSuccession replaces every dead lord with an heir carrying part of
// the parent's bloodline.
func (o *Orchestrator) TickSuccession(now int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	owners := make([]string, 0, len(o.state.Lords))
	for id := range o.state.Lords {
		owners = append(owners, id)
	}
	sort.Strings(owners)

	for _, ownerID := range owners {
		lord := o.state.Lords[ownerID]
		if lord == nil || !lord.Dead(now) {
			continue
		}
		heir := dynasty.Inherit(lord, o.heirName(lord.Name), now, o.RNG)
		o.state.Lords[ownerID] = heir
		o.record(now, "dynasty", "%s umiera; władzę dziedziczy %s", lord.Name, heir.Name)
	}
}

// heirName picks a fresh given name and keeps the dynasty surname when
// the parent carried one.
func (o *Orchestrator) heirName(parentName string) string {
	given := heirNames[o.RNG.IntN(len(heirNames))]
	if parts := strings.Fields(parentName); len(parts) > 1 {
		return given + " " + parts[len(parts)-1]
	}
	return given
}
