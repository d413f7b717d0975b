package ai

import (
	"sort"

	"github.com/talgya/concordia/internal/commands"
	"github.com/talgya/concordia/internal/ids"
)

// Policy is a pure function from a visible world view and the commands
// legal for its observer to the subset (and order) it wants applied this
// tick. It must never consult anything outside VisibleWorldState/the
// command list, and must never use wall-clock time or host randomness; it
// is handed no random stream, so the same arguments always yield the same
// commands (design doc Section 4.11: "the AI interface is a pure function,
// so two runs of the same seed produce the same AI decisions").
type Policy func(visible VisibleWorldState, available []commands.Command) []commands.Command

// DefaultPolicy is the heuristic shipped with the kernel: it gives each
// candidate command a fixed score by kind (see score; a move into an
// enemy-owned province scores above other moves, and war declarations
// score zero), drops candidates scoring zero or below, and returns the
// highest scoring instance of each remaining kind, highest score first. Anything more elaborate
// belongs in a game-specific policy built on top of this package, not
// in the kernel default.
func DefaultPolicy(visible VisibleWorldState, available []commands.Command) []commands.Command {
	if visible.Self == nil || !visible.Self.Alive {
		return nil
	}

	scored := make([]scoredCommand, 0, len(available))
	for _, cmd := range available {
		if s, ok := score(visible, cmd); ok {
			scored = append(scored, scoredCommand{cmd: cmd, score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var out []commands.Command
	issuedKind := make(map[commands.Kind]bool)
	for _, sc := range scored {
		if issuedKind[sc.cmd.Kind] {
			continue
		}
		if sc.score <= 0 {
			continue
		}
		out = append(out, sc.cmd)
		issuedKind[sc.cmd.Kind] = true
	}
	return out
}

type scoredCommand struct {
	cmd   commands.Command
	score int
}

// score rates a single candidate command for observer; higher is more
// attractive, 0 or below means "don't bother this tick". The weights are
// ordinal, not calibrated against any real playtest — a placeholder
// default a game can replace wholesale via its own Policy.
func score(visible VisibleWorldState, cmd commands.Command) (int, bool) {
	switch cmd.Kind {
	case commands.KindRecruitRegiment:
		if visible.Self.Manpower.Cmp(visible.Self.MaxManpower.MulFrac(1, 4)) < 0 {
			return 0, false
		}
		return 10, true

	case commands.KindMoveArmy:
		if isAtWarWithOwner(visible, cmd.Destination) {
			return 30, true
		}
		return 5, true

	case commands.KindDeclareWar:
		return 0, false // never initiate war unprompted by default

	case commands.KindOfferAlliance:
		return 8, true

	case commands.KindAssignMerchant:
		return 12, true

	case commands.KindOfferPeace:
		return 25, true

	case commands.KindAcceptPeace:
		return 40, true

	case commands.KindAcceptAlliance:
		return 20, true

	case commands.KindAnswerCallToArms:
		return 15, true

	default:
		return 1, true
	}
}

func isAtWarWithOwner(visible VisibleWorldState, province ids.ProvinceID) bool {
	owner, ok := visible.Owner[province]
	if !ok || visible.Self == nil {
		return false
	}
	for _, w := range visible.Wars {
		if (w.Attackers[visible.Self.Tag] && w.Defenders[owner]) ||
			(w.Defenders[visible.Self.Tag] && w.Attackers[owner]) {
			return true
		}
	}
	return false
}
