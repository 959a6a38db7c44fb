package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// EndTurn refills the ending player's hand and passes the turn to the next
// player still in the game.
func (g *Game) EndTurn(playerID string) (WinStatus, error) {
	if err := g.checkLive(); err != nil {
		return g.reject("end_turn", playerID, err)
	}
	if playerID != g.state.CurrentTurn {
		return g.reject("end_turn", playerID, newError(CodeInvalidTurn, "it is not your turn to end"))
	}
	if g.state.Pending != nil {
		return g.reject("end_turn", playerID, newError(CodePendingActionUnresolved,
			"cannot end turn while %s awaits a defense response", g.state.Pending.Card.Name))
	}

	p := g.state.Players[playerID]
	g.drawFor(p)

	next, ok := g.nextActive(playerID)
	if !ok {
		g.state.GameOver = true
		g.state.Winner = playerID
		g.state.record(fmt.Sprintf("%s wins!", p.Name))
		return g.Status(), nil
	}
	g.state.CurrentTurn = next
	g.state.record(fmt.Sprintf("%s ended their turn. It's %s's turn.", p.Name, g.state.name(next)))
	g.logger.Debug("turn ended",
		zap.String("game_id", g.state.ID),
		zap.String("player_id", playerID),
		zap.String("next", next),
	)
	return g.settle(), nil
}

// Forfeit removes playerID from play. A defense window involving them is
// closed without effect, and the turn moves on if it was theirs.
func (g *Game) Forfeit(playerID string) (WinStatus, error) {
	if err := g.checkLive(); err != nil {
		return g.reject("forfeit", playerID, err)
	}
	p, ok := g.state.Players[playerID]
	if !ok {
		return g.reject("forfeit", playerID, newError(CodeInvalidTarget, "player %q not found", playerID))
	}
	if p.Eliminated {
		return g.reject("forfeit", playerID, newError(CodeInvalidState, "%s already left the game", p.Name))
	}

	p.Eliminated = true
	g.state.record(fmt.Sprintf("%s left the game.", p.Name))

	if pa := g.state.Pending; pa != nil && (pa.InitiatorID == playerID || pa.TargetPlayerID == playerID) {
		g.state.Pending = nil
		g.state.record(fmt.Sprintf("%s's %s fizzles.", g.state.name(pa.InitiatorID), pa.Card.Name))
	}
	if g.state.CurrentTurn == playerID {
		if next, ok := g.nextActive(playerID); ok {
			g.state.CurrentTurn = next
			g.state.record(fmt.Sprintf("It's %s's turn.", g.state.name(next)))
		}
	}
	return g.settle(), nil
}

func (g *Game) drawFor(p *Player) {
	if len(p.Hand) >= g.rules.MaxHandSize {
		g.state.record(fmt.Sprintf("%s's hand is full. No cards drawn.", p.Name))
		return
	}
	p.Hand = g.deck.DrawUpTo(p.Hand, g.rules.MaxHandSize)
}

// nextActive returns the next non-eliminated player after from in turn order.
func (g *Game) nextActive(from string) (string, bool) {
	order := g.state.TurnOrder
	start := 0
	for i, id := range order {
		if id == from {
			start = i
			break
		}
	}
	for step := 1; step < len(order); step++ {
		id := order[(start+step)%len(order)]
		if !g.state.Players[id].Eliminated {
			return id, true
		}
	}
	return "", false
}

// CheckWinCondition reports whether the game is decided. A player wins when
// all of their own characters are asleep; the last player left in the game
// wins by default. It does not mutate s.
func CheckWinCondition(s *State, rules Rules) WinStatus {
	if s.GameOver {
		return WinStatus{GameOver: true, WinnerID: s.Winner, Message: fmt.Sprintf("%s wins!", s.name(s.Winner))}
	}
	active := s.activePlayers()
	for _, p := range active {
		if p.SleptCount >= rules.CharactersPerPlayer {
			return WinStatus{GameOver: true, WinnerID: p.ID, Message: fmt.Sprintf("%s wins!", p.Name)}
		}
	}
	if len(active) == 1 {
		p := active[0]
		return WinStatus{GameOver: true, WinnerID: p.ID, Message: fmt.Sprintf("%s wins by default!", p.Name)}
	}
	return WinStatus{}
}
