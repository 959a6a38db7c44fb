package engine

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// PlayParams carries the card-type specific arguments of a play.
//
// Attack, support and lucky need TargetCharacterID. Steal and swap take
// TargetPlayerID, which may be omitted when only one opponent remains.
// Swap needs OwnCardIndices and TargetCardIndices of equal, exact length;
// steal optionally picks TargetCardIndices. Defense needs nothing.
type PlayParams struct {
	TargetCharacterID string `json:"targetCharacterId,omitempty"`
	TargetPlayerID    string `json:"targetPlayerId,omitempty"`
	OwnCardIndices    []int  `json:"ownCardIndices,omitempty"`
	TargetCardIndices []int  `json:"targetCardIndices,omitempty"`
}

// PlayCard plays the card at cardIndex from playerID's hand.
//
// With no defense window open only the current player may play, and any
// non-defense card. While a window is open only its target may play, and only
// a defense card, which nullifies the pending action. Attack, steal and swap
// open a window instead of resolving when the target holds a defense card.
// Playing a card never ends the turn.
func (g *Game) PlayCard(playerID string, cardIndex int, params PlayParams) (WinStatus, error) {
	if err := g.checkLive(); err != nil {
		return g.reject("play_card", playerID, err)
	}
	p, ok := g.state.Players[playerID]
	if !ok || p.Eliminated {
		return g.reject("play_card", playerID, newError(CodeInvalidTurn, "player %q is not in the game", playerID))
	}

	if pending := g.state.Pending; pending != nil {
		if playerID != pending.TargetPlayerID {
			if playerID == g.state.CurrentTurn {
				return g.reject("play_card", playerID, newError(CodePendingActionUnresolved,
					"waiting for %s to respond to %s", g.state.name(pending.TargetPlayerID), pending.Card.Name))
			}
			return g.reject("play_card", playerID, newError(CodeInvalidTurn, "it is not your turn"))
		}
		card, err := p.cardAt(cardIndex)
		if err != nil {
			return g.reject("play_card", playerID, err)
		}
		if card.Type != CardDefense {
			return g.reject("play_card", playerID, newError(CodePendingActionUnresolved,
				"you must respond to %s with a defense card or decline", pending.Card.Name))
		}
		g.defend(p, cardIndex)
		return g.settle(), nil
	}

	if playerID != g.state.CurrentTurn {
		return g.reject("play_card", playerID, newError(CodeInvalidTurn, "it is not your turn"))
	}
	card, err := p.cardAt(cardIndex)
	if err != nil {
		return g.reject("play_card", playerID, err)
	}
	if !card.wellFormed() {
		return g.reject("play_card", playerID, newError(CodeStateDesync,
			"card %q has type %q but effect %q", card.Name, card.Type, card.Effect.Kind))
	}

	switch card.Type {
	case CardDefense:
		err = newError(CodeInvalidState, "there is no action to defend against")
	case CardAttack, CardSupport, CardLucky:
		err = g.playOnCharacter(p, cardIndex, card, params.TargetCharacterID)
	case CardSteal:
		err = g.playSteal(p, cardIndex, card, params)
	case CardSwap:
		err = g.playSwap(p, cardIndex, card, params)
	default:
		err = newError(CodeStateDesync, "unknown card type %q", card.Type)
	}
	if err != nil {
		return g.reject("play_card", playerID, err)
	}
	g.logger.Debug("card played",
		zap.String("game_id", g.state.ID),
		zap.String("player_id", playerID),
		zap.String("card", card.Name),
		zap.Bool("deferred", g.state.Pending != nil),
	)
	return g.settle(), nil
}

// ResolvePending answers the open defense window. With useDefense the
// defense card at defenseCardIndex nullifies the action; otherwise the
// pending action resolves exactly as it would have without a window.
// The nullified card is not returned to the initiator.
func (g *Game) ResolvePending(playerID string, useDefense bool, defenseCardIndex int) (WinStatus, error) {
	if err := g.checkLive(); err != nil {
		return g.reject("resolve_pending", playerID, err)
	}
	pending := g.state.Pending
	if pending == nil {
		return g.reject("resolve_pending", playerID, newError(CodeInvalidState, "there is no pending action to resolve"))
	}
	if playerID != pending.TargetPlayerID {
		return g.reject("resolve_pending", playerID, newError(CodeInvalidTurn, "you are not the target of this action"))
	}
	p := g.state.Players[playerID]

	if useDefense {
		card, err := p.cardAt(defenseCardIndex)
		if err != nil {
			return g.reject("resolve_pending", playerID, err)
		}
		if card.Type != CardDefense {
			return g.reject("resolve_pending", playerID, newError(CodeInvalidCardIndex,
				"card at index %d is %s, not a defense card", defenseCardIndex, card.Name))
		}
		g.defend(p, defenseCardIndex)
		return g.settle(), nil
	}

	initiator := g.state.Players[pending.InitiatorID]
	var err error
	switch pending.Card.Type {
	case CardAttack:
		err = g.checkCharacterEffect(pending.TargetCharacterID)
		if err == nil {
			g.state.record(fmt.Sprintf("%s chose not to defend.", p.Name))
			g.applyCharacterEffect(initiator, pending.Card, pending.TargetCharacterID)
		}
	case CardSteal:
		err = g.applySteal(initiator, p, pending.Card, pending.TargetCardIndices, fmt.Sprintf("%s chose not to defend.", p.Name))
	case CardSwap:
		err = g.applySwap(initiator, p, pending.Card, pending.OwnCardIndices, pending.TargetCardIndices, fmt.Sprintf("%s chose not to defend.", p.Name))
	default:
		err = newError(CodeStateDesync, "card type %q cannot be pending", pending.Card.Type)
	}
	if err != nil {
		return g.reject("resolve_pending", playerID, err)
	}
	g.state.Pending = nil
	return g.settle(), nil
}

func (g *Game) defend(p *Player, index int) {
	pending := g.state.Pending
	defense := p.removeCard(index)
	g.state.Pending = nil
	g.state.record(fmt.Sprintf("%s used %s to nullify %s's %s!",
		p.Name, defense.Name, g.state.name(pending.InitiatorID), pending.Card.Name))
	g.logger.Debug("action nullified",
		zap.String("game_id", g.state.ID),
		zap.String("player_id", p.ID),
		zap.String("card", pending.Card.Name),
	)
}

// playOnCharacter handles attack, support and lucky.
func (g *Game) playOnCharacter(p *Player, index int, card Card, targetID string) error {
	if targetID == "" {
		return newError(CodeInvalidTarget, "%s needs a target character", card.Name)
	}
	owner, target := g.state.character(targetID)
	switch {
	case target == nil:
		return newError(CodeInvalidTarget, "character %q not found", targetID)
	case owner.Eliminated:
		return newError(CodeInvalidTarget, "%s has left the game", owner.Name)
	case target.Asleep:
		return newError(CodeInvalidTarget, "%s is already asleep", target.Name)
	case card.Type == CardLucky && owner.ID != p.ID:
		return newError(CodeInvalidTarget, "%s can only be used on your own characters", card.Name)
	case card.Type == CardSupport && g.rules.SupportSelfOnly && owner.ID != p.ID:
		return newError(CodeInvalidTarget, "%s can only be used on your own characters", card.Name)
	case card.Type == CardAttack && owner.ID == p.ID:
		return newError(CodeInvalidTarget, "%s cannot target your own characters", card.Name)
	}

	p.removeCard(index)
	if card.Type == CardAttack && owner.HasDefense() {
		g.state.Pending = &PendingAction{
			Card:              card,
			InitiatorID:       p.ID,
			TargetPlayerID:    owner.ID,
			TargetCharacterID: target.ID,
		}
		g.state.record(fmt.Sprintf("%s played %s on %s. %s has a Defense Card! Waiting for their response.",
			p.Name, card.Name, target.Name, owner.Name))
		return nil
	}
	g.applyCharacterEffect(p, card, targetID)
	return nil
}

func (g *Game) checkCharacterEffect(targetID string) error {
	if _, c := g.state.character(targetID); c == nil {
		return newError(CodeStateDesync, "pending target character %q vanished", targetID)
	}
	return nil
}

// applyCharacterEffect moves the target's sleep counter. The caller has
// already validated that the character exists.
func (g *Game) applyCharacterEffect(actor *Player, card Card, targetID string) {
	owner, c := g.state.character(targetID)
	if c.Asleep {
		g.state.record(fmt.Sprintf("%s used %s on %s, but %s is already asleep.", actor.Name, card.Name, c.Name, c.Name))
		return
	}

	var msg string
	switch card.Effect.Kind {
	case EffectForceSleep:
		c.CurrentSleep = c.MaxSleep
		msg = fmt.Sprintf("%s used %s on %s for instant sleep!", actor.Name, card.Name, c.Name)
	default:
		c.CurrentSleep = clamp(c.CurrentSleep+card.Effect.Value, 0, c.MaxSleep)
		if card.Effect.Value < 0 {
			msg = fmt.Sprintf("%s used %s on %s to reduce sleep by %d hours.", actor.Name, card.Name, c.Name, -card.Effect.Value)
		} else {
			msg = fmt.Sprintf("%s used %s on %s to add %d hours of sleep.", actor.Name, card.Name, c.Name, card.Effect.Value)
		}
	}
	if c.CurrentSleep == c.MaxSleep && !c.Asleep {
		c.Asleep = true
		owner.SleptCount++
		msg += fmt.Sprintf(" %s reached enough sleep and is now asleep!", c.Name)
	}
	g.state.record(msg)
}

// opponent resolves the target player of a steal or swap.
func (g *Game) opponent(p *Player, targetID string) (*Player, error) {
	if targetID == "" {
		var candidates []*Player
		for _, o := range g.state.activePlayers() {
			if o.ID != p.ID {
				candidates = append(candidates, o)
			}
		}
		if len(candidates) != 1 {
			return nil, newError(CodeInvalidTarget, "choose which player to target")
		}
		return candidates[0], nil
	}
	o, ok := g.state.Players[targetID]
	switch {
	case !ok:
		return nil, newError(CodeInvalidTarget, "player %q not found", targetID)
	case o.ID == p.ID:
		return nil, newError(CodeInvalidTarget, "you cannot target yourself")
	case o.Eliminated:
		return nil, newError(CodeInvalidTarget, "%s has left the game", o.Name)
	}
	return o, nil
}

// stealCount is how many cards thief may take from victim, given thief's
// current hand size.
func (g *Game) stealCount(thiefHand, victimHand int) int {
	return max(0, min(victimHand, g.rules.MaxHandSize-thiefHand))
}

func (g *Game) playSteal(p *Player, index int, card Card, params PlayParams) error {
	target, err := g.opponent(p, params.TargetPlayerID)
	if err != nil {
		return err
	}
	n := g.stealCount(len(p.Hand)-1, len(target.Hand))
	sel := params.TargetCardIndices
	if len(sel) > 0 {
		if len(sel) != n {
			return newError(CodeInvalidStealSelection, "select exactly %d card(s) to steal, got %d", n, len(sel))
		}
		if err := checkSelection(sel, len(target.Hand), -1, CodeInvalidStealSelection); err != nil {
			return err
		}
	}

	p.removeCard(index)
	if target.HasDefense() {
		g.state.Pending = &PendingAction{
			Card:              card,
			InitiatorID:       p.ID,
			TargetPlayerID:    target.ID,
			TargetCardIndices: slices.Clone(sel),
		}
		g.state.record(fmt.Sprintf("%s played %s against %s. %s has a Defense Card! Waiting for their response.",
			p.Name, card.Name, target.Name, target.Name))
		return nil
	}
	// Cannot fail: the selection was validated against the same hands.
	return g.applySteal(p, target, card, sel, "")
}

// applySteal moves cards from victim to thief. Without a selection it takes
// from the front of victim's hand.
func (g *Game) applySteal(thief, victim *Player, card Card, sel []int, prefix string) error {
	n := g.stealCount(len(thief.Hand), len(victim.Hand))
	if len(sel) > 0 {
		if len(sel) != n {
			return newError(CodeStateDesync, "steal selection of %d no longer matches %d stealable card(s)", len(sel), n)
		}
		if err := checkSelection(sel, len(victim.Hand), -1, CodeStateDesync); err != nil {
			return err
		}
	} else {
		sel = make([]int, n)
		for i := range sel {
			sel[i] = i
		}
	}

	var msg string
	switch {
	case len(victim.Hand) == 0:
		msg = fmt.Sprintf("%s used %s, but %s's hand is empty!", thief.Name, card.Name, victim.Name)
	case n == 0:
		msg = fmt.Sprintf("%s used %s, but has no room for more cards.", thief.Name, card.Name)
	default:
		thief.Hand = append(thief.Hand, takeCards(victim, sel)...)
		msg = fmt.Sprintf("%s used %s and stole %d card(s) from %s.", thief.Name, card.Name, n, victim.Name)
	}
	if prefix != "" {
		msg = prefix + " " + msg
	}
	g.state.record(msg)
	return nil
}

func (g *Game) playSwap(p *Player, index int, card Card, params PlayParams) error {
	target, err := g.opponent(p, params.TargetPlayerID)
	if err != nil {
		return err
	}
	n := min(len(p.Hand)-1, len(target.Hand))
	if n == 0 {
		return newError(CodeInvalidSwapCount, "%s needs at least one card on each side", card.Name)
	}
	if len(params.OwnCardIndices) != n || len(params.TargetCardIndices) != n {
		return newError(CodeInvalidSwapCount, "select exactly %d card(s) from each hand, got %d and %d",
			n, len(params.OwnCardIndices), len(params.TargetCardIndices))
	}
	if err := checkSelection(params.OwnCardIndices, len(p.Hand), index, CodeInvalidSwapCount); err != nil {
		return err
	}
	if err := checkSelection(params.TargetCardIndices, len(target.Hand), -1, CodeInvalidSwapCount); err != nil {
		return err
	}

	// Re-base own indices onto the hand without the swap card.
	own := make([]int, n)
	for i, idx := range params.OwnCardIndices {
		if idx > index {
			idx--
		}
		own[i] = idx
	}
	theirs := slices.Clone(params.TargetCardIndices)

	p.removeCard(index)
	if target.HasDefense() {
		g.state.Pending = &PendingAction{
			Card:              card,
			InitiatorID:       p.ID,
			TargetPlayerID:    target.ID,
			OwnCardIndices:    own,
			TargetCardIndices: theirs,
		}
		g.state.record(fmt.Sprintf("%s played %s against %s. %s has a Defense Card! Waiting for their response.",
			p.Name, card.Name, target.Name, target.Name))
		return nil
	}
	return g.applySwap(p, target, card, own, theirs, "")
}

// applySwap exchanges the selected cards. Both selections are removed
// highest index first so earlier indices stay valid, then each side receives
// the other's cards at the end of its hand.
func (g *Game) applySwap(caster, target *Player, card Card, own, theirs []int, prefix string) error {
	if len(own) != len(theirs) {
		return newError(CodeStateDesync, "swap selections differ in size")
	}
	if err := checkSelection(own, len(caster.Hand), -1, CodeStateDesync); err != nil {
		return err
	}
	if err := checkSelection(theirs, len(target.Hand), -1, CodeStateDesync); err != nil {
		return err
	}

	given := takeCards(caster, own)
	received := takeCards(target, theirs)
	caster.Hand = append(caster.Hand, received...)
	target.Hand = append(target.Hand, given...)

	msg := fmt.Sprintf("%s used %s and swapped %d card(s) with %s.", caster.Name, card.Name, len(own), target.Name)
	if prefix != "" {
		msg = prefix + " " + msg
	}
	g.state.record(msg)
	return nil
}

// checkSelection verifies indices are in range, distinct, and never exclude.
func checkSelection(indices []int, handSize, exclude int, code Code) error {
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= handSize {
			if code == CodeStateDesync {
				return newError(code, "card index %d out of range (hand has %d cards)", idx, handSize)
			}
			return newError(CodeInvalidCardIndex, "card index %d out of range (hand has %d cards)", idx, handSize)
		}
		if idx == exclude {
			return newError(code, "the played card cannot be part of its own selection")
		}
		if seen[idx] {
			return newError(code, "card index %d selected twice", idx)
		}
		seen[idx] = true
	}
	return nil
}

// takeCards removes the selected cards from p's hand and returns them in
// ascending index order.
func takeCards(p *Player, indices []int) []Card {
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	out := make([]Card, len(sorted))
	for i, idx := range sorted {
		out[i] = p.Hand[idx]
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		p.removeCard(sorted[i])
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
