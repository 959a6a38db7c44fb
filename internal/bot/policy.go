// Package bot plays seats that no human controls.
package bot

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"

	"sleepygame/internal/engine"
)

// maxPlaysPerTurn caps one turn's plays. Every play spends a card and no
// cards are drawn mid-turn, so a real turn never gets near it.
const maxPlaysPerTurn = 64

// Policy is a greedy heuristic player. It only ever calls the same game
// operations a human would.
type Policy struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// New returns a Policy. A nil rng gets a randomly seeded source and a nil
// logger discards output.
func New(rng *rand.Rand, logger *zap.Logger) *Policy {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{rng: rng, logger: logger}
}

type move struct {
	index  int
	params engine.PlayParams
	kind   engine.CardType
}

// Act takes botID's move if the game is waiting on it. A pending action
// aimed at the bot is defended when possible and declined otherwise. On its
// own turn the bot plays cards in priority order until a full pass finds
// nothing worth playing, then ends its turn. If one of its plays opens a
// defense window the bot stops and resumes when the game comes back to it.
func (p *Policy) Act(g *engine.Game, botID string) error {
	if g.Actor() != botID {
		return nil
	}
	v := g.ViewFor(botID)
	if v.Pending != nil {
		return p.respond(g, v, botID)
	}

	for plays := 0; plays < maxPlaysPerTurn; plays++ {
		v = g.ViewFor(botID)
		if v.GameOver || v.Pending != nil {
			return nil
		}
		if !p.playOne(g, v, botID) {
			break
		}
	}
	_, err := g.EndTurn(botID)
	if err != nil {
		return err
	}
	p.logger.Debug("bot ended turn", zap.String("game_id", g.ID()), zap.String("bot_id", botID))
	return nil
}

func (p *Policy) respond(g *engine.Game, v engine.View, botID string) error {
	me := v.Player(botID)
	for i, c := range me.Hand {
		if c.Type == engine.CardDefense {
			_, err := g.ResolvePending(botID, true, i)
			return err
		}
	}
	_, err := g.ResolvePending(botID, false, 0)
	return err
}

// playOne tries candidate moves in priority order and reports whether one
// was accepted. Rejected candidates are skipped.
func (p *Policy) playOne(g *engine.Game, v engine.View, botID string) bool {
	for _, m := range p.candidates(v, botID) {
		_, err := g.PlayCard(botID, m.index, m.params)
		if err == nil {
			p.logger.Debug("bot played card",
				zap.String("game_id", g.ID()),
				zap.String("bot_id", botID),
				zap.String("type", string(m.kind)),
			)
			return true
		}
		p.logger.Debug("bot move rejected",
			zap.String("game_id", g.ID()),
			zap.String("bot_id", botID),
			zap.Error(err),
		)
	}
	return false
}

// candidates lists plays in priority order: steal, swap, lucky, attack,
// support.
func (p *Policy) candidates(v engine.View, botID string) []move {
	me := v.Player(botID)
	if me == nil {
		return nil
	}
	var opponents []engine.PlayerView
	for _, pv := range v.Players {
		if pv.ID != botID && !pv.Eliminated {
			opponents = append(opponents, pv)
		}
	}

	var out []move
	out = append(out, p.steals(v, me, opponents)...)
	out = append(out, p.swaps(me, opponents)...)
	out = append(out, lucky(me)...)
	out = append(out, attacks(me, opponents)...)
	out = append(out, supports(me)...)
	return out
}

// victim picks a random opponent with cards, preferring humans.
func (p *Policy) victim(opponents []engine.PlayerView) (engine.PlayerView, bool) {
	var humans, bots []engine.PlayerView
	for _, o := range opponents {
		if o.HandSize == 0 {
			continue
		}
		if o.IsBot {
			bots = append(bots, o)
		} else {
			humans = append(humans, o)
		}
	}
	pool := humans
	if len(pool) == 0 {
		pool = bots
	}
	if len(pool) == 0 {
		return engine.PlayerView{}, false
	}
	return pool[p.rng.IntN(len(pool))], true
}

func (p *Policy) steals(v engine.View, me *engine.PlayerView, opponents []engine.PlayerView) []move {
	idx := slices.IndexFunc(me.Hand, func(c engine.Card) bool { return c.Type == engine.CardSteal })
	if idx < 0 || len(me.Hand)-1 >= v.MaxHandSize {
		return nil
	}
	target, ok := p.victim(opponents)
	if !ok {
		return nil
	}
	return []move{{index: idx, kind: engine.CardSteal, params: engine.PlayParams{TargetPlayerID: target.ID}}}
}

// swaps trades away dead cards first. It is only worth playing when the bot
// holds at least one card it cannot use.
func (p *Policy) swaps(me *engine.PlayerView, opponents []engine.PlayerView) []move {
	idx := slices.IndexFunc(me.Hand, func(c engine.Card) bool { return c.Type == engine.CardSwap })
	if idx < 0 {
		return nil
	}
	var dead, rest []int
	for i, c := range me.Hand {
		switch {
		case i == idx:
		case isDead(c, me, opponents):
			dead = append(dead, i)
		default:
			rest = append(rest, i)
		}
	}
	if len(dead) == 0 {
		return nil
	}
	target, ok := p.victim(opponents)
	if !ok {
		return nil
	}
	n := min(len(me.Hand)-1, target.HandSize)
	p.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	own := append(dead, rest...)[:n]
	theirs := p.rng.Perm(target.HandSize)[:n]
	return []move{{
		index: idx,
		kind:  engine.CardSwap,
		params: engine.PlayParams{
			TargetPlayerID:    target.ID,
			OwnCardIndices:    own,
			TargetCardIndices: theirs,
		},
	}}
}

// isDead reports whether c has no useful play right now.
func isDead(c engine.Card, me *engine.PlayerView, opponents []engine.PlayerView) bool {
	switch c.Type {
	case engine.CardLucky, engine.CardSupport:
		return !slices.ContainsFunc(me.Characters, awake)
	case engine.CardAttack:
		for _, o := range opponents {
			if slices.ContainsFunc(o.Characters, hurtable) {
				return false
			}
		}
		return true
	}
	return false
}

func awake(c engine.Character) bool { return !c.Asleep }

func hurtable(c engine.Character) bool { return !c.Asleep && c.CurrentSleep > 0 }

// lucky spends the card on the bot's neediest awake character.
func lucky(me *engine.PlayerView) []move {
	idx := slices.IndexFunc(me.Hand, func(c engine.Card) bool { return c.Type == engine.CardLucky })
	if idx < 0 {
		return nil
	}
	var best *engine.Character
	for i := range me.Characters {
		c := &me.Characters[i]
		if !c.Asleep && (best == nil || c.Deficit() > best.Deficit()) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return []move{{index: idx, kind: engine.CardLucky, params: engine.PlayParams{TargetCharacterID: best.ID}}}
}

// attacks prefers a card that wipes a character's progress without waste,
// then the hardest hit on whichever opponent character is closest to sleep.
func attacks(me *engine.PlayerView, opponents []engine.PlayerView) []move {
	type option struct {
		index int
		value int
		char  engine.Character
	}
	var exact, other []option
	for i, card := range me.Hand {
		if card.Type != engine.CardAttack {
			continue
		}
		for _, o := range opponents {
			for _, c := range o.Characters {
				if !hurtable(c) {
					continue
				}
				opt := option{index: i, value: card.Effect.Value, char: c}
				if c.CurrentSleep+card.Effect.Value == 0 {
					exact = append(exact, opt)
				} else {
					other = append(other, opt)
				}
			}
		}
	}
	slices.SortStableFunc(other, func(a, b option) int {
		if d := cmp.Compare(a.char.Deficit(), b.char.Deficit()); d != 0 {
			return d
		}
		return cmp.Compare(a.value, b.value)
	})
	out := make([]move, 0, len(exact)+len(other))
	for _, opt := range append(exact, other...) {
		out = append(out, move{index: opt.index, kind: engine.CardAttack, params: engine.PlayParams{TargetCharacterID: opt.char.ID}})
	}
	return out
}

// supports prefers the smallest deficit a card can close, then the smallest
// deficit overall.
func supports(me *engine.PlayerView) []move {
	type option struct {
		index    int
		deficit  int
		complete bool
		charID   string
	}
	var opts []option
	for i, card := range me.Hand {
		if card.Type != engine.CardSupport {
			continue
		}
		for _, c := range me.Characters {
			if c.Asleep {
				continue
			}
			opts = append(opts, option{
				index:    i,
				deficit:  c.Deficit(),
				complete: c.Deficit() <= card.Effect.Value,
				charID:   c.ID,
			})
		}
	}
	slices.SortStableFunc(opts, func(a, b option) int {
		if a.complete != b.complete {
			if a.complete {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.deficit, b.deficit)
	})
	out := make([]move, 0, len(opts))
	for _, opt := range opts {
		out = append(out, move{index: opt.index, kind: engine.CardSupport, params: engine.PlayParams{TargetCharacterID: opt.charID}})
	}
	return out
}
