package engine

// CardType is the closed set of card kinds.
type CardType string

const (
	CardAttack  CardType = "attack"
	CardSupport CardType = "support"
	CardLucky   CardType = "lucky"
	CardSteal   CardType = "steal"
	CardSwap    CardType = "swap"
	CardDefense CardType = "defense"
)

// EffectKind describes what a card does when it resolves.
type EffectKind string

const (
	EffectReduceSleep   EffectKind = "reduce_sleep"
	EffectAddSleep      EffectKind = "add_sleep"
	EffectForceSleep    EffectKind = "force_sleep"
	EffectStealCards    EffectKind = "steal_cards"
	EffectSwapCards     EffectKind = "swap_cards"
	EffectNullifyAction EffectKind = "nullify_action"
)

// effectFor is the only effect kind each card type may carry.
var effectFor = map[CardType]EffectKind{
	CardAttack:  EffectReduceSleep,
	CardSupport: EffectAddSleep,
	CardLucky:   EffectForceSleep,
	CardSteal:   EffectStealCards,
	CardSwap:    EffectSwapCards,
	CardDefense: EffectNullifyAction,
}

// Effect is a card's signed numeric effect.
type Effect struct {
	Kind  EffectKind `json:"kind"`
	Value int        `json:"value,omitempty"`
}

// Card is a value copy of a card template. Hands hold copies, never references.
type Card struct {
	Name        string   `json:"name"`
	Type        CardType `json:"type"`
	Effect      Effect   `json:"effect"`
	Rarity      float64  `json:"rarity"`
	Description string   `json:"description,omitempty"`
}

// wellFormed reports whether the card's effect matches its type.
func (c Card) wellFormed() bool {
	kind, ok := effectFor[c.Type]
	return ok && kind == c.Effect.Kind
}

// CharacterTemplate is the immutable content a Character is dealt from.
type CharacterTemplate struct {
	Name        string
	Age         int
	MaxSleep    int
	Description string
}

// Character is a per-player piece with a sleep counter.
// 0 <= CurrentSleep <= MaxSleep; Asleep never reverts once set.
type Character struct {
	ID           string `json:"id"`
	OwnerID      string `json:"ownerId"`
	Name         string `json:"name"`
	Age          int    `json:"age"`
	Description  string `json:"description,omitempty"`
	MaxSleep     int    `json:"maxSleep"`
	CurrentSleep int    `json:"currentSleep"`
	Asleep       bool   `json:"isAsleep"`
}

// Deficit is the number of sleep hours the character still needs.
func (c Character) Deficit() int {
	return c.MaxSleep - c.CurrentSleep
}

// Player is one seat at the table.
type Player struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Characters []Character `json:"characters"`
	Hand       []Card      `json:"hand"`
	SleptCount int         `json:"sleptCount"`
	IsBot      bool        `json:"isBot"`
	Eliminated bool        `json:"eliminated"`
}

// HasDefense reports whether the player holds at least one defense card.
func (p *Player) HasDefense() bool {
	return p.defenseIndex() >= 0
}

func (p *Player) defenseIndex() int {
	for i, c := range p.Hand {
		if c.Type == CardDefense {
			return i
		}
	}
	return -1
}

func (p *Player) cardAt(index int) (Card, error) {
	if index < 0 || index >= len(p.Hand) {
		return Card{}, newError(CodeInvalidCardIndex, "card index %d out of range (hand has %d cards)", index, len(p.Hand))
	}
	return p.Hand[index], nil
}

func (p *Player) removeCard(index int) Card {
	c := p.Hand[index]
	p.Hand = append(p.Hand[:index], p.Hand[index+1:]...)
	return c
}

// PendingAction is a played attack, steal or swap awaiting the target's
// defense decision. Card is a snapshot taken when the action was played.
type PendingAction struct {
	Card              Card   `json:"card"`
	InitiatorID       string `json:"initiatorId"`
	TargetPlayerID    string `json:"targetPlayerId"`
	TargetCharacterID string `json:"targetCharacterId,omitempty"`
	// OwnCardIndices index the initiator's hand after the played card left it.
	OwnCardIndices    []int `json:"ownCardIndices,omitempty"`
	TargetCardIndices []int `json:"targetCardIndices,omitempty"`
}

func (a *PendingAction) clone() *PendingAction {
	if a == nil {
		return nil
	}
	c := *a
	c.OwnCardIndices = append([]int(nil), a.OwnCardIndices...)
	c.TargetCardIndices = append([]int(nil), a.TargetCardIndices...)
	return &c
}

// State is the aggregate root of one game.
type State struct {
	ID          string             `json:"id"`
	Players     map[string]*Player `json:"players"`
	TurnOrder   []string           `json:"turnOrder"`
	CurrentTurn string             `json:"currentTurn"`
	Pending     *PendingAction     `json:"pending,omitempty"`
	GameOver    bool               `json:"gameOver"`
	Winner      string             `json:"winner,omitempty"`
	Message     string             `json:"message"`
	Log         []string           `json:"actionLog"`
}

// Clone returns a deep copy.
func (s *State) Clone() State {
	c := *s
	c.Players = make(map[string]*Player, len(s.Players))
	for id, p := range s.Players {
		pc := *p
		pc.Characters = append([]Character(nil), p.Characters...)
		pc.Hand = append([]Card(nil), p.Hand...)
		c.Players[id] = &pc
	}
	c.TurnOrder = append([]string(nil), s.TurnOrder...)
	c.Pending = s.Pending.clone()
	c.Log = append([]string(nil), s.Log...)
	return c
}

func (s *State) record(msg string) {
	s.Message = msg
	s.Log = append(s.Log, msg)
}

// character finds a character and its owner by character ID.
func (s *State) character(id string) (*Player, *Character) {
	for _, pid := range s.TurnOrder {
		p := s.Players[pid]
		for i := range p.Characters {
			if p.Characters[i].ID == id {
				return p, &p.Characters[i]
			}
		}
	}
	return nil, nil
}

// activePlayers returns the non-eliminated players in turn order.
func (s *State) activePlayers() []*Player {
	var out []*Player
	for _, id := range s.TurnOrder {
		if p := s.Players[id]; !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

func (s *State) name(id string) string {
	if p, ok := s.Players[id]; ok {
		return p.Name
	}
	return id
}

// WinStatus accompanies every operation result.
type WinStatus struct {
	GameOver bool   `json:"gameOver"`
	WinnerID string `json:"winnerId,omitempty"`
	Message  string `json:"message,omitempty"`
}
