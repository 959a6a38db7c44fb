package engine

// View is one player's redacted picture of the game. Other players' hands are
// reduced to a count.
type View struct {
	GameID      string       `json:"gameId"`
	Viewer      string       `json:"viewer"`
	Players     []PlayerView `json:"players"`
	CurrentTurn string       `json:"currentTurn"`
	Pending     *PendingView `json:"pending,omitempty"`
	GameOver    bool         `json:"gameOver"`
	Winner      string       `json:"winner,omitempty"`
	Message     string       `json:"message"`
	Log         []string     `json:"actionLog"`
	MaxHandSize int          `json:"maxHandSize"`
}

// PlayerView is a seat as seen by the viewer.
type PlayerView struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Characters []Character `json:"characters"`
	// Hand and HasDefenseCard are only set on the viewer's own seat.
	Hand           []Card `json:"hand,omitempty"`
	HasDefenseCard bool   `json:"hasDefenseCard,omitempty"`
	HandSize       int    `json:"handSize"`
	SleptCount     int    `json:"sleptCount"`
	IsBot          bool   `json:"isBot"`
	Eliminated     bool   `json:"eliminated"`
}

// PendingView describes the open defense window without revealing cards
// beyond the one that was played.
type PendingView struct {
	CardName          string   `json:"cardName"`
	CardType          CardType `json:"cardType"`
	EffectValue       int      `json:"effectValue,omitempty"`
	InitiatorID       string   `json:"initiatorId"`
	TargetPlayerID    string   `json:"targetPlayerId"`
	TargetCharacterID string   `json:"targetCharacterId,omitempty"`
	TargetCardIndices []int    `json:"targetCardIndices,omitempty"`
}

// ViewFor projects the state for playerID. An unknown playerID gets a
// spectator-shaped view with every hand hidden.
func (g *Game) ViewFor(playerID string) View {
	s := &g.state
	v := View{
		GameID:      s.ID,
		Viewer:      playerID,
		CurrentTurn: s.CurrentTurn,
		GameOver:    s.GameOver,
		Winner:      s.Winner,
		Message:     s.Message,
		Log:         append([]string(nil), s.Log...),
		MaxHandSize: g.rules.MaxHandSize,
	}
	for _, id := range s.TurnOrder {
		p := s.Players[id]
		pv := PlayerView{
			ID:         p.ID,
			Name:       p.Name,
			Characters: append([]Character(nil), p.Characters...),
			HandSize:   len(p.Hand),
			SleptCount: p.SleptCount,
			IsBot:      p.IsBot,
			Eliminated: p.Eliminated,
		}
		if id == playerID {
			pv.Hand = append([]Card{}, p.Hand...)
			pv.HasDefenseCard = p.HasDefense()
		}
		v.Players = append(v.Players, pv)
	}
	if pa := s.Pending; pa != nil {
		v.Pending = &PendingView{
			CardName:          pa.Card.Name,
			CardType:          pa.Card.Type,
			EffectValue:       pa.Card.Effect.Value,
			InitiatorID:       pa.InitiatorID,
			TargetPlayerID:    pa.TargetPlayerID,
			TargetCharacterID: pa.TargetCharacterID,
			TargetCardIndices: append([]int(nil), pa.TargetCardIndices...),
		}
	}
	return v
}

// Player returns the seat with the given id, or nil.
func (v View) Player(id string) *PlayerView {
	for i := range v.Players {
		if v.Players[i].ID == id {
			return &v.Players[i]
		}
	}
	return nil
}
