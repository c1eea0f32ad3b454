package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/holdem/internal/deck"
	"github.com/jason-s-yu/holdem/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxSeats      = 8
	DefaultStartingChips = 1000
	DefaultDealDelay     = 2 * time.Second
)

// Options configure every room created by a RoomStore.
type Options struct {
	MaxSeats      int
	StartingChips int
	DealDelay     time.Duration

	// NewDeck returns the deck for a new hand. Defaults to a crypto-shuffled deck.
	NewDeck func() *deck.Deck

	Logger *logrus.Logger
}

// DefaultOptions returns the stock table settings.
func DefaultOptions() Options {
	return Options{
		MaxSeats:      DefaultMaxSeats,
		StartingChips: DefaultStartingChips,
		DealDelay:     DefaultDealDelay,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxSeats <= 0 {
		o.MaxSeats = DefaultMaxSeats
	}
	if o.StartingChips <= 0 {
		o.StartingChips = DefaultStartingChips
	}
	if o.DealDelay < 0 {
		o.DealDelay = 0
	}
	if o.NewDeck == nil {
		o.NewDeck = func() *deck.Deck { return deck.NewShuffled(nil) }
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}

// HandResult describes how the last completed hand was settled.
type HandResult struct {
	HandID      uuid.UUID `json:"handId"`
	HandNumber  int       `json:"handNumber"`
	Winners     []string  `json:"winners"`
	Amount      int       `json:"amount"`
	Hand        string    `json:"hand,omitempty"`
	Uncontested bool      `json:"uncontested,omitempty"`
	// Aborted hands paid nobody; committed chips went back to their owners.
	Aborted bool `json:"aborted,omitempty"`
}

// Outcome reports what an operation did to the hand, so callers can record it
// without holding the room lock.
type Outcome struct {
	HandID     uuid.UUID
	HandNumber int
	Phase      models.Phase
	// Result is set when the operation finished the hand.
	Result *HandResult
}

// DealHook is called after a timer-driven deal with the hand that was dealt.
type DealHook func(r *Room, dealt Outcome)

// Room is one poker table. All state is guarded by mu; nothing outside this
// package touches players or cards directly.
type Room struct {
	ID string

	mu   sync.Mutex
	opts Options
	log  *logrus.Entry

	players   []*models.Player
	community []models.Card
	pot       int
	phase     models.Phase
	turn      int
	deck      *deck.Deck

	handID     uuid.UUID
	handNumber int
	lastResult *HandResult

	dealPending bool
	dealGen     uint64
	dealTimer   *time.Timer

	// closed is set once the store has dropped the room; late joiners must
	// fetch a fresh one.
	closed bool

	// onDeal runs after a scheduled deal succeeds, outside the lock.
	onDeal DealHook
}

// NewRoom creates an empty room in the waiting phase.
func NewRoom(id string, opts Options) *Room {
	opts = opts.withDefaults()
	return &Room{
		ID:        id,
		opts:      opts,
		log:       opts.Logger.WithField("room", id),
		players:   make([]*models.Player, 0, opts.MaxSeats),
		community: make([]models.Card, 0, 5),
		phase:     models.PhaseWaiting,
		turn:      -1,
	}
}

// SetOnDeal registers the callback fired after each timer-driven deal.
func (r *Room) SetOnDeal(fn DealHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onDeal = fn
}

// Join seats a new player with the starting stack. A player joining during a
// hand sits out until the next deal.
func (r *Room) Join(playerID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomClosed
	}
	if r.indexOf(playerID) >= 0 {
		return ErrAlreadySeated
	}
	if len(r.players) >= r.opts.MaxSeats {
		return ErrRoomFull
	}

	p := &models.Player{
		ID:    playerID,
		Name:  name,
		Chips: r.opts.StartingChips,
		Cards: []models.Card{},
	}
	if r.phase.Betting() {
		p.SittingOut = true
	}
	r.players = append(r.players, p)
	r.log.WithFields(logrus.Fields{"player": playerID, "seats": len(r.players)}).Info("player joined")

	r.maybeScheduleDeal()
	return nil
}

// Leave removes a player. Chips already in the pot stay there. If the hand can
// no longer continue it is settled or abandoned.
func (r *Room) Leave(playerID string) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(playerID)
	if idx < 0 {
		return Outcome{}, ErrPlayerNotFound
	}
	wasTurn := r.phase.Betting() && idx == r.turn
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.log.WithFields(logrus.Fields{"player": playerID, "seats": len(r.players)}).Info("player left")

	out := Outcome{HandID: r.handID, HandNumber: r.handNumber}

	if !r.phase.Betting() {
		if r.fundedCount() < 2 {
			r.cancelDeal()
			if r.phase == models.PhaseShowdown {
				r.phase = models.PhaseWaiting
			}
		}
		out.Phase = r.phase
		return out, nil
	}

	if idx < r.turn {
		r.turn--
	}

	if len(r.players) < 2 {
		out.Result = r.abandonHand()
		out.Phase = r.phase
		return out, nil
	}

	if r.contenderCount() == 1 {
		out.Result = r.finishHand()
		out.Phase = r.phase
		return out, nil
	}

	if wasTurn {
		r.turn = r.firstActorFrom(r.turn % len(r.players))
	}
	if r.roundClosed() {
		out.Result = r.closeRound()
	} else if r.turn < 0 {
		out.Result = r.abortHand(errTurnUnresolved)
	}
	out.Phase = r.phase
	return out, nil
}

// Len returns the number of seated players.
func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Phase returns the current phase.
func (r *Room) Phase() models.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// PlayerIDs lists seated players in seat order.
func (r *Room) PlayerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}

// Hand returns the current (or last) hand's ID and sequence number.
func (r *Room) Hand() (uuid.UUID, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handID, r.handNumber
}

// StartHand deals immediately, cancelling any pending timed deal.
func (r *Room) StartHand() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startHand()
}

// close marks the room dead and stops its timer. Called by the store with the
// room lock held.
func (r *Room) close() {
	r.closed = true
	r.cancelDeal()
}

// maybeScheduleDeal arms the deal timer when the room is between hands and has
// two funded players. It is a no-op while a deal is already pending.
func (r *Room) maybeScheduleDeal() {
	if r.closed || r.dealPending || r.phase.Betting() {
		return
	}
	if r.fundedCount() < 2 {
		return
	}
	r.dealGen++
	gen := r.dealGen
	r.dealPending = true
	r.dealTimer = time.AfterFunc(r.opts.DealDelay, func() {
		r.dealScheduled(gen)
	})
	r.log.WithField("delay", r.opts.DealDelay).Debug("deal scheduled")
}

func (r *Room) dealScheduled(gen uint64) {
	r.mu.Lock()
	if gen != r.dealGen || !r.dealPending || r.closed {
		r.mu.Unlock()
		r.log.WithField("gen", gen).Debug("stale deal timer ignored")
		return
	}
	r.dealPending = false
	r.dealTimer = nil
	err := r.startHand()
	hook := r.onDeal
	dealt := Outcome{HandID: r.handID, HandNumber: r.handNumber, Phase: r.phase}
	r.mu.Unlock()

	if err != nil {
		r.log.WithError(err).Debug("scheduled deal skipped")
		return
	}
	if hook != nil {
		hook(r, dealt)
	}
}

func (r *Room) cancelDeal() {
	if r.dealTimer != nil {
		r.dealTimer.Stop()
		r.dealTimer = nil
	}
	if r.dealPending {
		r.dealPending = false
		r.dealGen++
	}
}

// startHand resets the table and deals two hole cards to every funded player.
// Must be called with mu held.
func (r *Room) startHand() error {
	if r.phase.Betting() {
		return ErrHandInProgress
	}
	r.cancelDeal()
	if r.fundedCount() < 2 {
		r.phase = models.PhaseWaiting
		return ErrNotEnoughPlayers
	}

	r.deck = r.opts.NewDeck()
	r.community = r.community[:0]
	r.pot = 0
	r.handNumber++
	r.handID = uuid.New()

	for _, p := range r.players {
		p.ResetForHand()
		p.Cards = []models.Card{}
		if p.Chips <= 0 {
			p.SittingOut = true
		}
	}
	for _, p := range r.players {
		if p.SittingOut {
			continue
		}
		for i := 0; i < 2; i++ {
			c, err := r.deck.Draw()
			if err != nil {
				r.abortHand(err)
				return err
			}
			p.Cards = append(p.Cards, c)
		}
	}

	r.phase = models.PhasePreflop
	r.turn = r.firstActorFrom(0)
	r.log.WithFields(logrus.Fields{"hand": r.handNumber, "handId": r.handID, "players": r.inHandCount()}).Info("hand dealt")
	return nil
}

// abandonHand ends a hand that lost too many players to continue. Whoever is
// left takes the pot.
func (r *Room) abandonHand() *HandResult {
	r.cancelDeal()
	res := &HandResult{HandID: r.handID, HandNumber: r.handNumber, Amount: r.pot, Uncontested: true, Winners: []string{}}
	if len(r.players) == 1 {
		p := r.players[0]
		p.Chips += r.pot
		res.Winners = append(res.Winners, p.ID)
	}
	r.pot = 0
	r.clearHand()
	r.phase = models.PhaseWaiting
	r.lastResult = res
	r.log.WithFields(logrus.Fields{"hand": r.handNumber, "winners": res.Winners, "amount": res.Amount}).Info("hand abandoned")
	return res
}

// abortHand unwinds a hand after an internal inconsistency: every player gets
// back what they put in and the room returns to waiting.
func (r *Room) abortHand(cause error) *HandResult {
	r.log.WithError(cause).WithField("hand", r.handNumber).Error("hand aborted, refunding committed chips")
	res := &HandResult{HandID: r.handID, HandNumber: r.handNumber, Amount: r.pot, Winners: []string{}, Aborted: true}
	for _, p := range r.players {
		p.Chips += p.Committed
	}
	r.pot = 0
	r.clearHand()
	r.phase = models.PhaseWaiting
	r.lastResult = res
	r.maybeScheduleDeal()
	return res
}

func (r *Room) clearHand() {
	r.community = r.community[:0]
	r.turn = -1
	r.deck = nil
	for _, p := range r.players {
		p.ResetForHand()
		p.Cards = []models.Card{}
	}
}

func (r *Room) indexOf(playerID string) int {
	for i, p := range r.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (r *Room) fundedCount() int {
	n := 0
	for _, p := range r.players {
		if p.Chips > 0 {
			n++
		}
	}
	return n
}

// inHandCount counts players holding cards this hand, folded or not.
func (r *Room) inHandCount() int {
	n := 0
	for _, p := range r.players {
		if !p.SittingOut {
			n++
		}
	}
	return n
}
