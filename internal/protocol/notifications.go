package protocol

import (
	"github.com/lox/pokertable/internal/cards"
)

// Notification targets pushed by the server. Every notification carries the
// table id as its first argument.
const (
	TargetTableStatusInfo           = "TableStatusInfo"
	TargetGameStarted               = "GameStarted"
	TargetBet                       = "Bet"
	TargetOpenCards                 = "OpenCards"
	TargetMoveMoneyToPot            = "MoveMoneyToPot"
	TargetMoneyAdded                = "MoneyAdded"
	TargetMoneyRemoved              = "MoneyRemoved"
	TargetPlayerCards               = "PlayerCards"
	TargetPlayerCardOpened          = "PlayerCardOpened"
	TargetPlayerCardsMucked         = "PlayerCardsMucked"
	TargetSit                       = "Sit"
	TargetStandup                   = "Standup"
	TargetTableFrozen               = "TableFrozen"
	TargetTableUnfrozen             = "TableUnfrozen"
	TargetTableOpened               = "TableOpened"
	TargetTableClosed               = "TableClosed"
	TargetTablePaused               = "TablePaused"
	TargetTableResumed              = "TableResumed"
	TargetGameFinished              = "GameFinished"
	TargetPlayerStatus              = "PlayerStatus"
	TargetFinalTableCardsOpened     = "FinalTableCardsOpened"
	TargetTableTournamentChanged    = "TableTournamentChanged"
	TargetTableBetParametersChanged = "TableBetParametersChanged"
	TargetTableGameTypeChanged      = "TableGameTypeChanged"
	TargetChatMessage               = "ChatMessage"
	TargetDuplicateConnection       = "DuplicateConnection"
)

// BetType is the kind of chip movement reported by a Bet notification.
type BetType int

const (
	BetBlind       BetType = 0
	BetAnte        BetType = 1
	BetCheckCall   BetType = 2
	BetRaise       BetType = 3
	BetFold        BetType = 4
	BetForced      BetType = 5
	BetReturnMoney BetType = 6
)

func (t BetType) String() string {
	switch t {
	case BetBlind:
		return "blind"
	case BetAnte:
		return "ante"
	case BetCheckCall:
		return "check/call"
	case BetRaise:
		return "bet/raise"
	case BetFold:
		return "fold"
	case BetForced:
		return "forced"
	case BetReturnMoney:
		return "return"
	default:
		return "unknown"
	}
}

// Limit is the betting cap regime.
type Limit int

const (
	NoLimit  Limit = 0
	PotLimit Limit = 1
)

func (l Limit) String() string {
	if l == PotLimit {
		return "Pot Limit"
	}
	return "No Limit"
}

// GameType selects the variant dealt at the table.
type GameType int

const (
	GameHoldem GameType = 1
	GameOmaha  GameType = 2
)

func (g GameType) String() string {
	switch g {
	case GameHoldem:
		return "Hold'em"
	case GameOmaha:
		return "Omaha"
	default:
		return "unknown"
	}
}

// Notification is a decoded server push.
type Notification interface {
	Target() string
	Table() int64
}

// PlayerInfo is one seat in a status resync.
type PlayerInfo struct {
	PlayerID   int64       `json:"playerId"`
	PlayerName string      `json:"playerName"`
	Seat       int         `json:"seat"`
	Money      int         `json:"money"`
	Bet        int         `json:"bet"`
	TotalBet   int         `json:"totalBet"`
	Status     int         `json:"status"`
	Cards      cards.Cards `json:"cards,omitempty"`
	Folded     bool        `json:"folded,omitempty"`
	Acted      bool        `json:"acted,omitempty"`
}

// BetAction is a single chip movement, also used for the forced bets that
// accompany GameStarted.
type BetAction struct {
	PlayerID     int64   `json:"playerId"`
	Type         BetType `json:"type"`
	Amount       int     `json:"amount"`
	NextPlayerID int64   `json:"nextPlayerId"`
}

// Winner is one pot award. Pot is 1-based.
type Winner struct {
	PlayerID int64       `json:"playerId"`
	Pot      int         `json:"pot"`
	Amount   int         `json:"amount"`
	Cards    cards.Cards `json:"cards,omitempty"`
}

type TableStatusInfo struct {
	TableID         int64
	Players         []PlayerInfo
	Pots            []int
	CommunityCards  cards.Cards
	DealerSeat      int
	SmallBlind      int
	BigBlind        int
	Ante            int
	GameType        GameType
	Limit           Limit
	BuyIn           int
	BaseBuyIn       int
	MaxBuyIn        int
	MaxPlayers      int
	GameID          int64
	CurrentPlayerID int64
	LastRaise       int
	Frozen          bool
	Opened          bool
	Paused          bool
	TournamentID    int64
}

type GameStarted struct {
	TableID    int64
	GameID     int64
	Players    []int64
	Actions    []BetAction
	DealerSeat int
}

type Bet struct {
	TableID int64
	BetAction
}

type OpenCards struct {
	TableID int64
	Cards   cards.Cards
}

type MoveMoneyToPot struct {
	TableID int64
	Pots    []int
}

type MoneyAdded struct {
	TableID  int64
	PlayerID int64
	Amount   int
}

type MoneyRemoved struct {
	TableID  int64
	PlayerID int64
	Amount   int
}

type PlayerCards struct {
	TableID  int64
	PlayerID int64
	Cards    cards.Cards
}

type PlayerCardOpened struct {
	TableID  int64
	PlayerID int64
	Position int
	Card     cards.Card
}

type PlayerCardsMucked struct {
	TableID  int64
	PlayerID int64
}

type Sit struct {
	TableID    int64
	PlayerID   int64
	PlayerName string
	Seat       int
	Money      int
}

type Standup struct {
	TableID  int64
	PlayerID int64
}

// TableFlag is one of the orthogonal table state overlays.
type TableFlag int

const (
	FlagFrozen TableFlag = iota
	FlagOpened
	FlagPaused
	FlagClosed
)

// TableFlagChanged covers the Frozen/Unfrozen, Opened/Closed and
// Paused/Resumed pairs.
type TableFlagChanged struct {
	TableID int64
	Name    string
	Flag    TableFlag
	On      bool
}

type GameFinished struct {
	TableID int64
	GameID  int64
	Winners []Winner
	Rake    int
}

type PlayerStatus struct {
	TableID  int64
	PlayerID int64
	Status   int
}

type FinalTableCardsOpened struct {
	TableID int64
	Cards   cards.Cards
}

type TableTournamentChanged struct {
	TableID      int64
	TournamentID int64
}

type TableBetParametersChanged struct {
	TableID    int64
	SmallBlind int
	BigBlind   int
	Ante       int
}

type TableGameTypeChanged struct {
	TableID  int64
	GameType GameType
	Limit    Limit
}

type ChatMessage struct {
	TableID   int64
	MessageID int64
	Sender    string
	Text      string
}

// DuplicateConnection tells the client another session took over.
type DuplicateConnection struct{}

func (TableStatusInfo) Target() string           { return TargetTableStatusInfo }
func (GameStarted) Target() string               { return TargetGameStarted }
func (Bet) Target() string                       { return TargetBet }
func (OpenCards) Target() string                 { return TargetOpenCards }
func (MoveMoneyToPot) Target() string            { return TargetMoveMoneyToPot }
func (MoneyAdded) Target() string                { return TargetMoneyAdded }
func (MoneyRemoved) Target() string              { return TargetMoneyRemoved }
func (PlayerCards) Target() string               { return TargetPlayerCards }
func (PlayerCardOpened) Target() string          { return TargetPlayerCardOpened }
func (PlayerCardsMucked) Target() string         { return TargetPlayerCardsMucked }
func (Sit) Target() string                       { return TargetSit }
func (Standup) Target() string                   { return TargetStandup }
func (n TableFlagChanged) Target() string        { return n.Name }
func (GameFinished) Target() string              { return TargetGameFinished }
func (PlayerStatus) Target() string              { return TargetPlayerStatus }
func (FinalTableCardsOpened) Target() string     { return TargetFinalTableCardsOpened }
func (TableTournamentChanged) Target() string    { return TargetTableTournamentChanged }
func (TableBetParametersChanged) Target() string { return TargetTableBetParametersChanged }
func (TableGameTypeChanged) Target() string      { return TargetTableGameTypeChanged }
func (ChatMessage) Target() string               { return TargetChatMessage }
func (DuplicateConnection) Target() string       { return TargetDuplicateConnection }

func (n TableStatusInfo) Table() int64           { return n.TableID }
func (n GameStarted) Table() int64               { return n.TableID }
func (n Bet) Table() int64                       { return n.TableID }
func (n OpenCards) Table() int64                 { return n.TableID }
func (n MoveMoneyToPot) Table() int64            { return n.TableID }
func (n MoneyAdded) Table() int64                { return n.TableID }
func (n MoneyRemoved) Table() int64              { return n.TableID }
func (n PlayerCards) Table() int64               { return n.TableID }
func (n PlayerCardOpened) Table() int64          { return n.TableID }
func (n PlayerCardsMucked) Table() int64         { return n.TableID }
func (n Sit) Table() int64                       { return n.TableID }
func (n Standup) Table() int64                   { return n.TableID }
func (n TableFlagChanged) Table() int64          { return n.TableID }
func (n GameFinished) Table() int64              { return n.TableID }
func (n PlayerStatus) Table() int64              { return n.TableID }
func (n FinalTableCardsOpened) Table() int64     { return n.TableID }
func (n TableTournamentChanged) Table() int64    { return n.TableID }
func (n TableBetParametersChanged) Table() int64 { return n.TableID }
func (n TableGameTypeChanged) Table() int64      { return n.TableID }
func (n ChatMessage) Table() int64               { return n.TableID }
func (DuplicateConnection) Table() int64         { return 0 }
