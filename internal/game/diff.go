package game

// DiffType tags a single recorded state change. The values are the wire
// vocabulary shared with clients, so they serialize as-is in both JSON
// and msgpack envelopes.
type DiffType string

const (
	DiffFullState        DiffType = "fullState"
	DiffPlayerJoined     DiffType = "playerJoined"
	DiffPlayerLeft       DiffType = "playerLeft"
	DiffPlayerMoved      DiffType = "playerMoved"
	DiffPlayerFaced      DiffType = "playerFaced"
	DiffBombPlaced       DiffType = "bombPlaced"
	DiffExplosion        DiffType = "explosion"
	DiffTileChanged      DiffType = "tileChanged"
	DiffPowerUpSpawned   DiffType = "powerUpSpawned"
	DiffPowerUpCollected DiffType = "powerUpCollected"
	DiffPlayerDied       DiffType = "playerDied"
	DiffGameOver         DiffType = "gameOver"
	DiffCountdown        DiffType = "countdown"
	DiffGameFull         DiffType = "gameFull"
)

// Diff is one ordered change-log entry. Consumers replay a drained batch
// in slice order; the engine never reorders entries within a tick.
type Diff struct {
	Type    DiffType `json:"type" msgpack:"type"`
	Payload any      `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// Typed payloads for the diff vocabulary.

// PlayerPayload carries full per-player state (join and fullState).
type PlayerPayload struct {
	ID       string    `json:"id" msgpack:"id"`
	Nickname string    `json:"nickname" msgpack:"nickname"`
	Color    string    `json:"color" msgpack:"color"`
	X        int       `json:"x" msgpack:"x"`
	Y        int       `json:"y" msgpack:"y"`
	Facing   Direction `json:"facing" msgpack:"facing"`
	Alive    bool      `json:"alive" msgpack:"alive"`
	BombsMax int       `json:"bombsMax" msgpack:"bombsMax"`
	Radius   int       `json:"radius" msgpack:"radius"`
	Speed    float64   `json:"speed" msgpack:"speed"`
}

// MovePayload reports a successful step.
type MovePayload struct {
	ID     string    `json:"id" msgpack:"id"`
	X      int       `json:"x" msgpack:"x"`
	Y      int       `json:"y" msgpack:"y"`
	Facing Direction `json:"facing" msgpack:"facing"`
}

// FacePayload reports a blocked turn: orientation changed, position did not.
type FacePayload struct {
	ID     string    `json:"id" msgpack:"id"`
	Facing Direction `json:"facing" msgpack:"facing"`
}

// BombPayload reports a placed bomb. FuseMs lets clients run their own timer.
type BombPayload struct {
	ID      string `json:"id" msgpack:"id"`
	OwnerID string `json:"ownerId" msgpack:"ownerId"`
	X       int    `json:"x" msgpack:"x"`
	Y       int    `json:"y" msgpack:"y"`
	FuseMs  int64  `json:"fuseMs" msgpack:"fuseMs"`
}

// ExplosionPayload carries the full immutable tile set of one blast.
type ExplosionPayload struct {
	ID    string `json:"id" msgpack:"id"`
	Tiles []Cell `json:"tiles" msgpack:"tiles"`
}

// TileChangedPayload reports a soft tile converting to empty.
type TileChangedPayload struct {
	X    int  `json:"x" msgpack:"x"`
	Y    int  `json:"y" msgpack:"y"`
	Tile Tile `json:"tile" msgpack:"tile"`
}

// PowerUpPayload reports a spawned pickup.
type PowerUpPayload struct {
	ID   string      `json:"id" msgpack:"id"`
	X    int         `json:"x" msgpack:"x"`
	Y    int         `json:"y" msgpack:"y"`
	Kind PowerUpKind `json:"kind" msgpack:"kind"`
}

// PowerUpCollectedPayload reports a pickup being consumed by a player.
type PowerUpCollectedPayload struct {
	ID       string      `json:"id" msgpack:"id"`
	PlayerID string      `json:"playerId" msgpack:"playerId"`
	Kind     PowerUpKind `json:"kind" msgpack:"kind"`
}

// PlayerDiedPayload reports a death from an explosion.
type PlayerDiedPayload struct {
	ID          string `json:"id" msgpack:"id"`
	ExplosionID string `json:"explosionId" msgpack:"explosionId"`
}

// PlayerLeftPayload reports a disconnect.
type PlayerLeftPayload struct {
	ID string `json:"id" msgpack:"id"`
}

// GameOverPayload reports the round result. Draw is true when the last
// survivors died in the same resolution pass; Winner then holds the draw
// marker rather than a nickname.
type GameOverPayload struct {
	Winner string `json:"winner" msgpack:"winner"`
	Draw   bool   `json:"draw" msgpack:"draw"`
}

// CountdownPayload reports the remaining pre-round countdown value.
type CountdownPayload struct {
	Remaining int `json:"remaining" msgpack:"remaining"`
}
