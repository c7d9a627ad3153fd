package session

import (
	"time"

	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/service"
)

// SessionPersistence stores session mazes between restarts. Only the idle
// maze is stored: the grid as a codec string, its endpoints and the delay.
type SessionPersistence interface {
	Save(session *service.Session) error
	// Load rebuilds the session's engine from the stored maze
	Load(id string) (*service.Session, error)
	Delete(id string) error
	// ListAll returns the IDs of every stored session
	ListAll() ([]string, error)
	Exists(id string) bool
}

// PersistedSessionData is the on-disk form of a session
type PersistedSessionData struct {
	ID             string     `json:"id"`
	ConfigName     string     `json:"config_name"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	Maze           string     `json:"maze"`
	Start          grid.Coord `json:"start"`
	End            grid.Coord `json:"end"`
	DelayMS        int        `json:"delay_ms"`
}
