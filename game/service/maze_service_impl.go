package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/maze-lab/game/engine"
	"github.com/wricardo/maze-lab/game/generator"
	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/instrument"
	"github.com/wricardo/maze-lab/game/pathfinder"
)

// eventBuffer is the per-session queue between an engine worker and the publisher
const eventBuffer = 1024

// mazeServiceImpl implements the MazeService interface
type mazeServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	publisher EventPublisher
	mu        sync.Mutex
}

// NewMazeService creates a new maze service instance. publisher may be nil.
func NewMazeService(sessions SessionManager, configs ConfigManager, publisher EventPublisher) MazeService {
	return &mazeServiceImpl{
		sessions:  sessions,
		configs:   configs,
		publisher: publisher,
	}
}

// getConfigID returns the config_id for a given preset name, used for consistent API responses
func (s *mazeServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// session fetches a session, refreshes its access time and attaches its event dispatcher
func (s *mazeServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	s.attach(sess)
	return sess, nil
}

func (s *mazeServiceImpl) attach(sess *Session) {
	if s.publisher == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.events != nil {
		return
	}

	id := sess.ID
	sess.events = instrument.NewDispatcher(instrument.SinkFunc(func(ev instrument.CellEvent) {
		s.publisher.PublishCell(id, ev)
	}), eventBuffer)
	sess.Engine.SetSink(sess.events)
}

func (s *mazeServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		MazeState:      NewMazeState(sess.Engine.Snapshot()),
		MazeConfig:     sess.Config,
	}
}

// save persists a session after a change; failures are logged only
func (s *mazeServiceImpl) save(sess *Session) {
	if err := s.sessions.Save(sess.ID); err != nil {
		log.Printf("[SESSION] failed to persist session %s: %v", sess.ID, err)
	}
}

// CreateSession creates a new maze session from a preset
func (s *mazeServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.MazeConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.attach(sess)

	info := s.sessionInfo(sess)
	if configName != "" {
		info.ConfigName = configName
	}
	return info, nil
}

// GetSession retrieves session information
func (s *mazeServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *mazeServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession stops any run of the session and removes it
func (s *mazeServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if sess, err := s.sessions.Get(sessionID); err == nil {
		sess.Close()
	}
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// Generate starts a maze generation. Unset request fields use the session preset.
func (s *mazeServiceImpl) Generate(ctx context.Context, sessionID string, req GenerateRequest) (*RunInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	name := req.Algorithm
	if name == "" {
		name = sess.Config.Generator
	}
	alg, err := generator.ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}

	width, height := req.Width, req.Height
	if width == 0 {
		width = sess.Config.Width
	}
	if height == 0 {
		height = sess.Config.Height
	}

	// The run outlives the request that started it.
	run, err := sess.Engine.Generate(context.WithoutCancel(ctx), alg, width, height)
	if err != nil {
		return nil, err
	}
	return s.track(ctx, sess, run, req.Wait)
}

// Solve starts a search from Start to End
func (s *mazeServiceImpl) Solve(ctx context.Context, sessionID string, req SolveRequest) (*RunInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	name := req.Algorithm
	if name == "" {
		name = sess.Config.Pathfinder
	}
	alg, err := pathfinder.ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}

	run, err := sess.Engine.Solve(context.WithoutCancel(ctx), alg)
	if err != nil {
		return nil, err
	}
	return s.track(ctx, sess, run, req.Wait)
}

// track publishes the lifecycle of run and optionally waits for it
func (s *mazeServiceImpl) track(ctx context.Context, sess *Session, run *engine.Run, wait bool) (*RunInfo, error) {
	info := newRunInfo(sess.ID, run)
	s.publishRun(sess, EventRunStarted, info)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		result := run.Wait()
		if sess.events != nil {
			sess.events.Flush()
		}
		if result.Kind == engine.KindGenerate && result.Err == nil {
			s.save(sess)
		}
		s.publishRun(sess, EventRunFinished, newRunInfo(sess.ID, run))
	}()

	if !wait {
		return info, nil
	}

	select {
	case <-finished:
	case <-ctx.Done():
		return info, ctx.Err()
	}
	return newRunInfo(sess.ID, run), nil
}

func (s *mazeServiceImpl) publishRun(sess *Session, event string, info *RunInfo) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishRun(sess.ID, RunEvent{Type: event, Run: info})
}

// control applies a run control to a session and returns the resulting state
func (s *mazeServiceImpl) control(sessionID string, op func(e *engine.MazeEngine) error) (*MazeState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := op(sess.Engine); err != nil {
		return nil, err
	}
	return NewMazeState(sess.Engine.Snapshot()), nil
}

// Pause holds the active run
func (s *mazeServiceImpl) Pause(ctx context.Context, sessionID string) (*MazeState, error) {
	return s.control(sessionID, (*engine.MazeEngine).Pause)
}

// Resume releases a paused run
func (s *mazeServiceImpl) Resume(ctx context.Context, sessionID string) (*MazeState, error) {
	return s.control(sessionID, (*engine.MazeEngine).Resume)
}

// Step advances a paused run by one event
func (s *mazeServiceImpl) Step(ctx context.Context, sessionID string) (*MazeState, error) {
	return s.control(sessionID, (*engine.MazeEngine).Step)
}

// Cancel stops the active run
func (s *mazeServiceImpl) Cancel(ctx context.Context, sessionID string) (*MazeState, error) {
	return s.control(sessionID, func(e *engine.MazeEngine) error {
		if !e.Cancel() {
			return engine.ErrNoActiveRun
		}
		return nil
	})
}

// SetSpeed sets the per-event delay in milliseconds
func (s *mazeServiceImpl) SetSpeed(ctx context.Context, sessionID string, delayMS int) (*MazeState, error) {
	if delayMS < 0 || delayMS > engine.MaxDelayMS {
		return nil, fmt.Errorf("%w: delay must be between 0 and %d ms, got %d", ErrInvalidRequest, engine.MaxDelayMS, delayMS)
	}
	return s.control(sessionID, func(e *engine.MazeEngine) error {
		e.SetDelay(time.Duration(delayMS) * time.Millisecond)
		return nil
	})
}

// edit applies a change to the maze and persists the session
func (s *mazeServiceImpl) edit(sessionID string, op func(e *engine.MazeEngine) error) (*MazeState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := op(sess.Engine); err != nil {
		return nil, err
	}
	s.save(sess)
	return NewMazeState(sess.Engine.Snapshot()), nil
}

// SetStart moves Start
func (s *mazeServiceImpl) SetStart(ctx context.Context, sessionID string, x, y int) (*MazeState, error) {
	return s.edit(sessionID, func(e *engine.MazeEngine) error {
		return e.SetStart(grid.Coord{X: x, Y: y})
	})
}

// SetEnd moves End
func (s *mazeServiceImpl) SetEnd(ctx context.Context, sessionID string, x, y int) (*MazeState, error) {
	return s.edit(sessionID, func(e *engine.MazeEngine) error {
		return e.SetEnd(grid.Coord{X: x, Y: y})
	})
}

// ToggleCell flips an interior cell between wall and open
func (s *mazeServiceImpl) ToggleCell(ctx context.Context, sessionID string, x, y int) (*MazeState, error) {
	return s.edit(sessionID, func(e *engine.MazeEngine) error {
		_, err := e.ToggleCell(grid.Coord{X: x, Y: y})
		return err
	})
}

// Encode returns the codec string of the session's maze
func (s *mazeServiceImpl) Encode(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return "", err
	}
	return sess.Engine.Encode(), nil
}

// Decode replaces the session's maze with an encoded one
func (s *mazeServiceImpl) Decode(ctx context.Context, sessionID, encoded string) (*MazeState, error) {
	return s.edit(sessionID, func(e *engine.MazeEngine) error {
		return e.Decode(encoded)
	})
}

// GetState returns the current maze state
func (s *mazeServiceImpl) GetState(ctx context.Context, sessionID string) (*MazeState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return NewMazeState(sess.Engine.Snapshot()), nil
}

// ListConfigs returns all available presets
func (s *mazeServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific preset
func (s *mazeServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.MazeConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a preset
func (s *mazeServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.MazeConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// Algorithms lists the generation and pathfinding algorithms
func (s *mazeServiceImpl) Algorithms(ctx context.Context) *AlgorithmCatalog {
	return &AlgorithmCatalog{
		Generators:  generator.Algorithms(),
		Pathfinders: pathfinder.Algorithms(),
	}
}
