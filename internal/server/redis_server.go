package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"storedb/internal/logging"

	"storedb/internal/acl"
	"storedb/internal/aof"
	"storedb/internal/eviction"
	"storedb/internal/handler"
	"storedb/internal/notify"
	"storedb/internal/processor"
	"storedb/internal/protocol"
	"storedb/internal/storage"
)

// RedisServer handles Redis protocol and data operations
type RedisServer struct {
	config          *Config
	listener        net.Listener
	stores          []*storage.Store
	processor       *processor.Processor
	handler         *handler.CommandHandler
	aofWriter       *aof.Writer
	acl             *acl.Manager
	evictor         *eviction.Evictor
	connections     sync.Map
	connIDCounter   atomic.Int64
	activeConnCount atomic.Int64
	wg              sync.WaitGroup
	shutdownChan    chan struct{}
	mu              sync.RWMutex
	isShutdown      bool

	// RDB background save tracking
	changesSinceLastSave atomic.Int64
	lastSaveTime         time.Time
	saveMu               sync.Mutex
	rdbTicker            *time.Ticker
	rdbStopChan          chan struct{}
}

// NewRedisServer creates a new Redis server instance
func NewRedisServer(cfg *Config) *RedisServer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Databases <= 0 {
		cfg.Databases = 16
	}

	// One Store per logical database, sharing a single process-wide
	// PubSub instance: PUBLISH/SUBSCRIBE is not scoped by SELECTed database.
	sharedPubSub := storage.NewPubSub()
	stores := make([]*storage.Store, cfg.Databases)
	for i := range stores {
		stores[i] = storage.NewStore(i)
		stores[i].PubSub = sharedPubSub
	}

	notifyFlags := notify.ParseFlags(cfg.NotifyKeyspaceEvents)
	for i, st := range stores {
		dbIndex := i
		store := st
		store.Notify = func(event string, key string, class byte) {
			notify.Publish(sharedPubSub, dbIndex, notifyFlags, event, key, class)
		}
	}

	proc := processor.NewProcessor(stores)

	aclMgr := acl.NewManager()
	if cfg.ACLFilePath != "" {
		if err := aclMgr.LoadFile(cfg.ACLFilePath); err != nil {
			logging.S().Infof("Warning: failed to load ACL file %s: %v", cfg.ACLFilePath, err)
		}
	}
	if cfg.RequirePass != "" {
		aclMgr.SetDefaultUserPassword(cfg.RequirePass)
	}

	evictor := eviction.NewEvictor(eviction.Policy(cfg.MaxMemoryPolicy), cfg.MaxMemorySamples)

	// Create AOF writer
	var aofWriter *aof.Writer
	var err error
	if cfg.AOF.Enabled {
		aofWriter, err = aof.NewWriter(cfg.AOF)
		if err != nil {
			logging.S().Infof("Warning: Failed to create AOF writer: %v", err)
			logging.S().Infof("Continuing without AOF persistence")
			aofWriter = nil
		} else {
			logging.S().Infof("AOF enabled: %s (sync: %s)", cfg.AOF.Filepath, syncPolicyName(cfg.AOF.SyncPolicy))
		}
	}

	// Build handler config from server config
	handlerConfig := handler.HandlerConfig{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		Pipeline: handler.PipelineConfig{
			MaxCommands:     cfg.MaxPipelineCommands,
			SlowThreshold:   cfg.SlowLogThreshold,
			CommandTimeout:  cfg.CommandTimeout,
			ReadTimeout:     cfg.ReadTimeout,
			PipelineTimeout: cfg.PipelineTimeout,
		},
	}
	cmdHandler := handler.NewCommandHandler(proc, handlerConfig, aofWriter, cfg.Port)
	cmdHandler.SetACL(aclMgr)
	cmdHandler.SetEvictor(evictor, cfg.MaxMemory)
	cmdHandler.SetStores(stores)

	s := &RedisServer{
		config:       cfg,
		stores:       stores,
		processor:    proc,
		handler:      cmdHandler,
		aofWriter:    aofWriter,
		acl:          aclMgr,
		evictor:      evictor,
		shutdownChan: make(chan struct{}),
		lastSaveTime: time.Now(),
		rdbStopChan:  make(chan struct{}),
	}

	// Set change callback for RDB auto-save tracking
	cmdHandler.SetChangeCallback(func() {
		s.IncrementChanges()
	})

	// Load persistence files (AOF takes priority, fallback to RDB)
	if cfg.AOF.Enabled {
		if err := s.loadAOF(); err != nil {
			logging.S().Infof("Warning: Failed to load AOF: %v", err)
			// Try RDB as fallback
			if err := s.loadRDB(); err != nil {
				logging.S().Infof("Warning: Failed to load RDB: %v", err)
				logging.S().Infof("Starting with empty database")
			} else {
				logging.S().Infof("Loaded data from RDB file")
			}
		}
	} else {
		// AOF disabled, try loading from RDB
		if err := s.loadRDB(); err != nil {
			logging.S().Infof("Warning: Failed to load RDB: %v", err)
			logging.S().Infof("Starting with empty database")
		}
	}

	// Start background RDB auto-save
	if cfg.RDBSavePoint.Seconds > 0 && cfg.RDBSavePoint.Changes > 0 {
		s.startBackgroundRDBSave()
	}

	// Read-only mode is enabled only after the load above has replayed
	// persisted writes; enabling it earlier would reject the replay itself.
	if cfg.ReadOnly {
		cmdHandler.SetReadOnly(true)
	}

	return s
}

// syncPolicyName returns a human-readable name for the sync policy
func syncPolicyName(policy aof.SyncPolicy) string {
	switch policy {
	case aof.SyncAlways:
		return "always"
	case aof.SyncEverySecond:
		return "everysec"
	case aof.SyncNo:
		return "no"
	default:
		return "unknown"
	}
}

// loadAOF loads and replays commands from the AOF file
func (s *RedisServer) loadAOF() error {
	startTime := time.Now()

	reader, err := aof.NewReader(s.config.AOF.Filepath)
	if err != nil {
		return fmt.Errorf("failed to create AOF reader: %w", err)
	}
	if reader == nil {
		// File doesn't exist - first startup
		logging.S().Info("No AOF file found, starting with empty database")
		return nil
	}
	defer reader.Close()

	logging.S().Infof("Loading AOF file: %s", s.config.AOF.Filepath)

	// Load all commands from AOF file
	result, err := reader.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load AOF commands: %w", err)
	}
	if result.Truncated {
		logging.S().Infof("AOF file %s ends in a truncated record, replaying up to the last complete command", s.config.AOF.Filepath)
	}

	// Replay all commands
	errorCount := 0
	for _, cmd := range result.Commands {
		if err := s.executeCommand(cmd); err != nil {
			logging.S().Infof("AOF replay error for command %v: %v", cmd, err)
			errorCount++
			// Continue loading despite errors
		}
	}

	duration := time.Since(startTime)
	logging.S().Infof("AOF loaded: %d commands replayed in %v", len(result.Commands), duration)
	if errorCount > 0 {
		logging.S().Infof("Warning: %d errors during AOF replay", errorCount)
	}

	return nil
}

// executeCommand executes a single command during AOF replay
func (s *RedisServer) executeCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("empty command")
	}

	// Convert args to protocol.Command format
	cmd := &protocol.Command{Args: args}

	// Execute through handler
	response := s.handler.ExecuteCommand(cmd)

	// Check if result indicates an error
	if len(response) > 0 && response[0] == '-' {
		return fmt.Errorf("command failed: %s", string(response))
	}

	return nil
}

// Start starts the Redis server
func (s *RedisServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}

	s.listener = listener
	logging.S().Infof("Redis server listening on %s", addr)

	go s.acceptConnections(ctx)

	<-ctx.Done()
	return nil
}

func (s *RedisServer) acceptConnections(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdownChan:
			return
		default:
			conn, err := s.listener.Accept()
			if err != nil {
				s.mu.RLock()
				if s.isShutdown {
					s.mu.RUnlock()
					return
				}
				s.mu.RUnlock()
				logging.S().Infof("Error accepting connection: %v", err)
				continue
			}

			if s.activeConnCount.Load() >= int64(s.config.MaxConnections) {
				logging.S().Infof("Max connections reached, rejecting connection from %s", conn.RemoteAddr())
				conn.Close()
				continue
			}

			s.wg.Add(1)
			go s.handleConnection(ctx, conn)
		}
	}
}

func (s *RedisServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()

	connID := s.connIDCounter.Add(1)
	s.activeConnCount.Add(1)
	defer s.activeConnCount.Add(-1)

	s.connections.Store(connID, conn)
	defer s.connections.Delete(connID)
	defer conn.Close()

	startTime := time.Now()

	client := &handler.Client{
		ID:       connID,
		Conn:     conn,
		Username: "default",
	}

	s.handler.Handle(ctx, client)

	// Only log connections that lived longer than 2 seconds (persistent connections)
	// This filters out Sentinel health check spam
	duration := time.Since(startTime)
	if duration > 2*time.Second {
		logging.S().Infof("Connection [%d] from %s closed after %v", connID, conn.RemoteAddr(), duration.Round(time.Second))
	}
}

// Shutdown gracefully shuts down the server
func (s *RedisServer) Shutdown() {
	s.mu.Lock()
	if s.isShutdown {
		s.mu.Unlock()
		return
	}
	s.isShutdown = true
	s.mu.Unlock()

	logging.S().Info("Initiating graceful shutdown...")

	// Stop RDB auto-save ticker
	if s.rdbTicker != nil {
		s.rdbTicker.Stop()
		close(s.rdbStopChan)
	}

	close(s.shutdownChan)

	if s.listener != nil {
		s.listener.Close()
	}

	// Close all connections
	s.connections.Range(func(key, value interface{}) bool {
		if conn, ok := value.(net.Conn); ok {
			conn.Close()
		}
		return true
	})

	// Wait for goroutines with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.S().Info("All connections closed gracefully")
	case <-time.After(5 * time.Second):
		logging.S().Info("Shutdown timeout reached, forcing exit")
	}

	// Close AOF writer
	if s.aofWriter != nil {
		logging.S().Info("Closing AOF writer...")
		if err := s.aofWriter.Close(); err != nil {
			logging.S().Infof("Error closing AOF writer: %v", err)
		} else {
			logging.S().Info("AOF writer closed successfully")
		}
	}

	if s.processor != nil {
		s.processor.Shutdown()
	}

	logging.S().Info("Redis server shutdown complete")
}
