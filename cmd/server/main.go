package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"storedb/internal/aof"
	"storedb/internal/logging"
	"storedb/internal/server"
)

// fileConfig mirrors the subset of server.Config a YAML config file may
// override; zero values are left untouched so flags/defaults still apply.
type fileConfig struct {
	Host                 string `yaml:"host"`
	Port                 int    `yaml:"port"`
	Databases            int    `yaml:"databases"`
	MaxMemory            int64  `yaml:"maxmemory"`
	MaxMemoryPolicy      string `yaml:"maxmemory-policy"`
	NotifyKeyspaceEvents string `yaml:"notify-keyspace-events"`
	RequirePass          string `yaml:"requirepass"`
	ACLFilePath          string `yaml:"aclfile"`
	AppendOnly           bool   `yaml:"appendonly"`
	AppendFilename       string `yaml:"appendfilename"`
	DBFilename           string `yaml:"dbfilename"`
	ReadOnly             bool   `yaml:"read-only"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

func main() {
	port := pflag.Int("port", 6379, "Port to listen on")
	host := pflag.String("host", "127.0.0.1", "Host to bind to")
	configPath := pflag.StringP("config", "c", "", "Path to a YAML config file")
	databases := pflag.Int("databases", 16, "Number of logical databases")
	maxMemory := pflag.Int64("maxmemory", 0, "Maximum memory in bytes (0 = unlimited)")
	maxMemoryPolicy := pflag.String("maxmemory-policy", "noeviction", "Eviction policy once maxmemory is reached")
	maxMemorySamples := pflag.Int("maxmemory-samples", 5, "Sample size for LRU/LFU eviction")
	notifyKeyspaceEvents := pflag.String("notify-keyspace-events", "", "Keyspace notification class flags")
	requirePass := pflag.String("requirepass", "", "Password required for the default user")
	aclFile := pflag.String("aclfile", "", "Path to a Redis-ACL-style user file")
	appendOnly := pflag.Bool("appendonly", true, "Enable the append-only file")
	appendFilename := pflag.String("appendfilename", "appendonly.aof", "Append-only file path")
	dbFilename := pflag.String("dbfilename", "dump.rdb", "RDB snapshot file path")
	readOnly := pflag.Bool("read-only", false, "Reject write commands (standalone equivalent of replica-read-only)")
	pflag.Parse()

	var fc fileConfig
	if *configPath != "" {
		loaded, err := loadFileConfig(*configPath)
		if err != nil {
			logging.S().Fatalf("failed to load config file %s: %v", *configPath, err)
		}
		fc = loaded
	}

	cfg := server.DefaultConfig()
	cfg.Host = *host
	cfg.Port = *port
	cfg.Databases = *databases
	cfg.MaxMemory = *maxMemory
	cfg.MaxMemoryPolicy = *maxMemoryPolicy
	cfg.MaxMemorySamples = *maxMemorySamples
	cfg.NotifyKeyspaceEvents = *notifyKeyspaceEvents
	cfg.RequirePass = *requirePass
	cfg.ACLFilePath = *aclFile
	cfg.ReadOnly = *readOnly

	cfg.AOF = aof.Config{
		Enabled:    *appendOnly,
		Filepath:   *appendFilename,
		SyncPolicy: aof.SyncEverySecond,
		BufferSize: 4096,
	}
	cfg.RDBFilepath = *dbFilename
	cfg.RDBSavePoint = server.RDBSavePoint{Seconds: 60, Changes: 1000}

	if fc.Host != "" {
		cfg.Host = fc.Host
	}
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if fc.Databases != 0 {
		cfg.Databases = fc.Databases
	}
	if fc.MaxMemory != 0 {
		cfg.MaxMemory = fc.MaxMemory
	}
	if fc.MaxMemoryPolicy != "" {
		cfg.MaxMemoryPolicy = fc.MaxMemoryPolicy
	}
	if fc.NotifyKeyspaceEvents != "" {
		cfg.NotifyKeyspaceEvents = fc.NotifyKeyspaceEvents
	}
	if fc.RequirePass != "" {
		cfg.RequirePass = fc.RequirePass
	}
	if fc.ACLFilePath != "" {
		cfg.ACLFilePath = fc.ACLFilePath
	}
	if fc.AppendFilename != "" {
		cfg.AOF.Filepath = fc.AppendFilename
	}
	if fc.DBFilename != "" {
		cfg.RDBFilepath = fc.DBFilename
	}
	if fc.ReadOnly {
		cfg.ReadOnly = true
	}

	cfg.MaxConnections = 10000
	cfg.ReadBufferSize = 4096
	cfg.WriteBufferSize = 4096
	cfg.MaxPipelineCommands = 1000
	cfg.SlowLogThreshold = 10 * time.Millisecond
	cfg.CommandTimeout = 30 * time.Second
	cfg.ReadTimeout = 60 * time.Second
	cfg.PipelineTimeout = 1 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.NewRedisServer(cfg)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logging.S().Info("Shutting down server...")
		cancel()
		srv.Shutdown()
	}()

	logging.S().Infof("Starting Redis server on %s:%d", cfg.Host, cfg.Port)
	if err := srv.Start(ctx); err != nil {
		logging.S().Fatalf("Server failed: %v", err)
	}
}
